// =============================================================================
// SO Automation - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the processor, including:
//   - Input discovery (.xlsx and .csv uploads)
//   - File archival (moving processed inputs, copying outputs)
//   - Output file naming
//   - Error log and run summary generation
//   - Directory management
//
// All operations go through an afero.Fs, so the CLI runs on the OS
// filesystem and tests run on an in-memory one.
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to input_archive after successful processing
//   - Output files are copied to output_archive for long-term storage
//   - Failed files remain in their original location
//   - Error logs are created in the output directory
//   - An archive name that is already taken gets a timestamp suffix
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// InputExtensions are the upload formats picked up from the input directory.
var InputExtensions = []string{".xlsx", ".csv"}

// ErrOutputConflict is returned when two inputs of one run map to the same
// output file, e.g. orders.csv and orders.xlsx with "{source}_{table}".
var ErrOutputConflict = errors.New("output file already produced by another input")

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the processor.
type FileManager struct {
	// Fs is the filesystem all operations use.
	Fs afero.Fs

	// InputDir is the directory where input files are placed.
	InputDir string

	// OutputDir is the directory where output files are placed.
	OutputDir string

	// InputArchiveDir is the directory for archived input files.
	InputArchiveDir string

	// OutputArchiveDir is the directory for archived output files.
	OutputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in archives.
	// Example: input_archive/2024/01/15/orders.xlsx
	UseTimestampSubdirs bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// claimed maps every output path handed out during this run to the
	// input that owns it.
	mu      sync.Mutex
	claimed map[string]string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(fsys afero.Fs, inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		Fs:               fsys,
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
		Now:              time.Now,
	}
}

func (fm *FileManager) now() time.Time {
	if fm.Now == nil {
		return time.Now()
	}
	return fm.Now()
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
// Extra directories (the log directory, for instance) may be passed; empty
// entries are ignored.
func (fm *FileManager) EnsureDirectories(extra ...string) error {
	dirs := append([]string{
		fm.InputDir,
		fm.OutputDir,
		fm.InputArchiveDir,
		fm.OutputArchiveDir,
	}, extra...)

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := fm.Fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the uploads in the input directory, sorted by name.
//
// Only files with an InputExtensions extension (any case) are returned.
// Excel lock files ("~$orders.xlsx") and hidden files are skipped.
//
// RETURNS:
//   - A slice of file paths.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := afero.ReadDir(fm.Fs, fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
			continue
		}
		if IsInputFile(name) {
			result = append(result, filepath.Join(fm.InputDir, name))
		}
	}

	sort.Strings(result)
	return result, nil
}

// IsInputFile reports whether the file name has a supported upload extension.
func IsInputFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range InputExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory.
//
// PARAMETERS:
//   - filePath: The path to the file to archive.
//
// RETURNS:
//   - The path to the archived file.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	archivePath, err := fm.prepareArchivePath(fm.InputArchiveDir, filePath)
	if err != nil {
		return "", err
	}

	// Move the file.
	if err := fm.Fs.Rename(filePath, archivePath); err != nil {
		// If rename fails (e.g., cross-device), try copy and delete.
		if err := fm.copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := fm.Fs.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// ArchiveOutputFile copies an output file to the archive directory.
//
// NOTE: Output files are copied, not moved, so they remain in the output directory.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	archivePath, err := fm.prepareArchivePath(fm.OutputArchiveDir, filePath)
	if err != nil {
		return "", err
	}

	if err := fm.copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}

	return archivePath, nil
}

// prepareArchivePath returns a free archive path for a file and creates its
// directory.
func (fm *FileManager) prepareArchivePath(archiveDir, filePath string) (string, error) {
	now := fm.now()
	fileName := filepath.Base(filePath)

	dir := archiveDir
	if fm.UseTimestampSubdirs {
		dir = filepath.Join(
			archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
		)
	}

	if err := fm.Fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archivePath := filepath.Join(dir, fileName)
	taken, err := afero.Exists(fm.Fs, archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to check archive path: %w", err)
	}
	if taken {
		ext := filepath.Ext(fileName)
		stem := strings.TrimSuffix(fileName, ext)
		archivePath = filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, now.Format("20060102_150405"), ext))
	}

	return archivePath, nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates an output file name.
//
// PARAMETERS:
//   - format: The format string for the file name, without extension.
//             Placeholders:
//               {uuid}      - A random UUID, unless params has one
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//               {table}     - Output table (RDR1, Ordr)
//               {mode}      - domestic or export
//               {source}    - Input file name (without extension)
//   - params: A map of placeholder values, keyed without braces.
//   - ext: The extension to append, e.g. ".xlsx".
//
// EXAMPLE:
//   format: "{source}_{table}_{timestamp}"
//   params: {"source": "orders", "table": "RDR1"}
//   output: "orders_RDR1_20240115_143022.xlsx"
func (fm *FileManager) GenerateOutputFileName(format string, params map[string]string, ext string) string {
	now := fm.now()

	replacements := map[string]string{
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	if strings.Contains(format, "{uuid}") {
		replacements["{uuid}"] = uuid.New().String()
	}

	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}

	return result
}

// ClaimOutputs reserves output paths for one input file.
//
// The first input to claim a path owns it for the rest of the run. Claiming
// a path owned by another input fails with ErrOutputConflict and reserves
// nothing, so the earlier input's files are never overwritten.
func (fm *FileManager) ClaimOutputs(input string, paths ...string) error {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	for _, path := range paths {
		key := filepath.Clean(path)
		if owner, ok := fm.claimed[key]; ok && owner != input {
			return fmt.Errorf("%w: %s is written by %s", ErrOutputConflict, path, filepath.Base(owner))
		}
	}

	if fm.claimed == nil {
		fm.claimed = make(map[string]string)
	}
	for _, path := range paths {
		fm.claimed[filepath.Clean(path)] = input
	}
	return nil
}

// ReleaseOutputs drops every claim held by an input, after its outputs were
// removed.
func (fm *FileManager) ReleaseOutputs(input string) {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	for path, owner := range fm.claimed {
		if owner == input {
			delete(fm.claimed, path)
		}
	}
}

// SourceName returns the file name of a path without its extension.
func SourceName(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents a single error log entry.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string
	RowNumber    int
	FieldName    string
	FieldValue   string
}

// WriteErrorLog writes error entries to a log file in the output directory.
//
// RETURNS:
//   - The path to the error log file, or "" when there is nothing to write.
//   - An error if writing fails.
func (fm *FileManager) WriteErrorLog(entries []ErrorLogEntry) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	now := fm.now()
	logPath := filepath.Join(fm.OutputDir, fmt.Sprintf("error_log_%s.txt", now.Format("20060102_150405")))

	err := fm.writeFile(logPath, func(writer *bufio.Writer) {
		fmt.Fprintf(writer, "SO Automation - Error Log\n"+
			"Generated: %s\n"+
			"Total Errors: %d\n"+
			"================================================================================\n\n",
			now.Format("2006-01-02 15:04:05"),
			len(entries))

		for i, entry := range entries {
			fmt.Fprintf(writer, "Error #%d\n"+
				"  Timestamp:      %s\n"+
				"  File:           %s\n"+
				"  Error Type:     %s\n"+
				"  Message:        %s\n",
				i+1,
				entry.Timestamp.Format("2006-01-02 15:04:05"),
				entry.FileName,
				entry.ErrorType,
				entry.ErrorMessage)

			if entry.RowNumber > 0 {
				fmt.Fprintf(writer, "  Row Number:     %d\n", entry.RowNumber)
			}
			if entry.FieldName != "" {
				fmt.Fprintf(writer, "  Field:          %s\n", entry.FieldName)
			}
			if entry.FieldValue != "" {
				fmt.Fprintf(writer, "  Value:          %s\n", entry.FieldValue)
			}
			writer.WriteString("\n")
		}

		writer.WriteString("================================================================================\n" +
			"End of Error Log\n")
	})
	if err != nil {
		return "", fmt.Errorf("failed to write error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	StartTime          time.Time
	EndTime            time.Time
	TotalFiles         int
	SuccessfulFiles    int
	FailedFiles        int
	TotalRows          int
	TotalDocuments     int
	TotalLines         int
	ValidationWarnings int
	ProcessedFiles     []ProcessedFileInfo
	FailedFilesList    []FailedFileInfo
}

// ProcessedFileInfo contains information about a successfully processed file.
type ProcessedFileInfo struct {
	InputFile   string
	Mode        string
	OutputFiles []string
	ArchivePath string
	Rows        int
	Documents   int
	Lines       int
	ProcessTime time.Duration
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
	ErrorType    string
}

// WriteSummaryLog writes a processing summary to the output directory.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func (fm *FileManager) WriteSummaryLog(summary ProcessingSummary) (string, error) {
	summaryPath := filepath.Join(fm.OutputDir,
		fmt.Sprintf("processing_summary_%s.txt", fm.now().Format("20060102_150405")))

	err := fm.writeFile(summaryPath, func(writer *bufio.Writer) {
		duration := summary.EndTime.Sub(summary.StartTime)
		fmt.Fprintf(writer, "SO Automation - Processing Summary\n"+
			"================================================================================\n\n"+
			"Run Information:\n"+
			"  Start Time:     %s\n"+
			"  End Time:       %s\n"+
			"  Duration:       %s\n\n"+
			"Statistics:\n"+
			"  Total Files:         %d\n"+
			"  Successful:          %d\n"+
			"  Failed:              %d\n"+
			"  Total Rows:          %d\n"+
			"  Total Documents:     %d\n"+
			"  Total Lines:         %d\n"+
			"  Validation Warnings: %d\n\n",
			summary.StartTime.Format("2006-01-02 15:04:05"),
			summary.EndTime.Format("2006-01-02 15:04:05"),
			duration.String(),
			summary.TotalFiles,
			summary.SuccessfulFiles,
			summary.FailedFiles,
			summary.TotalRows,
			summary.TotalDocuments,
			summary.TotalLines,
			summary.ValidationWarnings)

		if len(summary.ProcessedFiles) > 0 {
			writer.WriteString("Successful Files:\n")
			writer.WriteString("--------------------------------------------------------------------------------\n")
			for _, pf := range summary.ProcessedFiles {
				fmt.Fprintf(writer, "  Input:        %s\n", pf.InputFile)
				fmt.Fprintf(writer, "  Mode:         %s\n", pf.Mode)
				for _, out := range pf.OutputFiles {
					fmt.Fprintf(writer, "  Output:       %s\n", out)
				}
				if pf.ArchivePath != "" {
					fmt.Fprintf(writer, "  Archived To:  %s\n", pf.ArchivePath)
				}
				fmt.Fprintf(writer, "  Rows:         %d\n", pf.Rows)
				fmt.Fprintf(writer, "  Documents:    %d\n", pf.Documents)
				fmt.Fprintf(writer, "  Lines:        %d\n", pf.Lines)
				fmt.Fprintf(writer, "  Process Time: %s\n\n", pf.ProcessTime.String())
			}
		}

		if len(summary.FailedFilesList) > 0 {
			writer.WriteString("Failed Files:\n")
			writer.WriteString("--------------------------------------------------------------------------------\n")
			for _, ff := range summary.FailedFilesList {
				fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
				fmt.Fprintf(writer, "  Type:  %s\n", ff.ErrorType)
				fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
			}
		}

		writer.WriteString("================================================================================\n" +
			"End of Summary\n")
	})
	if err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// writeFile creates path and fills it through a buffered writer.
func (fm *FileManager) writeFile(path string, fill func(*bufio.Writer)) (err error) {
	file, err := fm.Fs.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	writer := bufio.NewWriter(file)
	fill(writer)
	return writer.Flush()
}

// copyFile copies a file from src to dst.
func (fm *FileManager) copyFile(src, dst string) error {
	sourceFile, err := fm.Fs.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := fm.Fs.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// RemoveFiles deletes the given files, ignoring files that do not exist.
// Used to discard partial outputs when a later write fails.
func (fm *FileManager) RemoveFiles(paths ...string) error {
	var errs []error
	for _, path := range paths {
		if err := fm.Fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
