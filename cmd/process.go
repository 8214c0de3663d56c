// =============================================================================
// SO Automation - Process Command
// =============================================================================
//
// This file defines the 'process' command, the main command of the tool.
//
// COMMAND USAGE:
//   soauto process [flags]
//
// FLAGS:
//   --mode     : Force a mode (domestic or export) for every file
//   --file     : Process a single file instead of the input directory
//   --dry-run  : Run the whole pipeline without writing or archiving anything
//
// PROCESSING PIPELINE:
//   1. Load configuration and mode profiles
//   2. Discover uploads in the input directory
//   3. Route each file to a mode profile
//   4. For each file, one after another:
//      a. Read the .xlsx or .csv upload
//      b. Apply transformation rules
//      c. Validate the data
//      d. Assign document and line numbers, project ORDR and RDR1
//      e. Write the tables and archive the files
//   5. Write the error log and the processing summary
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/so-automation/internal/converter"
	"github.com/ginjaninja78/so-automation/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	// processMode forces a mode for every file.
	processMode string

	// processFile is a single file to process.
	processFile string

	// dryRun runs the pipeline without writing output files.
	dryRun bool
)

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert sales order uploads into ORDR and RDR1 tables",
	Long: `The process command scans the input directory for .xlsx and .csv uploads,
routes each one to a mode (domestic or export) and writes its ORDR and RDR1
tables to the output directory.

Files are routed by the file_matching_patterns of the mode profiles. A file
that matches no pattern is processed in export mode. Use --mode to force a
mode for every file.

On successful processing:
  - The tables are written to the output directory (.xlsx and .txt)
  - The upload is moved to the input archive, the tables copied to the output archive
  - A processing summary is written to the output directory

On error:
  - Nothing is written for the failed file
  - The upload stays in the input directory
  - An error log is written to the output directory
  - Processing continues with the next file unless continue_on_error is false`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd, afero.NewOsFs())
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&processMode, "mode", "", "Force the mode of every file: domestic or export")
	processCmd.Flags().StringVar(&processFile, "file", "", "Path to a single file to process")
	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Simulate processing without writing output files")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess orchestrates a processing run over every input file.
func runProcess(cmd *cobra.Command, fsys afero.Fs) error {
	forced, err := parseModeFlag(processMode)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	env, err := loadEnvironment(cmd, fsys)
	if err != nil {
		return err
	}
	defer env.close()
	log := env.logger

	// A dry run leaves the filesystem as it found it.
	if !dryRun {
		if err := env.files.EnsureDirectories(env.config.LogDir()); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	inputFiles, err := env.inputFiles(processFile)
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}
	if len(inputFiles) == 0 {
		log.Infof("No input files found in %s", env.config.InputDir)
		return nil
	}
	log.Infof("Found %d file(s) to process", len(inputFiles))

	// =========================================================================
	// STEP 3: PROCESS FILES
	// =========================================================================

	run := newRunReport(time.Now(), len(inputFiles))

	for i, file := range inputFiles {
		profile, matched := selectProfile(file, forced, env.profiles)
		if forced == "" && !matched {
			log.Debugf("%s matches no profile pattern, using %s", filepath.Base(file), profile.Mode)
		}

		result := converter.New(file, profile, env.config, env.files,
			converter.WithLogger(log),
			converter.WithDryRun(dryRun),
		).Run()
		run.add(result, time.Now())

		if !result.Success {
			log.Errorf("processing failed: %s: %v", filepath.Base(file), result.Error)
			if !env.config.ShouldContinueOnError() {
				log.Warnf("Stopping: continue_on_error is false, %d file(s) left unprocessed", len(inputFiles)-i-1)
				break
			}
			continue
		}

		log.Infof("%s: %d document(s), %d line(s)",
			filepath.Base(file), result.Stats.DocumentsCreated, result.Stats.LinesCreated)
	}

	run.summary.EndTime = time.Now()

	// =========================================================================
	// STEP 4: WRITE REPORTS
	// =========================================================================

	if !dryRun {
		if path, err := env.files.WriteErrorLog(run.errors); err != nil {
			log.Errorf("%v", err)
		} else if path != "" {
			log.Infof("Errors have been logged to %s", path)
		}

		if path, err := env.files.WriteSummaryLog(run.summary); err != nil {
			log.Errorf("%v", err)
		} else {
			log.Debugf("Summary written to %s", path)
		}
	}

	s := run.summary
	log.Infof("Processing complete: %d file(s), %d successful, %d failed, %d document(s) in %s",
		s.TotalFiles, s.SuccessfulFiles, s.FailedFiles, s.TotalDocuments, s.EndTime.Sub(s.StartTime).Round(time.Millisecond))

	if s.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", s.FailedFiles, s.TotalFiles)
	}
	return nil
}

// =============================================================================
// RUN REPORT
// =============================================================================

// runReport accumulates the summary and the error log of a run.
type runReport struct {
	summary utils.ProcessingSummary
	errors  []utils.ErrorLogEntry
}

func newRunReport(start time.Time, totalFiles int) *runReport {
	return &runReport{
		summary: utils.ProcessingSummary{
			StartTime:  start,
			TotalFiles: totalFiles,
		},
	}
}

// add records the result of one file.
func (r *runReport) add(result converter.Result, at time.Time) {
	fileName := filepath.Base(result.FilePath)

	if result.Success {
		r.summary.SuccessfulFiles++
		r.summary.TotalRows += result.Stats.RowsProcessed
		r.summary.TotalDocuments += result.Stats.DocumentsCreated
		r.summary.TotalLines += result.Stats.LinesCreated
		r.summary.ValidationWarnings += result.Stats.ValidationWarnings
		r.summary.ProcessedFiles = append(r.summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   fileName,
			Mode:        string(result.Mode),
			OutputFiles: result.OutputFiles,
			ArchivePath: result.ArchivePath,
			Rows:        result.Stats.RowsProcessed,
			Documents:   result.Stats.DocumentsCreated,
			Lines:       result.Stats.LinesCreated,
			ProcessTime: result.Stats.ProcessingTime,
		})
		return
	}

	r.summary.FailedFiles++
	r.summary.FailedFilesList = append(r.summary.FailedFilesList, utils.FailedFileInfo{
		InputFile:    fileName,
		ErrorMessage: result.Error.Error(),
		ErrorType:    result.ErrorType,
	})

	// One entry per fatal validation issue, so the log points at rows.
	if result.Validation != nil && len(result.Validation.Fatal()) > 0 {
		for _, issue := range result.Validation.Fatal() {
			r.errors = append(r.errors, utils.ErrorLogEntry{
				Timestamp:    at,
				FileName:     fileName,
				ErrorType:    result.ErrorType,
				ErrorMessage: issue.Message,
				RowNumber:    issue.RowNumber,
				FieldName:    issue.Field,
				FieldValue:   issue.Value,
			})
		}
		return
	}

	r.errors = append(r.errors, utils.ErrorLogEntry{
		Timestamp:    at,
		FileName:     fileName,
		ErrorType:    result.ErrorType,
		ErrorMessage: result.Error.Error(),
	})
}
