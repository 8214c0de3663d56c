// =============================================================================
// SO Automation - Converter Module
// =============================================================================
//
// This module contains the core processing logic. It orchestrates the entire
// pipeline for a single uploaded file, from reading the spreadsheet to writing
// the ERP import tables.
//
// PROCESSING PIPELINE:
//   1. Read the upload (.xlsx or .csv) into an input table
//   2. Apply the profile's transformation rules
//   3. Validate the table for the mode
//   4. Assign document and line numbers and project ORDR / RDR1
//   5. Write every table in every configured format
//   6. Archive the processed files
//
// A failure at any step aborts the file. Outputs already written for the file
// are removed, so a failed file never leaves half a pair behind.
//
// =============================================================================

package converter

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/ginjaninja78/so-automation/internal/config"
	"github.com/ginjaninja78/so-automation/internal/csvparser"
	"github.com/ginjaninja78/so-automation/internal/logging"
	"github.com/ginjaninja78/so-automation/internal/projection"
	"github.com/ginjaninja78/so-automation/internal/tablewriter"
	"github.com/ginjaninja78/so-automation/internal/types"
	"github.com/ginjaninja78/so-automation/internal/validation"
	"github.com/ginjaninja78/so-automation/internal/xlsxparser"
	"github.com/ginjaninja78/so-automation/pkg/utils"
)

// Error types reported in results, error logs and summaries.
const (
	ErrorTypeRead           = "read_error"
	ErrorTypeTransform      = "transformation_error"
	ErrorTypeMissingColumn  = "missing_column"
	ErrorTypeEmptyInput     = "empty_input"
	ErrorTypeUnknownMode    = "unknown_mode"
	ErrorTypeValidation     = "validation_error"
	ErrorTypeWrite          = "write_error"
	ErrorTypeOutputConflict = "output_conflict"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// Mode is the mode the file was processed with.
	Mode types.Mode

	// OutputFiles are the generated files, RDR1 first.
	// In dry-run mode these are the paths that would have been written.
	OutputFiles []string

	// ArchivePath is where the input file was moved, if it was archived.
	ArchivePath string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// ErrorType classifies Error, one of the ErrorType constants.
	ErrorType string

	// Validation is the validation result, nil if the file could not be read.
	Validation *validation.ValidationResult

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsProcessed is the number of input data rows.
	RowsProcessed int

	// DocumentsCreated is the number of ORDR documents.
	DocumentsCreated int

	// LinesCreated is the number of RDR1 lines.
	LinesCreated int

	// ValidationWarnings is the number of non-fatal validation issues.
	ValidationWarnings int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter handles the processing of a single uploaded file.
type Converter struct {
	// inputPath is the path to the uploaded file.
	inputPath string

	// profile is the mode profile the file is processed with.
	profile *config.ModeProfile

	// mainConfig is the main application configuration.
	mainConfig *config.MainConfig

	// files performs all filesystem access.
	files *utils.FileManager

	logger logging.Logger
	dryRun bool
	now    func() time.Time
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger logging.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithDryRun runs the pipeline without writing or archiving anything.
func WithDryRun(dryRun bool) Option {
	return func(c *Converter) {
		c.dryRun = dryRun
	}
}

// WithClock sets the clock used for generated dates.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		c.now = now
	}
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - inputPath: The path to the uploaded file.
//   - profile: The mode profile (its Mode selects the pipeline).
//   - mainConfig: The main application configuration.
//   - files: The file manager used for reading, writing and archiving.
//   - opts: Optional settings.
func New(inputPath string, profile *config.ModeProfile, mainConfig *config.MainConfig, files *utils.FileManager, opts ...Option) *Converter {
	c := &Converter{
		inputPath:  inputPath,
		profile:    profile,
		mainConfig: mainConfig,
		files:      files,
		logger:     logging.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the processing pipeline for the file.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing.
func (c *Converter) Run() Result {
	startTime := time.Now()
	result := Result{
		FilePath: c.inputPath,
		Mode:     c.profile.Mode,
	}

	c.logger.Infof("Processing file: %s (mode %s)", c.inputPath, c.profile.Mode)

	// =========================================================================
	// STEPS 1-3: READ, TRANSFORM, VALIDATE
	// =========================================================================

	table, ok := c.prepare(&result)
	if !ok {
		return result
	}

	// =========================================================================
	// STEP 4: PROJECT ORDR / RDR1
	// =========================================================================

	output, err := projection.Project(c.profile.Mode, table, c.profile.Constants, c.now())
	if err != nil {
		return c.fail(result, classify(err, ErrorTypeValidation), fmt.Errorf("failed to project tables: %w", err))
	}

	result.Stats.DocumentsCreated = output.Documents
	result.Stats.LinesCreated = len(output.Line.DataRows())
	c.logger.Debugf("Projected %d document(s) with %d line(s)", result.Stats.DocumentsCreated, result.Stats.LinesCreated)

	// =========================================================================
	// STEP 5: WRITE OUTPUT FILES
	// =========================================================================

	outputs, err := c.writeOutputs(output)
	if err != nil {
		return c.fail(result, classify(err, ErrorTypeWrite), fmt.Errorf("failed to write output: %w", err))
	}
	result.OutputFiles = outputs

	for _, path := range outputs {
		if c.dryRun {
			c.logger.Infof("Dry run, would write: %s", path)
		} else {
			c.logger.Infof("Wrote output to: %s", path)
		}
	}

	// =========================================================================
	// STEP 6: ARCHIVE FILES
	// =========================================================================

	if !c.dryRun && c.mainConfig.ShouldArchive() {
		result.ArchivePath = c.archiveFiles(outputs)
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)

	return result
}

// Validate reads, transforms and validates the file without projecting or
// writing anything.
func (c *Converter) Validate() Result {
	startTime := time.Now()
	result := Result{
		FilePath: c.inputPath,
		Mode:     c.profile.Mode,
	}

	if _, ok := c.prepare(&result); !ok {
		return result
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)
	return result
}

// prepare runs the read, transform and validate steps. On failure it fills
// result and returns false.
func (c *Converter) prepare(result *Result) (*types.InputTable, bool) {
	// =========================================================================
	// STEP 1: READ INPUT
	// =========================================================================

	table, err := c.readInput()
	if err != nil {
		*result = c.fail(*result, classify(err, ErrorTypeRead), fmt.Errorf("failed to read input: %w", err))
		return nil, false
	}

	result.Stats.RowsProcessed = len(table.Records)
	c.logger.Debugf("Read %d row(s) with %d column(s)", len(table.Records), len(table.Columns))

	// =========================================================================
	// STEP 2: APPLY TRANSFORMATION RULES
	// =========================================================================

	transformer, err := NewTransformer(c.profile.TransformationRules)
	if err != nil {
		*result = c.fail(*result, ErrorTypeTransform, fmt.Errorf("invalid transformation rules: %w", err))
		return nil, false
	}

	skipped, err := transformer.TransformTable(table)
	if err != nil {
		*result = c.fail(*result, ErrorTypeTransform, fmt.Errorf("failed to apply transformations: %w", err))
		return nil, false
	}
	for _, field := range skipped {
		c.logger.Debugf("Transformation rule skipped, no column '%s'", field)
	}

	// =========================================================================
	// STEP 3: VALIDATE DATA
	// =========================================================================

	vr := validation.Validate(table, c.profile.Mode, validation.ValidationOptions{
		Strict: c.mainConfig.StrictValidation,
	})
	result.Validation = vr
	result.Stats.ValidationWarnings = vr.WarningCount

	for _, w := range vr.Warnings() {
		c.logger.Warnf("%s: %s", filepath.Base(c.inputPath), w.Error())
	}

	if err := vr.Err(); err != nil {
		*result = c.fail(*result, classify(err, ErrorTypeValidation), fmt.Errorf("validation failed with %d error(s): %w", vr.ErrorCount, err))
		return nil, false
	}

	c.logger.Debugf("Validation complete with %d warning(s)", vr.WarningCount)

	return table, true
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// readInput parses the upload according to its extension.
func (c *Converter) readInput() (*types.InputTable, error) {
	f, err := c.files.Fs.Open(c.inputPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sourceFile := filepath.Base(c.inputPath)

	switch ext := strings.ToLower(filepath.Ext(c.inputPath)); ext {
	case ".xlsx":
		return xlsxparser.Parse(f, sourceFile, c.profile.SheetName)
	case ".csv":
		return csvparser.Parse(f, sourceFile, c.profile.CSVSettings)
	default:
		return nil, fmt.Errorf("unsupported input file type %q", ext)
	}
}

// writeOutputs serializes the RDR1 and ORDR tables in every configured format.
//
// FILE NAMING:
//   The name comes from output_name_format with {table}, {mode} and {source}
//   filled in. {uuid} is drawn once per input file, so every table of the
//   file carries the same value. All files are rendered in memory before the
//   first one is written; if a write fails, the files written so far are
//   removed.
//
//   The paths are claimed on the file manager first, also in a dry run. An
//   input whose names collide with another input of the run (orders.csv and
//   orders.xlsx) fails with utils.ErrOutputConflict instead of overwriting.
//
// RETURNS:
//   - The output paths, RDR1 first.
func (c *Converter) writeOutputs(output *projection.Output) ([]string, error) {
	type pending struct {
		path    string
		content []byte
	}

	params := map[string]string{
		"mode":   string(c.profile.Mode),
		"source": utils.SourceName(c.inputPath),
	}
	if strings.Contains(c.mainConfig.OutputNameFormat, "{uuid}") {
		params["uuid"] = uuid.NewString()
	}

	var files []pending
	for _, table := range []types.Table{output.Line, output.Header} {
		params["table"] = table.Name
		for _, format := range c.mainConfig.OutputFormats {
			f := tablewriter.Format(format)
			name := c.files.GenerateOutputFileName(c.mainConfig.OutputNameFormat, params, f.Extension())

			var buf bytes.Buffer
			if err := tablewriter.Write(&buf, f, table); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			files = append(files, pending{path: filepath.Join(c.files.OutputDir, name), content: buf.Bytes()})
		}
	}

	paths := make([]string, len(files))
	for i, file := range files {
		paths[i] = file.path
	}
	if err := c.files.ClaimOutputs(c.inputPath, paths...); err != nil {
		return nil, err
	}
	if c.dryRun {
		return paths, nil
	}

	for i, file := range files {
		if err := afero.WriteFile(c.files.Fs, file.path, file.content, 0o644); err != nil {
			if rmErr := c.files.RemoveFiles(paths[:i+1]...); rmErr != nil {
				c.logger.Errorf("Failed to remove partial output: %v", rmErr)
			}
			c.files.ReleaseOutputs(c.inputPath)
			return nil, fmt.Errorf("%s: %w", file.path, err)
		}
	}

	return paths, nil
}

// archiveFiles moves the input to the input archive and copies the outputs
// to the output archive. Archival problems are logged, not fatal.
func (c *Converter) archiveFiles(outputs []string) string {
	for _, path := range outputs {
		if _, err := c.files.ArchiveOutputFile(path); err != nil {
			c.logger.Warnf("Failed to archive output %s: %v", path, err)
		}
	}

	archived, err := c.files.ArchiveInputFile(c.inputPath)
	if err != nil {
		c.logger.Warnf("Failed to archive input %s: %v", c.inputPath, err)
		return ""
	}

	c.logger.Debugf("Archived input to: %s", archived)
	return archived
}

// fail records the error on the result.
func (c *Converter) fail(result Result, errorType string, err error) Result {
	result.Success = false
	result.Error = err
	result.ErrorType = errorType
	return result
}

// classify maps typed errors to an error type, or returns fallback.
func classify(err error, fallback string) string {
	switch {
	case errors.Is(err, types.ErrEmptyInput):
		return ErrorTypeEmptyInput
	case errors.Is(err, types.ErrUnknownMode):
		return ErrorTypeUnknownMode
	case errors.Is(err, utils.ErrOutputConflict):
		return ErrorTypeOutputConflict
	}
	if _, ok := types.IsMissingColumn(err); ok {
		return ErrorTypeMissingColumn
	}
	return fallback
}
