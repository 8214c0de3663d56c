// =============================================================================
// SO Automation - Validate Command
// =============================================================================
//
// The 'validate' command reads, transforms and validates uploads exactly like
// 'process' does, then prints the issues found. Nothing is written, archived
// or moved.
//
// COMMAND USAGE:
//   soauto validate [--mode domestic|export] [--file path]
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/so-automation/internal/converter"
	"github.com/ginjaninja78/so-automation/internal/validation"
)

var (
	validateMode string
	validateFile string
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check uploads without writing any output",
	Long: `The validate command checks every upload in the input directory (or the
file given with --file) for missing columns, empty input, non-numeric
quantities and prices, and malformed export dates.

Issues that would only be warnings during processing are reported as such;
with strict_validation enabled they are errors.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, afero.NewOsFs())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateMode, "mode", "", "Force the mode of every file: domestic or export")
	validateCmd.Flags().StringVar(&validateFile, "file", "", "Path to a single file to validate")
}

// runValidate validates every input file and prints a report per file.
func runValidate(cmd *cobra.Command, fsys afero.Fs) error {
	forced, err := parseModeFlag(validateMode)
	if err != nil {
		return err
	}

	env, err := loadEnvironment(cmd, fsys)
	if err != nil {
		return err
	}
	defer env.close()

	inputFiles, err := env.inputFiles(validateFile)
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}
	if len(inputFiles) == 0 {
		env.logger.Infof("No input files found in %s", env.config.InputDir)
		return nil
	}

	out := cmd.OutOrStdout()
	failed := 0

	for _, file := range inputFiles {
		profile, _ := selectProfile(file, forced, env.profiles)
		result := converter.New(file, profile, env.config, env.files,
			converter.WithLogger(env.logger),
		).Validate()

		fmt.Fprintf(out, "%s (%s): ", filepath.Base(file), profile.Mode)

		switch {
		case result.Validation == nil:
			failed++
			fmt.Fprintf(out, "FAILED\n  %v\n\n", result.Error)
		case len(result.Validation.Errors) == 0:
			fmt.Fprintf(out, "OK, %d row(s)\n\n", result.Validation.RowsValidated)
		default:
			if !result.Success {
				failed++
				fmt.Fprint(out, "FAILED\n")
			} else {
				fmt.Fprint(out, "OK with warnings\n")
			}
			fmt.Fprintln(out, validation.FormatErrors(result.Validation.Errors))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", failed, len(inputFiles))
	}
	return nil
}
