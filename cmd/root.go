// =============================================================================
// SO Automation - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (soauto)
//   ├── processCmd (soauto process)
//   ├── validateCmd (soauto validate)
//   └── versionCmd (soauto version)
//
// CONFIGURATION:
//   Settings are resolved in this order, last one wins:
//   1. Built-in defaults
//   2. The main config file (--config, default config.yaml)
//   3. SOAUTO_* environment variables (SOAUTO_OUTPUT_DIR, SOAUTO_LOG_LEVEL, ...)
//   4. Persistent flags (--input-dir, --output-dir)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ginjaninja78/so-automation/internal/config"
	"github.com/ginjaninja78/so-automation/internal/logging"
	"github.com/ginjaninja78/so-automation/internal/types"
	"github.com/ginjaninja78/so-automation/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging on the console.
var verbose bool

// settings holds the environment and flag overrides.
var settings = viper.New()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "soauto",
	Short: "SO Automation - Turn sales order uploads into SAP B1 ORDR/RDR1 import tables",
	Long: `SO Automation converts sales order spreadsheets (.xlsx or .csv) into the
ORDR (document header) and RDR1 (document line) tables used by the SAP
Business One import tools.

Two modes are supported:
  - domestic : one document per input row
  - export   : rows grouped into documents by customer reference

Each table is written as an .xlsx workbook and as a tab-delimited .txt file.

Example Usage:
  soauto process                         # Process every upload in the input directory
  soauto process --mode domestic         # Force the domestic mode
  soauto process --file ./orders.xlsx    # Process a single file
  soauto validate --file ./orders.xlsx   # Check a file without writing anything`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "config.yaml", "Path to the main configuration file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	flags.String("input-dir", "", "Directory scanned for uploads (overrides input_dir)")
	flags.String("output-dir", "", "Directory for generated tables (overrides output_dir)")

	settings.SetEnvPrefix("SOAUTO")
	for _, key := range config.OverrideKeys() {
		_ = settings.BindEnv(key)
	}
	_ = settings.BindPFlag(config.KeyInputDir, flags.Lookup("input-dir"))
	_ = settings.BindPFlag(config.KeyOutputDir, flags.Lookup("output-dir"))
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

// environment is everything a command needs to process files.
type environment struct {
	config   *config.MainConfig
	profiles map[types.Mode]*config.ModeProfile
	logger   *zap.SugaredLogger
	files    *utils.FileManager

	// close flushes the logger.
	close func()
}

// loadEnvironment loads the configuration, the mode profiles and the logger.
//
// A missing config file is only an error when --config was given explicitly.
func loadEnvironment(cmd *cobra.Command, fsys afero.Fs) (*environment, error) {
	mainConfig, err := config.LoadMainConfig(fsys, cfgFile, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}

	if err := config.ApplyOverrides(mainConfig, settings); err != nil {
		return nil, fmt.Errorf("invalid configuration override: %w", err)
	}

	profiles, err := config.LoadProfiles(fsys, mainConfig.ProfilesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load mode profiles: %w", err)
	}

	logOptions := logging.Options{Level: mainConfig.LogLevel, Verbose: verbose}
	if mainConfig.LogFileEnabled() {
		logOptions.File = mainConfig.LogFile
	}
	logger, closeLog, err := logging.New(cmd.ErrOrStderr(), logOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	files := utils.NewFileManager(fsys,
		mainConfig.InputDir,
		mainConfig.OutputDir,
		mainConfig.InputArchiveDir,
		mainConfig.OutputArchiveDir,
	)
	files.UseTimestampSubdirs = mainConfig.ArchiveTimestampSubdirs

	return &environment{
		config:   mainConfig,
		profiles: profiles,
		logger:   logger,
		files:    files,
		close:    closeLog,
	}, nil
}

// inputFiles returns the single file given with --file, or every upload in
// the input directory.
func (e *environment) inputFiles(single string) ([]string, error) {
	if single == "" {
		return e.files.DiscoverInputFiles()
	}

	if !utils.IsInputFile(single) {
		return nil, fmt.Errorf("unsupported input file %s: expected one of %v", single, utils.InputExtensions)
	}
	if exists, err := afero.Exists(e.files.Fs, single); err != nil || !exists {
		return nil, fmt.Errorf("input file not found: %s", single)
	}
	return []string{single}, nil
}

// selectProfile picks the profile a file is processed with.
//
// ROUTING:
//   1. A forced mode (--mode) wins.
//   2. Otherwise the first profile whose file matching patterns match.
//   3. Otherwise export.
//
// RETURNS:
//   - The profile.
//   - Whether the file was routed by a pattern.
func selectProfile(filePath string, forced types.Mode, profiles map[types.Mode]*config.ModeProfile) (*config.ModeProfile, bool) {
	if forced != "" {
		return profiles[forced], false
	}
	if profile, ok := config.FindProfileForFile(filePath, profiles); ok {
		return profile, true
	}
	return profiles[types.ModeExport], false
}

// parseModeFlag parses an optional --mode value.
func parseModeFlag(value string) (types.Mode, error) {
	if value == "" {
		return "", nil
	}
	mode, err := types.ParseMode(value)
	if err != nil {
		return "", fmt.Errorf("--mode: %w", err)
	}
	return mode, nil
}
