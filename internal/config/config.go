// =============================================================================
// SO Automation - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration files.
// It handles both the main application configuration and mode profiles.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): Global application settings
//   2. Mode Profiles (profiles/domestic.yaml, profiles/export.yaml):
//      business constants, file routing and transformation rules per mode
//
// OVERRIDES:
//   Any main config key can be overridden from the environment
//   (SOAUTO_OUTPUT_DIR, SOAUTO_LOG_LEVEL, ...) or from the root command's
//   persistent flags. See ApplyOverrides.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatXLSX = "xlsx"
	FormatTXT  = "txt"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for uploaded spreadsheets.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir is the directory where RDR1/ORDR files are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input files after successful processing.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives a copy of every generated file.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// ProfilesDir is the directory containing mode profiles.
	// Default: "./profiles"
	ProfilesDir string `yaml:"profiles_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is the path to the JSON log file. "-" disables file logging.
	// Default: "./logs/soauto.log"
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the output file name, without extension.
	// Placeholders:
	//   {table}     - Table name (RDR1, Ordr)
	//   {mode}      - domestic or export
	//   {source}    - Input file name without extension
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {uuid}      - A random UUID
	// Default: "{source}_{table}"
	OutputNameFormat string `yaml:"output_name_format"`

	// OutputFormats lists the files written per table: "xlsx", "txt".
	// Default: both
	OutputFormats []string `yaml:"output_formats"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// ArchiveOnSuccess moves processed inputs to InputArchiveDir and copies
	// outputs to OutputArchiveDir.
	// Default: true
	ArchiveOnSuccess *bool `yaml:"archive_on_success"`

	// ArchiveTimestampSubdirs files archived inputs and outputs under
	// YYYY/MM/DD subdirectories of the archive directories.
	// Default: false
	ArchiveTimestampSubdirs bool `yaml:"archive_timestamp_subdirs"`

	// ContinueOnError determines whether to continue with the next file when
	// one file fails.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`

	// StrictValidation turns numeric and date warnings into errors.
	// Default: false
	StrictValidation bool `yaml:"strict_validation"`
}

// ShouldArchive reports the effective ArchiveOnSuccess value.
func (c *MainConfig) ShouldArchive() bool {
	return c.ArchiveOnSuccess == nil || *c.ArchiveOnSuccess
}

// ShouldContinueOnError reports the effective ContinueOnError value.
func (c *MainConfig) ShouldContinueOnError() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// DefaultMainConfig returns a configuration with every default applied.
func DefaultMainConfig() *MainConfig {
	config := &MainConfig{}
	applyMainConfigDefaults(config)
	return config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - fsys: The filesystem to read from.
//   - configPath: The path to the main configuration file.
//   - required: When false, a missing file yields the default configuration.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(fsys afero.Fs, configPath string, required bool) (*MainConfig, error) {
	data, err := afero.ReadFile(fsys, configPath)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return DefaultMainConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := ValidateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.ProfilesDir == "" {
		config.ProfilesDir = "./profiles"
	}
	if config.LogFile == "" {
		config.LogFile = "./logs/soauto.log"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{source}_{table}"
	}
	if len(config.OutputFormats) == 0 {
		config.OutputFormats = []string{FormatXLSX, FormatTXT}
	}
}

// ValidateMainConfig checks values that defaults cannot repair.
func ValidateMainConfig(config *MainConfig) error {
	if _, err := zapcore.ParseLevel(config.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	for i, format := range config.OutputFormats {
		format = strings.ToLower(strings.TrimSpace(format))
		if format != FormatXLSX && format != FormatTXT {
			return fmt.Errorf("output_formats: unsupported format %q", config.OutputFormats[i])
		}
		config.OutputFormats[i] = format
	}

	if strings.ContainsAny(config.OutputNameFormat, `/\`) {
		return fmt.Errorf("output_name_format must not contain path separators")
	}
	if !strings.Contains(config.OutputNameFormat, "{table}") {
		return fmt.Errorf("output_name_format must contain {table}")
	}

	return nil
}

// =============================================================================
// OVERRIDES
// =============================================================================

// Settings is the subset of *viper.Viper used for overrides.
type Settings interface {
	IsSet(key string) bool
	GetString(key string) string
	GetBool(key string) bool
}

// Override keys, shared with the flag and environment bindings in cmd.
const (
	KeyInputDir                = "input_dir"
	KeyOutputDir               = "output_dir"
	KeyProfilesDir             = "profiles_dir"
	KeyLogFile                 = "log_file"
	KeyLogLevel                = "log_level"
	KeyStrictValidation        = "strict_validation"
	KeyArchiveOnSuccess        = "archive_on_success"
	KeyArchiveTimestampSubdirs = "archive_timestamp_subdirs"
)

// OverrideKeys lists every key ApplyOverrides understands.
func OverrideKeys() []string {
	return []string{
		KeyInputDir, KeyOutputDir, KeyProfilesDir, KeyLogFile, KeyLogLevel,
		KeyStrictValidation, KeyArchiveOnSuccess, KeyArchiveTimestampSubdirs,
	}
}

// ApplyOverrides copies every set key from settings over the loaded config
// and validates the result.
func ApplyOverrides(config *MainConfig, settings Settings) error {
	strs := map[string]*string{
		KeyInputDir:    &config.InputDir,
		KeyOutputDir:   &config.OutputDir,
		KeyProfilesDir: &config.ProfilesDir,
		KeyLogFile:     &config.LogFile,
		KeyLogLevel:    &config.LogLevel,
	}
	for key, dst := range strs {
		if settings.IsSet(key) {
			*dst = settings.GetString(key)
		}
	}

	if settings.IsSet(KeyStrictValidation) {
		config.StrictValidation = settings.GetBool(KeyStrictValidation)
	}
	if settings.IsSet(KeyArchiveOnSuccess) {
		v := settings.GetBool(KeyArchiveOnSuccess)
		config.ArchiveOnSuccess = &v
	}
	if settings.IsSet(KeyArchiveTimestampSubdirs) {
		config.ArchiveTimestampSubdirs = settings.GetBool(KeyArchiveTimestampSubdirs)
	}

	return ValidateMainConfig(config)
}

// LogFileEnabled reports whether logs are also written to LogFile.
func (c *MainConfig) LogFileEnabled() bool {
	return c.LogFile != "" && c.LogFile != "-"
}

// LogDir returns the directory of the log file, or "" when file logging is off.
func (c *MainConfig) LogDir() string {
	if !c.LogFileEnabled() {
		return ""
	}
	return filepath.Dir(c.LogFile)
}
