package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/so-automation/internal/projection"
	"github.com/ginjaninja78/so-automation/internal/types"
)

// =============================================================================
// MODE PROFILE STRUCTURE
// =============================================================================

// ModeProfile holds the configuration of one business mode.
// Profiles are optional: a mode without a file uses the built-in defaults.
type ModeProfile struct {
	// Mode is "domestic" or "export". When empty, the file name stem is used
	// (profiles/export.yaml -> export).
	Mode types.Mode `yaml:"mode"`

	// FileMatchingPatterns is a list of glob patterns matched against input
	// file names to route a file to this mode when --mode is not given.
	// Examples:
	//   - "dom_*.xlsx"
	//   - "*_export_*.xlsx"
	FileMatchingPatterns []string `yaml:"file_matching_patterns"`

	// SheetName selects the worksheet of an .xlsx upload.
	// Default: the first sheet.
	SheetName string `yaml:"sheet_name"`

	// CSVSettings contains settings for .csv uploads.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// Constants overrides the built-in business constants of the mode.
	// Only non-empty values override.
	Constants projection.Constants `yaml:"constants"`

	// TransformationRules are applied to input columns before projection.
	TransformationRules []TransformationRule `yaml:"transformation_rules"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing CSV uploads.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Common values: "," (comma), "|" (pipe), "\t" or "tab"
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRows is the number of header rows in the CSV file.
	// Multi-line headers are merged column by column with a space.
	// Default: 1
	HeaderRows int `yaml:"header_rows"`

	// DataStartRow is the 1-based row number where the data begins.
	// Default: HeaderRows + 1
	DataStartRow int `yaml:"data_start_row"`
}

// =============================================================================
// TRANSFORMATION RULE STRUCTURE
// =============================================================================

// TransformationRule defines a transformation to apply to one input column.
type TransformationRule struct {
	// Field is the input column name, as in the upload's header row.
	Field string `yaml:"field"`

	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions"`
}

// TransformationAction defines a single transformation action.
type TransformationAction struct {
	// Type is the type of transformation to apply.
	// Supported types:
	//   - "prepend_string"       : Add Value to the beginning
	//   - "append_string"        : Add Value to the end
	//   - "trim"                 : Remove leading and trailing whitespace
	//   - "uppercase"            : Convert to uppercase
	//   - "lowercase"            : Convert to lowercase
	//   - "replace"              : Replace Find with Value
	//   - "regex_replace"        : Replace regex Find with Value
	//   - "pad_zeros_to_length"  : Left-pad with zeros to length Value
	//   - "remove_leading_zeros" : Strip leading zeros
	//   - "format_number"        : Round to Value decimal places
	//   - "format_date"          : Convert "input_layout|output_layout"
	//   - "lookup"               : Replace using LookupTable
	//   - "lookup_with_default"  : Replace using LookupTable, else Value
	//   - "if_empty_use_default" : Use Value when empty
	//   - "if_empty_use_field"   : Use the column named Value when empty
	Type string `yaml:"type"`

	// Value is the parameter for the transformation.
	Value string `yaml:"value"`

	// Find is used for "replace" and "regex_replace".
	Find string `yaml:"find,omitempty"`

	// LookupTable is used for "lookup" transformations.
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// =============================================================================
// PROFILE LOADING FUNCTIONS
// =============================================================================

// DefaultProfile returns the profile used when no file exists for a mode.
func DefaultProfile(mode types.Mode) *ModeProfile {
	profile := &ModeProfile{Mode: mode}
	applyProfileDefaults(profile)
	return profile
}

// LoadProfiles loads every profile in a directory and fills in defaults for
// modes that have no file. A missing directory is not an error.
func LoadProfiles(fsys afero.Fs, profilesDir string) (map[types.Mode]*ModeProfile, error) {
	profiles := make(map[types.Mode]*ModeProfile)

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := afero.Glob(fsys, filepath.Join(profilesDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to list profile files: %w", err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	for _, file := range files {
		profile, err := loadProfile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		if _, dup := profiles[profile.Mode]; dup {
			return nil, fmt.Errorf("duplicate profile for mode %q in %s", profile.Mode, file)
		}
		profiles[profile.Mode] = profile
	}

	for _, mode := range types.Modes() {
		if _, ok := profiles[mode]; !ok {
			profiles[mode] = DefaultProfile(mode)
		}
	}

	return profiles, nil
}

// loadProfile loads a single profile file.
func loadProfile(fsys afero.Fs, filePath string) (*ModeProfile, error) {
	data, err := afero.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var profile ModeProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	rawMode := string(profile.Mode)
	if rawMode == "" {
		rawMode = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	}
	mode, err := types.ParseMode(rawMode)
	if err != nil {
		return nil, err
	}
	profile.Mode = mode

	for _, pattern := range profile.FileMatchingPatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid file matching pattern %q: %w", pattern, err)
		}
	}

	applyProfileDefaults(&profile)

	return &profile, nil
}

// applyProfileDefaults merges the profile constants over the mode defaults
// and fills in CSV settings.
func applyProfileDefaults(profile *ModeProfile) {
	profile.Constants = projection.DefaultConstants(profile.Mode).Merge(profile.Constants)

	if profile.CSVSettings.Delimiter == "" {
		profile.CSVSettings.Delimiter = ","
	}
	if profile.CSVSettings.HeaderRows <= 0 {
		profile.CSVSettings.HeaderRows = 1
	}
	if profile.CSVSettings.DataStartRow <= profile.CSVSettings.HeaderRows {
		profile.CSVSettings.DataStartRow = profile.CSVSettings.HeaderRows + 1
	}
}

// FindProfileForFile returns the first profile, in mode order, whose file
// matching patterns match the file name. ok is false when none matches.
func FindProfileForFile(filePath string, profiles map[types.Mode]*ModeProfile) (profile *ModeProfile, ok bool) {
	fileName := filepath.Base(filePath)

	for _, mode := range types.Modes() {
		profile, exists := profiles[mode]
		if !exists {
			continue
		}
		for _, pattern := range profile.FileMatchingPatterns {
			if matched, _ := filepath.Match(pattern, fileName); matched {
				return profile, true
			}
		}
	}

	return nil, false
}
