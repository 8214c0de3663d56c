package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/so-automation/internal/projection"
	"github.com/ginjaninja78/so-automation/internal/types"
)

func TestLoadMainConfig_Defaults(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()

	config, err := LoadMainConfig(fs, "config.yaml", false)
	require.NoError(t, err)
	assert.Equal(t, "./input", config.InputDir)
	assert.Equal(t, "./output", config.OutputDir)
	assert.Equal(t, "./profiles", config.ProfilesDir)
	assert.Equal(t, "{source}_{table}", config.OutputNameFormat)
	assert.Equal(t, []string{FormatXLSX, FormatTXT}, config.OutputFormats)
	assert.True(t, config.ShouldArchive())
	assert.True(t, config.ShouldContinueOnError())
	assert.False(t, config.StrictValidation)

	_, err = LoadMainConfig(fs, "config.yaml", true)
	assert.Error(t, err)
}

func TestLoadMainConfig_File(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "config.yaml", []byte(`
input_dir: /data/in
output_dir: /data/out
log_level: debug
output_formats: [TXT]
archive_on_success: false
archive_timestamp_subdirs: true
continue_on_error: false
strict_validation: true
`), 0o644))

	config, err := LoadMainConfig(fs, "config.yaml", true)
	require.NoError(t, err)
	assert.Equal(t, "/data/in", config.InputDir)
	assert.Equal(t, "/data/out", config.OutputDir)
	assert.Equal(t, "./input_archive", config.InputArchiveDir)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, []string{FormatTXT}, config.OutputFormats)
	assert.False(t, config.ShouldArchive())
	assert.False(t, config.ShouldContinueOnError())
	assert.True(t, config.StrictValidation)
	assert.True(t, config.ArchiveTimestampSubdirs)
}

func TestLoadMainConfig_Invalid(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"bad yaml":      "input_dir: [",
		"bad level":     "log_level: loud",
		"bad format":    "output_formats: [pdf]",
		"no table":      "output_name_format: '{source}'",
		"path in names": "output_name_format: 'out/{table}'",
	}

	for name, content := range cases {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "config.yaml", []byte(content), 0o644))

		_, err := LoadMainConfig(fs, "config.yaml", true)
		assert.Error(t, err, name)
	}
}

func TestApplyOverrides(t *testing.T) {
	t.Parallel()

	config := DefaultMainConfig()

	v := viper.New()
	v.Set(KeyOutputDir, "/tmp/out")
	v.Set(KeyLogLevel, "warn")
	v.Set(KeyStrictValidation, true)
	v.Set(KeyArchiveOnSuccess, false)
	v.Set(KeyArchiveTimestampSubdirs, true)

	require.NoError(t, ApplyOverrides(config, v))
	assert.True(t, config.ArchiveTimestampSubdirs)
	assert.Equal(t, "/tmp/out", config.OutputDir)
	assert.Equal(t, "./input", config.InputDir)
	assert.Equal(t, "warn", config.LogLevel)
	assert.True(t, config.StrictValidation)
	assert.False(t, config.ShouldArchive())

	v.Set(KeyLogLevel, "loud")
	assert.Error(t, ApplyOverrides(config, v))
}

func TestLogFileEnabled(t *testing.T) {
	t.Parallel()

	config := DefaultMainConfig()
	assert.True(t, config.LogFileEnabled())
	assert.Equal(t, "logs", config.LogDir())

	config.LogFile = "-"
	assert.False(t, config.LogFileEnabled())
	assert.Empty(t, config.LogDir())
}

func TestLoadProfiles(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "profiles/export.yaml", []byte(`
file_matching_patterns: ["exp_*.xlsx", "*_export.csv"]
sheet_name: Orders
constants:
  series: "990"
  header_legacy_rows:
    - [DocNum, DocType]
transformation_rules:
  - field: Customer Reference No
    actions:
      - type: trim
`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "profiles/local.yml", []byte(`
mode: domestic
file_matching_patterns: ["dom_*"]
csv_settings:
  delimiter: ";"
  header_rows: 2
constants:
  flag_substrings: [UNREG]
`), 0o644))

	profiles, err := LoadProfiles(fs, "profiles")
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	export := profiles[types.ModeExport]
	assert.Equal(t, types.ModeExport, export.Mode)
	assert.Equal(t, "Orders", export.SheetName)
	assert.Equal(t, "990", export.Constants.Series)
	assert.Equal(t, projection.DefaultAccountCode, export.Constants.AccountCode)
	assert.Equal(t, [][]string{{"DocNum", "DocType"}}, export.Constants.HeaderLegacyRows)
	assert.Len(t, export.Constants.LineLegacyRows, 1)
	require.Len(t, export.TransformationRules, 1)
	assert.Equal(t, "trim", export.TransformationRules[0].Actions[0].Type)
	assert.Equal(t, ",", export.CSVSettings.Delimiter)

	domestic := profiles[types.ModeDomestic]
	assert.Equal(t, []string{"UNREG"}, domestic.Constants.FlagSubstrings)
	assert.Equal(t, projection.DefaultDomesticSeries, domestic.Constants.Series)
	assert.Equal(t, ";", domestic.CSVSettings.Delimiter)
	assert.Equal(t, 2, domestic.CSVSettings.HeaderRows)
	assert.Equal(t, 3, domestic.CSVSettings.DataStartRow)
}

func TestLoadProfiles_MissingDirectoryUsesDefaults(t *testing.T) {
	t.Parallel()

	profiles, err := LoadProfiles(afero.NewMemMapFs(), "nowhere")
	require.NoError(t, err)
	assert.Equal(t, projection.DefaultConstants(types.ModeExport), profiles[types.ModeExport].Constants)
	assert.Equal(t, projection.DefaultConstants(types.ModeDomestic), profiles[types.ModeDomestic].Constants)
}

func TestLoadProfiles_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]map[string]string{
		"unknown mode": {"profiles/import.yaml": "sheet_name: x"},
		"bad pattern":  {"profiles/export.yaml": "file_matching_patterns: ['[']"},
		"duplicate": {
			"profiles/a.yaml": "mode: export",
			"profiles/b.yaml": "mode: export",
		},
	}

	for name, files := range cases {
		fs := afero.NewMemMapFs()
		for path, content := range files {
			require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
		}
		_, err := LoadProfiles(fs, "profiles")
		assert.Error(t, err, name)
	}
}

func TestFindProfileForFile(t *testing.T) {
	t.Parallel()

	profiles := map[types.Mode]*ModeProfile{
		types.ModeDomestic: {Mode: types.ModeDomestic, FileMatchingPatterns: []string{"dom_*"}},
		types.ModeExport:   {Mode: types.ModeExport, FileMatchingPatterns: []string{"exp_*", "*.xlsx"}},
	}

	profile, ok := FindProfileForFile("/in/dom_march.xlsx", profiles)
	require.True(t, ok)
	assert.Equal(t, types.ModeDomestic, profile.Mode)

	profile, ok = FindProfileForFile("/in/orders.xlsx", profiles)
	require.True(t, ok)
	assert.Equal(t, types.ModeExport, profile.Mode)

	_, ok = FindProfileForFile("/in/orders.csv", profiles)
	assert.False(t, ok)
}
