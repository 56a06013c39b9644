package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mzshift.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
tolerance = 0.02
tolerance_unit = "da"
max_mods = 4
exhaustive = true
localization = "context-aware"
workers = 8
calibrate = true
aa_combinations = 2

[priors]
"Post-translational" = 1.0
"Artefact" = 0.5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.02, cfg.Tolerance)
	assert.Equal(t, "da", cfg.ToleranceUnit)
	assert.Equal(t, 4, cfg.MaxMods)
	assert.True(t, cfg.Exhaustive)
	assert.Equal(t, "context-aware", cfg.Localization)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.Calibrate)
	assert.Equal(t, 2, cfg.AACombo)
	assert.Equal(t, map[string]float64{"Post-translational": 1.0, "Artefact": 0.5}, cfg.Priors)
}

func TestLoadPartial(t *testing.T) {
	// Unset keys keep their defaults
	cfg, err := Load(writeConfig(t, `max_mods = 2`))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxMods)
	assert.Equal(t, 10.0, cfg.Tolerance)
	assert.Equal(t, "ppm", cfg.ToleranceUnit)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := []string{
		`tolerance = -1.0`,
		`tolerance_unit = "mmu"`,
		`max_mods = -1`,
		`localization = "psm"`,
		`workers = -2`,
		`aa_combinations = 9`,
	}
	for _, content := range tests {
		_, err := Load(writeConfig(t, content))
		assert.Error(t, err, "config %q should not validate", content)
	}
}

func TestValidateDefault(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
