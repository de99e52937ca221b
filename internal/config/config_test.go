package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FINTRACK_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9999.99", cfg.Validation.AmountMax)
	require.False(t, cfg.Validation.FreeformCategories)
	require.Equal(t, "info", cfg.Log.Level)
	require.NotEmpty(t, cfg.Database.Path)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[validation]
amount_max = "999999.99"
freeform_categories = true

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("FINTRACK_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "999999.99", cfg.Validation.AmountMax)
	require.True(t, cfg.Validation.FreeformCategories)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("FINTRACK_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.Validation.FreeformCategories = true
	require.NoError(t, Save(cfg))

	again, err := Load()
	require.NoError(t, err)
	require.True(t, again.Validation.FreeformCategories)
}

func TestRules(t *testing.T) {
	var cfg Config
	cfg.Validation.AmountMax = "999999.99"
	cfg.Validation.FreeformCategories = true

	r := cfg.Rules()
	require.True(t, r.AmountMax.Equal(decimal.New(99999999, -2)))
	require.True(t, r.Freeform)

	// malformed ceiling falls back to the default
	cfg.Validation.AmountMax = "not a number"
	r = cfg.Rules()
	require.True(t, r.AmountMax.Equal(decimal.New(999999, -2)))
}
