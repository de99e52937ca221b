package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/okwera/fintrack/internal/validate"
)

// Config holds application configuration.
type Config struct {
	Database   DatabaseConfig
	Log        LogConfig
	Validation ValidationConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// LogConfig holds log file settings.
type LogConfig struct {
	Path  string
	Level string
}

// ValidationConfig holds transaction validation policy.
type ValidationConfig struct {
	// AmountMax is the inclusive per-transaction ceiling as a decimal string.
	AmountMax string `mapstructure:"amount_max"`
	// FreeformCategories accepts any non-empty category instead of the
	// fixed list.
	FreeformCategories bool `mapstructure:"freeform_categories"`
}

// Load reads configuration from file and env. Env var overrides use prefix FINTRACK_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "fintrack", "fintrack.db"))
	v.SetDefault("log.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "fintrack", "fintrack.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("validation.amount_max", "9999.99")
	v.SetDefault("validation.freeform_categories", false)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("FINTRACK_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "fintrack"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("FINTRACK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := os.Getenv("FINTRACK_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "fintrack", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("validation.amount_max", cfg.Validation.AmountMax)
	v.Set("validation.freeform_categories", cfg.Validation.FreeformCategories)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Rules converts the validation policy into validator rules. A malformed
// amount_max falls back to the default ceiling.
func (c Config) Rules() validate.Rules {
	r := validate.Default()
	if max, err := decimal.NewFromString(c.Validation.AmountMax); err == nil && max.Sign() > 0 {
		r.AmountMax = max
	}
	r.Freeform = c.Validation.FreeformCategories
	r.Now = time.Now
	return r
}
