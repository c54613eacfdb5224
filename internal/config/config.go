// Package config loads application settings from a YAML file and TIMERS_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "TIMERS"

// LogConfig controls where and how verbosely the app logs.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// Config is the top-level application configuration.
type Config struct {
	DBPath          string        `mapstructure:"db_path" yaml:"db_path"`
	StorageKey      string        `mapstructure:"storage_key" yaml:"storage_key"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" yaml:"refresh_interval"`
	Watch           bool          `mapstructure:"watch" yaml:"watch"`
	Log             LogConfig     `mapstructure:"log" yaml:"log"`
}

// Dir returns ~/.config/timers, falling back to the working directory.
func Dir() string {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(cfg, "timers")
}

// DefaultPath returns the default location of config.yaml.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the configuration used when no file exists.
func Default() Config {
	dir := Dir()
	return Config{
		DBPath:          filepath.Join(dir, "timers.db"),
		StorageKey:      "timers",
		RefreshInterval: 100 * time.Millisecond,
		Watch:           true,
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "timers.log"),
		},
	}
}

func newViper(path string) *viper.Viper {
	def := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("storage_key", def.StorageKey)
	v.SetDefault("refresh_interval", def.RefreshInterval)
	v.SetDefault("watch", def.Watch)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)
	return v
}

// Load reads the file at path. A missing file yields the defaults, still
// subject to environment overrides.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive, got %s", c.RefreshInterval)
	}
	if strings.TrimSpace(c.StorageKey) == "" {
		return errors.New("storage_key must not be empty")
	}
	if c.DBPath == "" {
		return errors.New("db_path must not be empty")
	}
	return nil
}

// Save writes cfg to path, creating parent directories if needed.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("db_path", cfg.DBPath)
	v.Set("storage_key", cfg.StorageKey)
	v.Set("refresh_interval", cfg.RefreshInterval.String())
	v.Set("watch", cfg.Watch)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// YAML renders cfg the way Save writes it, with the interval as a duration
// string rather than nanoseconds.
func (c Config) YAML() ([]byte, error) {
	doc := struct {
		DBPath          string    `yaml:"db_path"`
		StorageKey      string    `yaml:"storage_key"`
		RefreshInterval string    `yaml:"refresh_interval"`
		Watch           bool      `yaml:"watch"`
		Log             LogConfig `yaml:"log"`
	}{c.DBPath, c.StorageKey, c.RefreshInterval.String(), c.Watch, c.Log}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return out, nil
}
