package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Color modes for structure output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// JournalFile is the journal's file name, kept next to the store.
const JournalFile = "journal.jsonl"

// Config holds all runtime configuration for a stacker invocation.
// Values are populated from .stacker.yaml, STACKER_* env vars, and CLI flags.
type Config struct {
	WorkDir    string `mapstructure:"work_dir"`
	GitPath    string `mapstructure:"git_path"`
	ReviewPath string `mapstructure:"review_path"`
	Trunk      string `mapstructure:"trunk"`
	StoreDir   string `mapstructure:"store_dir"`
	StoreFile  string `mapstructure:"store_file"`
	Journal    bool   `mapstructure:"journal"`
	Color      string `mapstructure:"color"`
	Verbose    bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("work_dir", ".")
	viper.SetDefault("git_path", "git")
	viper.SetDefault("review_path", "arc")
	viper.SetDefault("trunk", "master")
	viper.SetDefault("store_dir", "child_branch_helper")
	viper.SetDefault("store_file", "branches.csv")
	viper.SetDefault("journal", true)
	viper.SetDefault("color", ColorAuto)
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return Config{}, fmt.Errorf("color must be %s, %s or %s, got %q", ColorAuto, ColorAlways, ColorNever, cfg.Color)
	}
	if cfg.StoreFile == "" {
		return Config{}, fmt.Errorf("store_file must not be empty")
	}
	return cfg, nil
}

// StorePath returns the store file location inside gitDir.
func (c Config) StorePath(gitDir string) string {
	return filepath.Join(gitDir, c.StoreDir, c.StoreFile)
}

// JournalPath returns the journal file location inside gitDir.
func (c Config) JournalPath(gitDir string) string {
	return filepath.Join(gitDir, c.StoreDir, JournalFile)
}
