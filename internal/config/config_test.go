package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"WorkDir", cfg.WorkDir, "."},
		{"GitPath", cfg.GitPath, "git"},
		{"ReviewPath", cfg.ReviewPath, "arc"},
		{"Trunk", cfg.Trunk, "master"},
		{"StoreDir", cfg.StoreDir, "child_branch_helper"},
		{"StoreFile", cfg.StoreFile, "branches.csv"},
		{"Journal", cfg.Journal, true},
		{"Color", cfg.Color, "auto"},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "git_path",
			envKey: "STACKER_GIT_PATH",
			envVal: "/usr/local/bin/git",
			field:  func(c Config) any { return c.GitPath },
			want:   "/usr/local/bin/git",
		},
		{
			name:   "review_path",
			envKey: "STACKER_REVIEW_PATH",
			envVal: "/opt/arc",
			field:  func(c Config) any { return c.ReviewPath },
			want:   "/opt/arc",
		},
		{
			name:   "trunk",
			envKey: "STACKER_TRUNK",
			envVal: "main",
			field:  func(c Config) any { return c.Trunk },
			want:   "main",
		},
		{
			name:   "journal",
			envKey: "STACKER_JOURNAL",
			envVal: "false",
			field:  func(c Config) any { return c.Journal },
			want:   false,
		},
		{
			name:   "color",
			envKey: "STACKER_COLOR",
			envVal: "never",
			field:  func(c Config) any { return c.Color },
			want:   "never",
		},
		{
			name:   "verbose",
			envKey: "STACKER_VERBOSE",
			envVal: "true",
			field:  func(c Config) any { return c.Verbose },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			// Set env prefix so STACKER_* env vars map to config keys.
			viper.SetEnvPrefix("STACKER")
			viper.AutomaticEnv()

			os.Setenv(tt.envKey, tt.envVal)
			defer os.Unsetenv(tt.envKey)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLoad_RejectsBadColor(t *testing.T) {
	resetViper()
	viper.Set("color", "sometimes")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted an unknown color mode")
	}
}

func TestPaths(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	gitDir := filepath.Join("repo", ".git")
	if got, want := cfg.StorePath(gitDir), filepath.Join(gitDir, "child_branch_helper", "branches.csv"); got != want {
		t.Errorf("StorePath = %q, want %q", got, want)
	}
	if got, want := cfg.JournalPath(gitDir), filepath.Join(gitDir, "child_branch_helper", "journal.jsonl"); got != want {
		t.Errorf("JournalPath = %q, want %q", got, want)
	}
}
