package ansi

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnabled(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	t.Setenv("NO_COLOR", "")
	tests := []struct {
		mode string
		want bool
	}{
		{"always", true},
		{"never", false},
		{"auto", false}, // a regular file is never a terminal
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			if got := Enabled(tt.mode, f); got != tt.want {
				t.Errorf("Enabled(%q) = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()
	if got := Wrap(false, Red, "x"); got != "x" {
		t.Errorf("Wrap(off) = %q", got)
	}
	if got := Wrap(true, Red, "x"); got != Red+"x"+Reset {
		t.Errorf("Wrap(on) = %q", got)
	}
}
