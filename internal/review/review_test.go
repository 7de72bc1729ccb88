package review

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"testing"
)

func TestBuildArgs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{"diff bare", buildDiffArgs("abc123", nil), []string{"diff", "abc123"}},
		{"diff extra", buildDiffArgs("abc123", []string{"--", "--preview"}), []string{"diff", "abc123", "--preview"}},
		{"land bare", buildLandArgs("feature", nil), []string{"land", "--onto", "feature"}},
		{"land extra", buildLandArgs("master", []string{"--hold"}), []string{"land", "--onto", "master", "--hold"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if !slices.Equal(tt.got, tt.want) {
				t.Errorf("args = %v, want %v", tt.got, tt.want)
			}
		})
	}
}

// fakeArc writes a shell script that echoes its arguments and exits with
// the given status.
func fakeArc(t *testing.T, status int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake needs a unix shell")
	}
	path := filepath.Join(t.TempDir(), "arc")
	script := "#!/bin/sh\necho \"$@\"\nexit " + strconv.Itoa(status) + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInvoker(t *testing.T) {
	t.Parallel()

	t.Run("success streams output", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		inv := New(t.TempDir(), fakeArc(t, 0))
		inv.Stdin, inv.Stdout, inv.Stderr = nil, &out, &out

		if err := inv.Land(context.Background(), "master", []string{"--", "--hold"}); err != nil {
			t.Fatalf("Land: %v", err)
		}
		if got := strings.TrimSpace(out.String()); got != "land --onto master --hold" {
			t.Errorf("arc saw %q", got)
		}
	})

	t.Run("failure echoes command", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		inv := New(t.TempDir(), fakeArc(t, 1))
		inv.Stdin, inv.Stdout, inv.Stderr = nil, &out, &out

		err := inv.Diff(context.Background(), "abc123", nil)
		var ce *CommandError
		if !errors.As(err, &ce) {
			t.Fatalf("Diff() = %v, want *CommandError", err)
		}
		if !strings.Contains(ce.Error(), "diff abc123") {
			t.Errorf("error does not echo the command: %q", ce.Error())
		}
	})

	t.Run("missing binary", func(t *testing.T) {
		t.Parallel()
		inv := New(t.TempDir(), filepath.Join(t.TempDir(), "no-such-arc"))
		if err := inv.Validate(); !errors.Is(err, ErrNotInstalled) {
			t.Errorf("Validate() = %v, want ErrNotInstalled", err)
		}
	})
}
