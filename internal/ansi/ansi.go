// Package ansi provides ANSI escape code constants and terminal detection for
// stacker's stderr messages. All colored message output should reference
// these constants to avoid duplication.
package ansi

import (
	"os"

	"github.com/mattn/go-isatty"
)

// ANSI SGR (Select Graphic Rendition) codes.
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Yellow = "\033[33m"
	Green  = "\033[32m"
	Red    = "\033[31m"
	Cyan   = "\033[36m"
)

// ClearScreen moves the cursor home and clears the display.
const ClearScreen = "\033[H\033[2J"

// IsTerminal reports whether f is attached to a terminal, including Cygwin
// and MSYS pseudo-terminals.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Enabled decides whether to emit color for f under mode, which is one of
// "always", "never" or "auto". Auto colors terminals unless NO_COLOR is set.
func Enabled(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return IsTerminal(f)
}

// Wrap surrounds s with code and a reset when on is true.
func Wrap(on bool, code, s string) string {
	if !on {
		return s
	}
	return code + s + Reset
}
