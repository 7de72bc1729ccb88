package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for a store file that cannot be interpreted.
var (
	// ErrMalformedRow indicates a data row with the wrong shape or an unparseable field.
	ErrMalformedRow = errors.New("malformed row")
	// ErrDuplicateBranch indicates a child name appears on more than one row.
	ErrDuplicateBranch = errors.New("duplicate branch")
	// ErrBadVersion indicates the version record is unreadable.
	ErrBadVersion = errors.New("bad version record")
	// ErrUnsupportedVersion indicates the file was written by a newer schema.
	ErrUnsupportedVersion = errors.New("unsupported store version")
	// ErrMigration indicates the migrations did not bring the file to the latest version.
	ErrMigration = errors.New("migration did not converge")
)

// FormatError reports a corrupt or unparseable store file. Line is 0 when
// the problem is not tied to a single row.
type FormatError struct {
	Path string
	Line int
	Err  error
}

// Error returns the path, line if known, and the underlying problem.
func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return e.Path + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *FormatError) Unwrap() error {
	return e.Err
}
