// Package review invokes the external code-review tool (arc) to upload a
// branch's diff or land it onto its parent.
package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNotInstalled indicates the review tool binary could not be found.
var ErrNotInstalled = errors.New("review tool not installed")

// CommandError reports a review tool invocation that exited non-zero or was
// interrupted.
type CommandError struct {
	Path string
	Args []string
	Err  error
}

// Error echoes the failing command.
func (e *CommandError) Error() string {
	return fmt.Sprintf("failed to run %s %s: %v", e.Path, strings.Join(e.Args, " "), e.Err)
}

// Unwrap returns the underlying process error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// Invoker runs the review tool in a working directory. Both operations are
// interactive, so the process inherits the configured stdio.
type Invoker struct {
	Path   string
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns an Invoker for the binary at path, using the process's stdio.
func New(dir, path string) *Invoker {
	if path == "" {
		path = "arc"
	}
	return &Invoker{
		Path:   path,
		Dir:    dir,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Validate checks that the review tool can be found.
func (inv *Invoker) Validate() error {
	if _, err := exec.LookPath(inv.Path); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrNotInstalled, inv.Path, err)
	}
	return nil
}

// Diff uploads the changes since base for review.
func (inv *Invoker) Diff(ctx context.Context, base string, extra []string) error {
	return inv.run(ctx, buildDiffArgs(base, extra))
}

// Land lands the current branch onto onto.
func (inv *Invoker) Land(ctx context.Context, onto string, extra []string) error {
	return inv.run(ctx, buildLandArgs(onto, extra))
}

// buildDiffArgs constructs the arguments for a diff against base.
func buildDiffArgs(base string, extra []string) []string {
	return append([]string{"diff", base}, trimSeparator(extra)...)
}

// buildLandArgs constructs the arguments for landing onto onto.
func buildLandArgs(onto string, extra []string) []string {
	return append([]string{"land", "--onto", onto}, trimSeparator(extra)...)
}

// trimSeparator drops a leading "--" used on the command line to stop flag
// parsing before pass-through arguments.
func trimSeparator(extra []string) []string {
	if len(extra) > 0 && extra[0] == "--" {
		return extra[1:]
	}
	return extra
}

func (inv *Invoker) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, inv.Path, args...)
	cmd.Dir = inv.Dir
	cmd.Stdin = inv.Stdin
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr

	start := time.Now()
	err := cmd.Run()
	log.Debug().
		Str("cmd", inv.Path).
		Strs("args", args).
		Dur("took", time.Since(start)).
		Err(err).
		Msg("review")
	if err != nil {
		return &CommandError{Path: inv.Path, Args: args, Err: err}
	}
	return nil
}
