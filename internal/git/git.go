// Package git drives the git CLI for the queries and mutations stacked
// branches need: revisions, ancestry, branch lifecycle and rebase --onto.
package git

import (
	"bytes"
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

// ErrNotRepository indicates the working directory is not inside a git repository.
var ErrNotRepository = errors.New("not a git repository")

// ErrRebaseFailed indicates git rebase stopped, usually on a conflict. The
// repository is left mid-rebase for the user to continue or abort.
var ErrRebaseFailed = errors.New("rebase did not complete")

// CommandError reports a git invocation that exited unsuccessfully. It
// echoes the command so the user can re-run or inspect it.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

// Error returns the failing command line, the exit status and git's own message.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("`git %s`: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns the underlying exec error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// Git runs git commands in Dir. Commands whose output the user should see
// as it happens (checkout, rebase) are streamed to Stdout and Stderr.
type Git struct {
	Dir    string
	Path   string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a Git for dir using the binary at path, streaming to the
// process's own stdio.
func New(dir, path string) *Git {
	if path == "" {
		path = "git"
	}
	return &Git{
		Dir:    dir,
		Path:   path,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Open is New plus a check that git is installed and dir is a repository.
func Open(ctx context.Context, dir, path string) (*Git, error) {
	g := New(dir, path)
	if _, err := exec.LookPath(g.Path); err != nil {
		return nil, fmt.Errorf("git not available: %w", err)
	}
	if _, err := g.output(ctx, "rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotRepository, dir, err)
	}
	return g, nil
}

// GitDir returns the absolute path of the repository's git directory.
func (g *Git) GitDir(ctx context.Context) (string, error) {
	return g.output(ctx, "rev-parse", "--absolute-git-dir")
}

// CurrentRevision resolves ref to a full commit hash.
func (g *Git) CurrentRevision(ctx context.Context, ref string) (string, error) {
	return g.output(ctx, "rev-parse", "--verify", ref+"^{commit}")
}

// CurrentBranch returns the name of the checked-out branch ("HEAD" when detached).
func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	return g.output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// Checkout switches the working tree to ref.
func (g *Git) Checkout(ctx context.Context, ref string) error {
	return g.stream(ctx, "checkout", ref)
}

// CreateBranch creates name at ref and checks it out.
func (g *Git) CreateBranch(ctx context.Context, name, at string) error {
	return g.stream(ctx, "checkout", "-b", name, at)
}

// DeleteBranch deletes a local branch. Without force git refuses to delete
// a branch that is not merged.
func (g *Git) DeleteBranch(ctx context.Context, name string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := g.output(ctx, "branch", flag, name)
	return err
}

// RebaseOnto replays the commits of branch after from onto onto. A failure
// wraps ErrRebaseFailed; the repository is left as git left it.
func (g *Git) RebaseOnto(ctx context.Context, onto, from, branch string, extra []string) error {
	args := append([]string{"rebase", "--onto", onto, from, branch}, extra...)
	if err := g.stream(ctx, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrRebaseFailed, err)
	}
	return nil
}

// ContainsCommit reports whether commit is reachable from branch. A commit
// git cannot find is reported as not contained.
func (g *Git) ContainsCommit(ctx context.Context, branch, commit string) (bool, error) {
	return g.isAncestor(ctx, commit, branch)
}

// IsMergedInto reports whether every commit of branch is reachable from target.
func (g *Git) IsMergedInto(ctx context.Context, branch, target string) (bool, error) {
	return g.isAncestor(ctx, branch, target)
}

// MergeBase returns the best common ancestor of a and b.
func (g *Git) MergeBase(ctx context.Context, a, b string) (string, error) {
	return g.output(ctx, "merge-base", a, b)
}

// BranchExists reports whether a local branch named name exists, or, with
// includeRemote, whether any remote has a branch of that name.
func (g *Git) BranchExists(ctx context.Context, name string, includeRemote bool) (bool, error) {
	exists, err := g.refExists(ctx, "refs/heads/"+name)
	if err != nil || exists || !includeRemote {
		return exists, err
	}

	out, err := g.output(ctx, "for-each-ref", "--format=%(refname:lstrip=3)", "refs/remotes")
	if err != nil {
		return false, err
	}
	for _, remote := range strings.Split(out, "\n") {
		if remote == name {
			return true, nil
		}
	}
	return false, nil
}

// refExists looks up ref by its full name. Unlike for-each-ref patterns, a
// ref only matches itself, never a ref nested below it.
func (g *Git) refExists(ctx context.Context, ref string) (bool, error) {
	_, err := g.output(ctx, "show-ref", "--verify", "--quiet", ref)
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, err
}

func (g *Git) isAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	_, err := g.output(ctx, "merge-base", "--is-ancestor", ancestor, descendant)
	if err == nil {
		return true, nil
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, err
}

// output runs git and returns its trimmed stdout.
func (g *Git) output(ctx context.Context, args ...string) (string, error) {
	cmd := g.command(ctx, args)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	logRun(args, start, err)
	if err != nil {
		return "", &CommandError{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// stream runs git with its output attached to the user's terminal.
func (g *Git) stream(ctx context.Context, args ...string) error {
	cmd := g.command(ctx, args)
	cmd.Stdin = g.Stdin
	cmd.Stdout = g.Stdout
	cmd.Stderr = g.Stderr

	start := time.Now()
	err := cmd.Run()
	logRun(args, start, err)
	if err != nil {
		return &CommandError{Args: args, Err: err}
	}
	return nil
}

func (g *Git) command(ctx context.Context, args []string) *exec.Cmd {
	cmdArgs := append([]string{"-C", g.Dir}, args...)
	return exec.CommandContext(ctx, g.Path, cmdArgs...)
}

func logRun(args []string, start time.Time, err error) {
	ev := log.Debug().Strs("args", args).Dur("took", time.Since(start))
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("git")
}
