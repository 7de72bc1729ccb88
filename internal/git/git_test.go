package git

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// initTestRepo creates a temporary git repo on branch master with an
// initial commit and returns a Git for it.
func initTestRepo(t *testing.T) *Git {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	ctx := context.Background()

	run(ctx, t, dir, "git", "init", "-b", "master")
	run(ctx, t, dir, "git", "config", "user.email", "test@test.com")
	run(ctx, t, dir, "git", "config", "user.name", "Test")
	commitFile(t, dir, "hello.txt", "hello\n", "initial")

	g := New(dir, "git")
	g.Stdin = nil
	g.Stdout = io.Discard
	g.Stderr = io.Discard
	return g
}

// run executes a command in the given directory and fails the test on error.
func run(ctx context.Context, t *testing.T, dir string, name string, args ...string) string {
	t.Helper()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("%s %v failed: %v\n%s", name, args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// commitFile writes contents to name and commits it, returning the new HEAD.
func commitFile(t *testing.T, dir, name, contents, msg string) string {
	t.Helper()
	ctx := context.Background()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	run(ctx, t, dir, "git", "add", "-A")
	run(ctx, t, dir, "git", "commit", "-m", msg)
	return run(ctx, t, dir, "git", "rev-parse", "HEAD")
}

func TestOpen(t *testing.T) {
	t.Run("valid repo", func(t *testing.T) {
		g := initTestRepo(t)
		if _, err := Open(context.Background(), g.Dir, "git"); err != nil {
			t.Fatalf("Open: %v", err)
		}
	})

	t.Run("non-repo directory", func(t *testing.T) {
		if _, err := exec.LookPath("git"); err != nil {
			t.Skip("git not installed")
		}
		_, err := Open(context.Background(), t.TempDir(), "git")
		if !errors.Is(err, ErrNotRepository) {
			t.Errorf("Open() = %v, want ErrNotRepository", err)
		}
	})
}

func TestRevisionsAndBranches(t *testing.T) {
	g := initTestRepo(t)
	ctx := context.Background()

	head, err := g.CurrentRevision(ctx, "HEAD")
	if err != nil {
		t.Fatalf("CurrentRevision: %v", err)
	}
	if len(head) != 40 {
		t.Errorf("CurrentRevision(HEAD) = %q, want full hash", head)
	}

	if err := g.CreateBranch(ctx, "feature", "master"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if cur, _ := g.CurrentBranch(ctx); cur != "feature" {
		t.Errorf("CurrentBranch() = %q, want feature", cur)
	}

	exists, err := g.BranchExists(ctx, "feature", false)
	if err != nil || !exists {
		t.Errorf("BranchExists(feature) = %v, %v", exists, err)
	}
	exists, err = g.BranchExists(ctx, "nope", true)
	if err != nil || exists {
		t.Errorf("BranchExists(nope) = %v, %v", exists, err)
	}

	if err := g.Checkout(ctx, "master"); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if err := g.DeleteBranch(ctx, "feature", false); err != nil {
		t.Fatalf("DeleteBranch: %v", err)
	}
	if exists, _ := g.BranchExists(ctx, "feature", false); exists {
		t.Error("feature still exists after delete")
	}

	_, err = g.CurrentRevision(ctx, "does-not-exist")
	var ce *CommandError
	if !errors.As(err, &ce) {
		t.Fatalf("CurrentRevision(missing) = %v, want *CommandError", err)
	}
	if !strings.Contains(ce.Error(), "git rev-parse") {
		t.Errorf("CommandError does not echo the command: %q", ce.Error())
	}
}

func TestAncestry(t *testing.T) {
	g := initTestRepo(t)
	ctx := context.Background()
	r0, _ := g.CurrentRevision(ctx, "HEAD")

	run(ctx, t, g.Dir, "git", "checkout", "-b", "feature")
	r1 := commitFile(t, g.Dir, "f.txt", "f\n", "feature work")

	tests := []struct {
		name   string
		branch string
		commit string
		want   bool
	}{
		{"own tip", "feature", r1, true},
		{"ancestor", "feature", r0, true},
		{"descendant", "master", r1, false},
		{"unknown commit", "master", strings.Repeat("0", 40), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.ContainsCommit(ctx, tt.branch, tt.commit)
			if err != nil {
				t.Fatalf("ContainsCommit: %v", err)
			}
			if got != tt.want {
				t.Errorf("ContainsCommit(%s, %s) = %v, want %v", tt.branch, tt.commit, got, tt.want)
			}
		})
	}

	mb, err := g.MergeBase(ctx, r0, r1)
	if err != nil || mb != r0 {
		t.Errorf("MergeBase = %q, %v; want %q", mb, err, r0)
	}

	merged, err := g.IsMergedInto(ctx, "feature", "master")
	if err != nil || merged {
		t.Errorf("IsMergedInto(feature, master) = %v, %v; want false", merged, err)
	}
	merged, err = g.IsMergedInto(ctx, "master", "feature")
	if err != nil || !merged {
		t.Errorf("IsMergedInto(master, feature) = %v, %v; want true", merged, err)
	}
}

func TestRebaseOnto(t *testing.T) {
	t.Run("clean rebase", func(t *testing.T) {
		g := initTestRepo(t)
		ctx := context.Background()
		r0, _ := g.CurrentRevision(ctx, "HEAD")
		run(ctx, t, g.Dir, "git", "checkout", "-b", "feature")
		commitFile(t, g.Dir, "f.txt", "f\n", "feature work")
		run(ctx, t, g.Dir, "git", "checkout", "master")
		r1 := commitFile(t, g.Dir, "m.txt", "m\n", "master work")

		if err := g.RebaseOnto(ctx, r1, r0, "feature", nil); err != nil {
			t.Fatalf("RebaseOnto: %v", err)
		}
		if ok, _ := g.ContainsCommit(ctx, "feature", r1); !ok {
			t.Error("feature does not contain new master tip after rebase")
		}
	})

	t.Run("conflict", func(t *testing.T) {
		g := initTestRepo(t)
		ctx := context.Background()
		r0, _ := g.CurrentRevision(ctx, "HEAD")
		run(ctx, t, g.Dir, "git", "checkout", "-b", "feature")
		commitFile(t, g.Dir, "hello.txt", "feature\n", "feature edit")
		run(ctx, t, g.Dir, "git", "checkout", "master")
		r1 := commitFile(t, g.Dir, "hello.txt", "master\n", "master edit")

		err := g.RebaseOnto(ctx, r1, r0, "feature", nil)
		if !errors.Is(err, ErrRebaseFailed) {
			t.Fatalf("RebaseOnto() = %v, want ErrRebaseFailed", err)
		}
		run(ctx, t, g.Dir, "git", "rebase", "--abort")
	})
}

func TestBranchExists_NestedName(t *testing.T) {
	g := initTestRepo(t)
	ctx := context.Background()

	if err := g.CreateBranch(ctx, "feat/x", "master"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	tests := []struct {
		name string
		want bool
	}{
		{name: "feat/x", want: true},
		{name: "feat", want: false},
		{name: "master", want: true},
	}
	for _, tt := range tests {
		got, err := g.BranchExists(ctx, tt.name, false)
		if err != nil {
			t.Fatalf("BranchExists(%q): %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("BranchExists(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
