package cmd

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/papapumpkin/stacker/internal/store"
)

func TestCommands_Registered(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		alias string
		flags []string
	}{
		{name: "make-branch", alias: "create-child-branch", flags: []string{"revision"}},
		{name: "change-parent", flags: []string{"branch"}},
		{name: "rebase", flags: []string{"recursive", "branch"}},
		{name: "remove-branch", alias: "remove-leaf-branch", flags: []string{"force"}},
		{name: "rename", alias: "rename-branch", flags: []string{"force"}},
		{name: "print-structure", flags: []string{"all", "format", "watch"}},
		{name: "print-branch-info", flags: []string{"null"}},
		{name: "set-archived", flags: []string{"unarchive"}},
		{name: "clean-branches", flags: []string{"archive", "delete", "upstream"}},
		{name: "delete-archived"},
		{name: "arc-diff"},
		{name: "arc-land", flags: []string{"yes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, _, err := rootCmd.Find([]string{tt.name})
			if err != nil || c.Name() != tt.name {
				t.Fatalf("expected %q subcommand to be registered on rootCmd", tt.name)
			}
			if tt.alias != "" {
				if a, _, err := rootCmd.Find([]string{tt.alias}); err != nil || a != c {
					t.Errorf("alias %q does not resolve to %q", tt.alias, tt.name)
				}
			}
			for _, f := range tt.flags {
				if c.Flags().Lookup(f) == nil {
					t.Errorf("expected flag %q to be registered on %s", f, tt.name)
				}
			}
		})
	}
}

func gitCmd(t *testing.T, dir string, args ...string) string {
	t.Helper()
	c := exec.Command("git", args...)
	c.Dir = dir
	out, err := c.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

func commit(t *testing.T, dir, file, msg string) string {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, file), []byte(msg+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	gitCmd(t, dir, "add", "-A")
	gitCmd(t, dir, "commit", "-m", msg)
	return gitCmd(t, dir, "rev-parse", "HEAD")
}

func runCLI(t *testing.T, args ...string) {
	t.Helper()
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("stacker %s: %v", strings.Join(args, " "), err)
	}
}

// Not parallel: drives the shared rootCmd and global viper state.
func TestCLI_StackWorkflow(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	gitCmd(t, dir, "init", "-b", "master")
	gitCmd(t, dir, "config", "user.email", "test@test.com")
	gitCmd(t, dir, "config", "user.name", "Test")
	commit(t, dir, "hello.txt", "r0")

	viper.Reset()
	viper.Set("work_dir", dir)
	viper.Set("color", "never")
	t.Cleanup(viper.Reset)

	runCLI(t, "make-branch", "first")
	commit(t, dir, "first.txt", "first work")
	runCLI(t, "make-branch", "second")
	commit(t, dir, "second.txt", "second work")

	gitCmd(t, dir, "checkout", "master")
	r1 := commit(t, dir, "master.txt", "r1")

	runCLI(t, "rebase", "--recursive", "--branch", "first")

	storePath := filepath.Join(dir, ".git", "child_branch_helper", "branches.csv")
	g, err := store.New(storePath).Load()
	if err != nil {
		t.Fatalf("loading store: %v", err)
	}
	if b := g.Base("first"); b.IsPending() || b.From() != r1 {
		t.Errorf("base(first) = %v, want settled %s", b, r1)
	}
	firstTip := gitCmd(t, dir, "rev-parse", "first")
	if b := g.Base("second"); b.IsPending() || b.From() != firstTip {
		t.Errorf("base(second) = %v, want settled %s", b, firstTip)
	}
	if cur := gitCmd(t, dir, "rev-parse", "--abbrev-ref", "HEAD"); cur != "first" {
		t.Errorf("checked out %q after rebase, want first", cur)
	}

	journal, err := os.ReadFile(filepath.Join(dir, ".git", "child_branch_helper", "journal.jsonl"))
	if err != nil {
		t.Fatalf("reading journal: %v", err)
	}
	if n := strings.Count(string(journal), `"rebase_finish"`); n != 2 {
		t.Errorf("journal has %d rebase_finish events, want 2:\n%s", n, journal)
	}
}
