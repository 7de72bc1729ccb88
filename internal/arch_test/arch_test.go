// Package arch_test guards the shape of stacker's internal packages: which
// package may import which, how large files grow, and that the exported API
// is documented.
package arch_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"testing"
)

const modulePath = "github.com/papapumpkin/stacker"

// internalDir returns the absolute path of internal/, found relative to
// this source file.
func internalDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	return filepath.Dir(filepath.Dir(file))
}

// packages lists the directories under internal/ holding Go code, except
// this one.
func packages(t *testing.T) []string {
	t.Helper()
	dir := internalDir(t)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	var pkgs []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "arch_test" {
			continue
		}
		if len(sourceFiles(t, e.Name(), true)) > 0 {
			pkgs = append(pkgs, e.Name())
		}
	}
	sort.Strings(pkgs)
	return pkgs
}

// sourceFiles returns the .go files of pkg, with or without its tests.
func sourceFiles(t *testing.T, pkg string, withTests bool) []string {
	t.Helper()
	dir := filepath.Join(internalDir(t), pkg)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}
		if !withTests && strings.HasSuffix(name, "_test.go") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files
}

// imports returns every import path used by the non-test files of pkg.
func imports(t *testing.T, pkg string) []string {
	t.Helper()
	seen := map[string]bool{}
	fset := token.NewFileSet()
	for _, f := range sourceFiles(t, pkg, false) {
		node, err := parser.ParseFile(fset, f, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("parsing %s: %v", f, err)
		}
		for _, imp := range node.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				t.Fatalf("%s: bad import %s", f, imp.Path.Value)
			}
			seen[path] = true
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// internalName maps an import path inside this module's internal/ tree to
// its package directory, or "" for any other path.
func internalName(path string) string {
	rel, ok := strings.CutPrefix(path, modulePath+"/internal/")
	if !ok {
		return ""
	}
	if i := strings.Index(rel, "/"); i >= 0 {
		rel = rel[:i]
	}
	return rel
}
