package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/stacker/internal/graph"
)

// ArchivedNote is appended to the text tree when archived branches were hidden.
const ArchivedNote = "(not displaying archived branches, run with --all to see them)"

// Output formats for the branch structure.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatTOML = "toml"
)

// StructureOptions controls how the branch tree is rendered.
type StructureOptions struct {
	// Current is the checked-out branch, highlighted in text output.
	Current string
	// All includes archived branches and their subtrees.
	All bool
	// Color enables ANSI styling in text output.
	Color bool
}

// Node is one branch in the exported structure.
type Node struct {
	Name        string `json:"name" toml:"name"`
	Base        string `json:"base,omitempty" toml:"base,omitempty"`
	PendingOnto string `json:"pending_onto,omitempty" toml:"pending_onto,omitempty"`
	Archived    bool   `json:"archived,omitempty" toml:"archived,omitempty"`
	Current     bool   `json:"current,omitempty" toml:"current,omitempty"`
	Children    []Node `json:"children,omitempty" toml:"children,omitempty"`
}

// Forest is the exported structure: every root and its subtree.
type Forest struct {
	Roots []Node `json:"roots" toml:"roots"`
}

// BuildForest converts the graph into exported nodes, roots and siblings in
// name order. Archived branches are omitted, with their subtrees, unless
// opts.All is set; the second result reports whether any were.
func BuildForest(g *graph.Graph, opts StructureOptions) (Forest, bool) {
	var hidden bool
	var build func(name string) Node
	build = func(name string) Node {
		n := Node{Name: name, Archived: g.IsArchived(name), Current: name == opts.Current}
		if b := g.Base(name); !b.IsZero() {
			n.Base = b.From()
			if b.IsPending() {
				n.PendingOnto = b.Onto()
			}
		}
		for _, c := range g.Children(name) {
			if g.IsArchived(c) && !opts.All {
				hidden = true
				continue
			}
			n.Children = append(n.Children, build(c))
		}
		return n
	}

	f := Forest{Roots: []Node{}}
	for _, r := range g.Roots() {
		f.Roots = append(f.Roots, build(r))
	}
	return f, hidden
}

// RenderStructure draws the branch forest as a tree:
//
//	master
//	│
//	└── first_branch
//	    │
//	    ├── second_branch
//	    │   │
//	    │   └── third_branch
//	    │
//	    └── sibling_branch
//
// Roots are separated by a blank line and the current branch is highlighted.
func RenderStructure(g *graph.Graph, opts StructureOptions) string {
	forest, hidden := BuildForest(g, opts)
	st := newStyles(opts.Color)

	var lines []string
	var walk func(n Node, indent string)
	walk = func(n Node, indent string) {
		for i, c := range n.Children {
			last := i == len(n.Children)-1
			lines = append(lines, indent+"│")
			prefix, childIndent := "├── ", "│   "
			if last {
				prefix, childIndent = "└── ", "    "
			}
			lines = append(lines, indent+prefix+st.node(c))
			walk(c, indent+childIndent)
		}
	}
	for i, r := range forest.Roots {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, st.node(r))
		walk(r, "")
	}
	if hidden {
		lines = append(lines, ArchivedNote)
	}
	return strings.Join(lines, "\n")
}

// WriteStructure writes the forest to w in the given format.
func WriteStructure(w io.Writer, g *graph.Graph, format string, opts StructureOptions) error {
	switch format {
	case FormatText, "":
		_, err := fmt.Fprintln(w, RenderStructure(g, opts))
		return err
	case FormatJSON:
		forest, _ := BuildForest(g, opts)
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(forest)
	case FormatTOML:
		forest, _ := BuildForest(g, opts)
		return toml.NewEncoder(w).Encode(forest)
	default:
		return fmt.Errorf("unknown format %q (want %s, %s or %s)", format, FormatText, FormatJSON, FormatTOML)
	}
}

type styles struct {
	current  lipgloss.Style
	archived lipgloss.Style
	pending  lipgloss.Style
}

func newStyles(color bool) styles {
	r := lipgloss.NewRenderer(io.Discard)
	if color {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		current:  r.NewStyle().Foreground(colorCurrent).Bold(true),
		archived: r.NewStyle().Foreground(colorMuted),
		pending:  r.NewStyle().Foreground(colorPending),
	}
}

func (s styles) node(n Node) string {
	switch {
	case n.Current:
		return s.current.Render(n.Name)
	case n.Archived:
		return s.archived.Render(n.Name)
	case n.PendingOnto != "":
		return s.pending.Render(n.Name)
	default:
		return n.Name
	}
}
