// Package graph holds the in-memory forest of stacked branches: parent and
// child edges, each branch's recorded base revision, and its archived flag.
// Every structural mutation goes through Graph so the parent index and the
// child index stay mutually consistent.
package graph

import (
	"fmt"
	"slices"
	"sort"
)

type record struct {
	base     Base
	archived bool
}

// Graph is a forest of branches. Edges point from a child to its single
// parent. Root branches (typically the trunk) have no record of their own
// and are only known through the children that name them as parent.
type Graph struct {
	// parents maps child → parent.
	parents map[string]string
	// children maps parent → sorted child names. Never holds an empty slice.
	children map[string][]string
	// records holds base and archived state for every branch with a row in the store.
	records map[string]*record
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		parents:  make(map[string]string),
		children: make(map[string][]string),
		records:  make(map[string]*record),
	}
}

// Restore inserts a branch exactly as it was persisted. It is meant for
// loaders; callers building a tree interactively use AddChild.
func (g *Graph) Restore(child, parent string, base Base, archived bool) error {
	if child == parent {
		return fmt.Errorf("%w: %s is its own parent", ErrCycle, child)
	}
	if _, ok := g.records[child]; ok {
		return fmt.Errorf("%w: %s", ErrBranchExists, child)
	}
	g.parents[child] = parent
	g.children[parent] = insertSorted(g.children[parent], child)
	g.records[child] = &record{base: base, archived: archived}
	return nil
}

// Validate reports ErrCycle if any branch is its own ancestor.
func (g *Graph) Validate() error {
	for child := range g.parents {
		seen := 0
		for cur, ok := g.parents[child]; ok; cur, ok = g.parents[cur] {
			if cur == child || seen > len(g.parents) {
				return fmt.Errorf("%w: %s is its own ancestor", ErrCycle, child)
			}
			seen++
		}
	}
	return nil
}

// Parent returns the parent of name and whether it has one.
func (g *Graph) Parent(name string) (string, bool) {
	p, ok := g.parents[name]
	return p, ok
}

// HasParent reports whether name has a recorded parent.
func (g *Graph) HasParent(name string) bool {
	_, ok := g.parents[name]
	return ok
}

// Children returns the children of name in lexicographic order.
func (g *Graph) Children(name string) []string {
	return slices.Clone(g.children[name])
}

// Roots returns, sorted, every branch without a parent that is the parent of something.
func (g *Graph) Roots() []string {
	var roots []string
	for p := range g.children {
		if _, ok := g.parents[p]; !ok {
			roots = append(roots, p)
		}
	}
	sort.Strings(roots)
	return roots
}

// Branches returns every branch with a parent, sorted.
func (g *Graph) Branches() []string {
	names := make([]string, 0, len(g.parents))
	for c := range g.parents {
		names = append(names, c)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of branches with a parent.
func (g *Graph) Len() int {
	return len(g.parents)
}

// Base returns the recorded base of name. The zero Base means none is recorded.
func (g *Graph) Base(name string) Base {
	if r, ok := g.records[name]; ok {
		return r.base
	}
	return Base{}
}

// IsTracked reports whether name has its own record, independent of the
// trees it appears in as a parent.
func (g *Graph) IsTracked(name string) bool {
	_, ok := g.records[name]
	return ok
}

// IsArchived reports whether name is marked archived. Unknown branches are not.
func (g *Graph) IsArchived(name string) bool {
	r, ok := g.records[name]
	return ok && r.archived
}

// SetArchived sets the archived flag of a tracked branch.
func (g *Graph) SetArchived(name string, archived bool) error {
	r, ok := g.records[name]
	if !ok {
		return precondition(name, ErrUnknownBranch, "only branches with a parent can be archived")
	}
	r.archived = archived
	return nil
}

// AddChild declares a new leaf under parent, resting on base.
func (g *Graph) AddChild(parent, child, base string) error {
	if g.known(child) {
		return precondition(child, ErrBranchExists, "pick a different branch name")
	}
	if child == parent {
		return precondition(child, ErrCycle, "a branch cannot be its own parent")
	}
	if base == "" {
		return precondition(child, ErrBaseState, "a base revision is required")
	}
	return g.Restore(child, parent, Settled(base), false)
}

// SetParent moves child under newParent. A child the graph has not seen
// before is recorded without a base. Reparenting onto the child itself or
// onto one of its descendants fails with ErrCycle.
func (g *Graph) SetParent(child, newParent string) error {
	if child == newParent {
		return precondition(child, ErrCycle, "a branch cannot be its own parent")
	}
	for cur, ok := newParent, true; ok; cur, ok = g.parents[cur] {
		if cur == child {
			return precondition(child, ErrCycle, newParent+" descends from "+child)
		}
	}

	if old, ok := g.parents[child]; ok {
		g.unlink(old, child)
	}
	g.parents[child] = newParent
	g.children[newParent] = insertSorted(g.children[newParent], child)
	if _, ok := g.records[child]; !ok {
		g.records[child] = &record{}
	}
	return nil
}

// CollapseAndRemoveParent excises oldParent from the forest: its own edge
// and record are dropped and each of its children moves up to its parent.
func (g *Graph) CollapseAndRemoveParent(oldParent string) error {
	newParent, ok := g.parents[oldParent]
	if !ok {
		return precondition(oldParent, ErrNoParent, "a root branch cannot be collapsed")
	}
	g.unlink(newParent, oldParent)
	delete(g.parents, oldParent)
	delete(g.records, oldParent)

	for _, c := range g.children[oldParent] {
		g.parents[c] = newParent
		g.children[newParent] = insertSorted(g.children[newParent], c)
	}
	delete(g.children, oldParent)
	return nil
}

// RemoveChildLeaf drops a branch that has no children, along with its record.
func (g *Graph) RemoveChildLeaf(name string) error {
	if n := len(g.children[name]); n > 0 {
		return precondition(name, ErrHasChildren,
			fmt.Sprintf("%d child(ren); change their parent first", n))
	}
	if !g.known(name) {
		return precondition(name, ErrUnknownBranch, "")
	}
	if p, ok := g.parents[name]; ok {
		g.unlink(p, name)
		delete(g.parents, name)
	}
	delete(g.records, name)
	return nil
}

// RenameBranch moves every edge and record of oldName to newName.
func (g *Graph) RenameBranch(oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	if !g.known(oldName) {
		return precondition(oldName, ErrUnknownBranch, "")
	}
	if g.known(newName) {
		return precondition(newName, ErrBranchExists, "pick a different branch name")
	}

	if r, ok := g.records[oldName]; ok {
		g.records[newName] = r
		delete(g.records, oldName)
	}
	if p, ok := g.parents[oldName]; ok {
		g.unlink(p, oldName)
		delete(g.parents, oldName)
		g.parents[newName] = p
		g.children[p] = insertSorted(g.children[p], newName)
	}
	if kids, ok := g.children[oldName]; ok {
		for _, c := range kids {
			g.parents[c] = newName
		}
		g.children[newName] = kids
		delete(g.children, oldName)
	}
	return nil
}

// StartRebase records the intent to rebase a settled branch onto onto.
func (g *Graph) StartRebase(branch, onto string) error {
	r, ok := g.records[branch]
	if !ok || r.base.IsZero() {
		return precondition(branch, ErrBaseState, "no base revision is recorded")
	}
	if r.base.IsPending() {
		return precondition(branch, ErrBaseState, "a rebase onto "+r.base.Onto()+" is already pending")
	}
	r.base = Pending(r.base.From(), onto)
	return nil
}

// FinishRebase settles a pending branch on rev, which may be either
// candidate or a different revision altogether.
func (g *Graph) FinishRebase(branch, rev string) error {
	r, ok := g.records[branch]
	if !ok || !r.base.IsPending() {
		return precondition(branch, ErrBaseState, "no rebase is pending")
	}
	r.base = Settled(rev)
	return nil
}

// Linearized returns every known branch ordered so that each branch comes
// after all of its descendants. Roots are visited in sorted order and
// siblings lexicographically, breadth first; the visit order is then reversed.
func (g *Graph) Linearized() []string {
	var order []string
	queue := g.Roots()
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)
		queue = append(queue, g.children[name]...)
	}
	slices.Reverse(order)
	return order
}

// Contains reports whether name appears anywhere in the graph, as a tracked
// branch, a parent, or both.
func (g *Graph) Contains(name string) bool {
	return g.known(name)
}

// known reports whether name appears anywhere in the graph.
func (g *Graph) known(name string) bool {
	if _, ok := g.records[name]; ok {
		return true
	}
	if _, ok := g.parents[name]; ok {
		return true
	}
	_, ok := g.children[name]
	return ok
}

// unlink removes child from parent's child list, dropping the list once empty.
func (g *Graph) unlink(parent, child string) {
	kids := slices.DeleteFunc(g.children[parent], func(c string) bool { return c == child })
	if len(kids) == 0 {
		delete(g.children, parent)
		return
	}
	g.children[parent] = kids
}

func insertSorted(list []string, name string) []string {
	i, found := slices.BinarySearch(list, name)
	if found {
		return list
	}
	return slices.Insert(list, i, name)
}
