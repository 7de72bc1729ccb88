// Package rebase decides which revision a branch currently rests on and
// brings branches up to date with their parents, one branch or a whole
// subtree at a time. A rebase is recorded as pending before git runs and
// settled only after it succeeds, so an interrupted run can be reconciled
// by the next one.
package rebase

import (
	"context"
	"fmt"

	"github.com/papapumpkin/stacker/internal/graph"
	"github.com/papapumpkin/stacker/internal/journal"
)

// VCS is the subset of the version-control collaborator this package needs.
type VCS interface {
	// CurrentRevision resolves a ref to a commit id.
	CurrentRevision(ctx context.Context, ref string) (string, error)
	// ContainsCommit reports whether commit is reachable from branch.
	ContainsCommit(ctx context.Context, branch, commit string) (bool, error)
	// MergeBase returns the common ancestor of two commits.
	MergeBase(ctx context.Context, a, b string) (string, error)
	// RebaseOnto replays branch's commits after from onto onto.
	RebaseOnto(ctx context.Context, onto, from, branch string, extra []string) error
}

// Resolver determines a branch's effective base revision, settling a
// pending base left behind by an interrupted rebase.
type Resolver struct {
	vcs     VCS
	journal *journal.Emitter
}

// NewResolver returns a Resolver. j may be nil.
func NewResolver(vcs VCS, j *journal.Emitter) *Resolver {
	return &Resolver{vcs: vcs, journal: j}
}

// Resolve returns the revision branch rests on. A settled base is returned
// as is. A pending base is reconciled against the branch's history and
// settled in g, so later calls take the fast path.
func (r *Resolver) Resolve(ctx context.Context, g *graph.Graph, branch string) (string, error) {
	b := g.Base(branch)
	if b.IsZero() {
		return "", fmt.Errorf("%s: %w", branch, ErrNoBase)
	}
	if !b.IsPending() {
		return b.From(), nil
	}

	resolved, err := r.reconcile(ctx, branch, b.From(), b.Onto())
	if err != nil {
		return "", err
	}
	if err := g.FinishRebase(branch, resolved); err != nil {
		return "", err
	}
	r.journal.Record(journal.Event{
		Kind:   journal.KindBaseResolved,
		Branch: branch,
		From:   b.From(),
		Onto:   b.Onto(),
		Detail: resolved,
	})
	return resolved, nil
}

// reconcile picks between the pre-rebase base and the rebase target.
func (r *Resolver) reconcile(ctx context.Context, branch, from, onto string) (string, error) {
	hasFrom, err := r.vcs.ContainsCommit(ctx, branch, from)
	if err != nil {
		return "", fmt.Errorf("checking %s for %s: %w", branch, from, err)
	}
	hasOnto, err := r.vcs.ContainsCommit(ctx, branch, onto)
	if err != nil {
		return "", fmt.Errorf("checking %s for %s: %w", branch, onto, err)
	}

	switch {
	case hasFrom && hasOnto:
		if from == onto {
			return onto, nil
		}
		mb, err := r.vcs.MergeBase(ctx, from, onto)
		if err != nil {
			return "", fmt.Errorf("merge base of %s and %s: %w", from, onto, err)
		}
		// The merge base is the older of the two; the other one is newer.
		switch mb {
		case from:
			return onto, nil
		case onto:
			return from, nil
		default:
			return "", &ConsistencyError{Branch: branch, From: from, Onto: onto, MergeBase: mb}
		}
	case hasOnto:
		return onto, nil
	case hasFrom:
		return from, nil
	default:
		return "", &ConsistencyError{Branch: branch, From: from, Onto: onto}
	}
}
