package rebase

import (
	"errors"
	"fmt"
)

// ErrNoBase indicates a branch has a parent but no recorded base revision,
// typically because it was attached with change-parent without ever being
// created through stacker.
var ErrNoBase = errors.New("no base revision recorded")

// ConsistencyError reports a pending base that cannot be reconciled with the
// branch's history: it contains neither candidate, or it contains both and
// they diverged. Resolving it needs a human.
type ConsistencyError struct {
	Branch    string
	From      string
	Onto      string
	MergeBase string // set when both candidates are contained
}

// Error explains which candidates were found and what the user must do.
func (e *ConsistencyError) Error() string {
	if e.MergeBase != "" {
		return fmt.Sprintf("branch %s contains both %s and %s but neither is their merge base %s; "+
			"record the correct base manually", e.Branch, e.From, e.Onto, e.MergeBase)
	}
	return fmt.Sprintf("branch %s contains neither %s nor %s; it was moved outside of stacker, "+
		"record the correct base manually", e.Branch, e.From, e.Onto)
}

// RebaseError reports a rebase that did not complete. The branch is left
// recorded as pending so the next run can reconcile it.
type RebaseError struct {
	Branch string
	From   string
	Onto   string
	Err    error
}

// Error returns the attempted rebase and how to recover.
func (e *RebaseError) Error() string {
	return fmt.Sprintf("rebasing %s from %s onto %s: %v; resolve the conflict (git rebase --continue) "+
		"or abort it (git rebase --abort), then run rebase again", e.Branch, short(e.From), short(e.Onto), e.Err)
}

// Unwrap returns the underlying VCS error.
func (e *RebaseError) Unwrap() error {
	return e.Err
}

func short(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
