package maintenance

import "errors"

var (
	// ErrNotRebased indicates a branch does not rest on its parent's tip.
	ErrNotRebased = errors.New("branch is not rebased onto its parent")
	// ErrNotMerged indicates a branch has commits its parent does not.
	ErrNotMerged = errors.New("branch is not merged into its parent")
	// ErrBranchGone indicates a tracked branch has no ref left in git.
	ErrBranchGone = errors.New("branch no longer exists in the repository")
	// ErrAborted indicates the user declined a confirmation prompt.
	ErrAborted = errors.New("aborted")
)
