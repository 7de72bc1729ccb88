package graph

import "errors"

// Sentinel errors for structural preconditions on the branch graph.
var (
	// ErrUnknownBranch indicates an operation referenced a branch the graph has never seen.
	ErrUnknownBranch = errors.New("unknown branch")
	// ErrBranchExists indicates a branch name is already present in the graph.
	ErrBranchExists = errors.New("branch already exists")
	// ErrNoParent indicates a branch that must have a parent is a root.
	ErrNoParent = errors.New("branch has no parent")
	// ErrHasChildren indicates a leaf-only operation was applied to a branch with children.
	ErrHasChildren = errors.New("branch has children")
	// ErrCycle indicates a reparent would make a branch its own ancestor.
	ErrCycle = errors.New("parent cycle")
	// ErrBaseState indicates a rebase transition was applied to a base in the wrong state.
	ErrBaseState = errors.New("invalid base state")
)

// PreconditionError reports an operation that was refused before any state
// was mutated. Hint carries the corrective instruction shown to the user.
type PreconditionError struct {
	Branch string
	Hint   string
	Err    error
}

// Error returns the branch, the failed precondition and the hint.
func (e *PreconditionError) Error() string {
	msg := e.Branch + ": " + e.Err.Error()
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// Unwrap returns the underlying sentinel for use with errors.Is.
func (e *PreconditionError) Unwrap() error {
	return e.Err
}

func precondition(branch string, err error, hint string) error {
	return &PreconditionError{Branch: branch, Hint: hint, Err: err}
}
