package maintenance

import (
	"fmt"
	"strings"
)

// PruneMode selects what PruneInvalid does with a branch whose ref is gone.
type PruneMode int

const (
	// PruneArchive marks the branch archived, keeping its record.
	PruneArchive PruneMode = iota
	// PruneDelete removes the branch's record.
	PruneDelete
)

// ActionKind is what happened to a branch during a maintenance pass.
type ActionKind int

const (
	// ActionArchived means the branch was marked archived.
	ActionArchived ActionKind = iota
	// ActionDeleted means the branch's record was removed.
	ActionDeleted
	// ActionSkipped means the branch was left alone; Detail or Children say why.
	ActionSkipped
)

// Action reports one branch handled by a maintenance pass.
type Action struct {
	Kind     ActionKind
	Branch   string
	Detail   string
	Children []string // set for ActionSkipped when children blocked removal
}

// String renders the action as a user-facing line.
func (a Action) String() string {
	switch a.Kind {
	case ActionArchived:
		return fmt.Sprintf("Archiving %s branch %s", a.Detail, a.Branch)
	case ActionDeleted:
		return fmt.Sprintf("Deleting %s (%s)", a.Branch, a.Detail)
	case ActionSkipped:
		if len(a.Children) > 0 {
			return fmt.Sprintf("Skipping %s branch %s because it has children (%s); change each child's parent first",
				a.Detail, a.Branch, strings.Join(a.Children, ", "))
		}
		return fmt.Sprintf("Skipping %s: %s", a.Branch, a.Detail)
	default:
		return a.Branch
	}
}
