package graph

// Base is the revision a branch is compared and rebased against. It is
// either settled on a single revision, or pending: a rebase from one
// revision onto another was started and has not been confirmed.
type Base struct {
	from string
	onto string // empty while settled
}

// Settled returns a base resting on rev.
func Settled(rev string) Base {
	return Base{from: rev}
}

// Pending returns a base recording an unconfirmed rebase from one revision onto another.
func Pending(from, onto string) Base {
	return Base{from: from, onto: onto}
}

// IsZero reports whether no base is recorded.
func (b Base) IsZero() bool {
	return b.from == ""
}

// IsPending reports whether a rebase was started and not confirmed.
func (b Base) IsPending() bool {
	return b.onto != ""
}

// From returns the settled revision, or the pre-rebase revision of a pending base.
func (b Base) From() string {
	return b.from
}

// Onto returns the rebase target of a pending base, or "" when settled.
func (b Base) Onto() string {
	return b.onto
}

// String renders a settled base as its revision and a pending one as from..onto.
func (b Base) String() string {
	if b.IsPending() {
		return b.from + ".." + b.onto
	}
	return b.from
}
