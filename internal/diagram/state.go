package diagram

import "fmt"

// State is the position of one render call in its candidate chain.
type State int

const (
	StatePending State = iota
	StateTrying
	StateSucceeded
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateTrying:
		return "trying"
	case StateSucceeded:
		return "succeeded"
	case StateExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// IsTerminal reports whether no further transition is allowed.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateExhausted
}

// attempt tracks one Gateway.Render call.
type attempt struct {
	state State
	index int // candidate being tried, valid in StateTrying
}

// transition moves the attempt to (to, index). Trying may repeat only with a
// strictly greater index so candidates are never retried.
func (a *attempt) transition(to State, index int) error {
	if !isAllowedTransition(a.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, a.state, to)
	}
	if to == StateTrying && a.state == StateTrying && index <= a.index {
		return fmt.Errorf("%w: candidate %d after %d", ErrInvalidState, index, a.index)
	}
	a.state = to
	if to == StateTrying {
		a.index = index
	}
	return nil
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StatePending:
		return to == StateTrying || to == StateExhausted
	case StateTrying:
		return to == StateTrying || to == StateSucceeded || to == StateExhausted
	default:
		return false
	}
}
