package tooltip

import (
	"time"

	"github.com/teranos/tip/sym"
)

// Phase is an instance's position in the visibility state machine
type Phase int

const (
	PhaseHidden Phase = iota
	// PhaseShowing: show delay running
	PhaseShowing
	PhaseVisible
	// PhaseHiding: hide delay running, or a hide in progress
	PhaseHiding
	PhaseDestroyed
)

func (p Phase) String() string {
	switch p {
	case PhaseShowing:
		return "showing"
	case PhaseVisible:
		return "visible"
	case PhaseHiding:
		return "hiding"
	case PhaseDestroyed:
		return "destroyed"
	}
	return "hidden"
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Glyph returns the phase's symbol
func (p Phase) Glyph() string {
	switch p {
	case PhaseShowing:
		return sym.Showing
	case PhaseVisible:
		return sym.Visible
	case PhaseHiding:
		return sym.Hiding
	case PhaseDestroyed:
		return sym.Destroyed
	}
	return sym.Hidden
}

// Transition is one observed phase change
type Transition struct {
	Instance *Instance
	From     Phase
	To       Phase
	At       time.Time
}

// State is a snapshot of an instance's flags
type State struct {
	ID              uint64
	Phase           Phase
	Destroyed       bool
	Enabled         bool
	Visible         bool
	Mounted         bool
	Shown           bool
	PreparingToShow bool
}
