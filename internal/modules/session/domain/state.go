package domain

import (
	"fmt"

	apperrors "studylog/internal/platform/errors"
)

// State is derived from the newest open entry each time it is needed; it is
// never stored.
type State string

const (
	StateNoActiveEntry State = "no_active_entry"
	StateActive        State = "active"
	StateOnBreak       State = "on_break"
)

type Operation string

const (
	OpStart  Operation = "start"
	OpBreak  Operation = "break"
	OpResume Operation = "resume"
	OpEnd    Operation = "end"
)

// StateOf maps the open entry (nil when none) to a state.
func StateOf(open *Entry) State {
	switch {
	case open == nil:
		return StateNoActiveEntry
	case open.EventType == EventBreak:
		return StateOnBreak
	default:
		return StateActive
	}
}

var transitions = map[State]map[Operation]State{
	StateNoActiveEntry: {OpStart: StateActive},
	StateActive:        {OpBreak: StateOnBreak, OpEnd: StateNoActiveEntry},
	StateOnBreak:       {OpResume: StateActive},
}

// Next returns the state reached by applying op, or the validation error
// describing why op is not allowed in state.
func Next(state State, op Operation) (State, error) {
	if next, ok := transitions[state][op]; ok {
		return next, nil
	}
	switch {
	case op == OpStart:
		return state, apperrors.ErrActiveSessionExists
	case state == StateNoActiveEntry:
		return state, apperrors.ErrNoActiveSession
	case op == OpEnd:
		// end only closes a study entry; a break has to be resumed first
		return state, fmt.Errorf("cannot end while on break: %w", apperrors.ErrNoActiveSession)
	case op == OpBreak:
		return state, fmt.Errorf("session is already on break: %w", apperrors.ErrInvalidInput)
	default:
		return state, fmt.Errorf("session is not on break: %w", apperrors.ErrInvalidInput)
	}
}
