package game

import "errors"

var (
	// ErrIllegalAction rejects an action that fails the legality rules for
	// the current state. The match state is left untouched.
	ErrIllegalAction = errors.New("illegal action")

	// ErrMatchDone rejects any action applied after the match reached DONE.
	ErrMatchDone = errors.New("match is done")
)
