package match

import (
	"fmt"
	"time"
)

// State is derived from status and wall-clock time; it is never persisted.
type State string

const (
	StateOpen     State = "OPEN"
	StateLocked   State = "LOCKED"
	StateFinished State = "FINISHED"
)

func StateAt(m Match, now time.Time) State {
	if m.Status == StatusFinished {
		return StateFinished
	}
	if !now.Before(m.StartTime) {
		return StateLocked
	}
	return StateOpen
}

func (m Match) StateAt(now time.Time) State {
	return StateAt(m, now)
}

// CanAcceptPrediction allows prediction writes only while the match is OPEN.
func CanAcceptPrediction(m Match, now time.Time) error {
	state := StateAt(m, now)
	if state != StateOpen {
		return fmt.Errorf("%w: match=%s state=%s", ErrNotOpen, m.ID, state)
	}
	return nil
}

// CanAcceptResult allows the official result any time before the match is FINISHED.
func CanAcceptResult(m Match, now time.Time) error {
	if StateAt(m, now) == StateFinished {
		return fmt.Errorf("%w: match=%s", ErrAlreadyFinished, m.ID)
	}
	return nil
}
