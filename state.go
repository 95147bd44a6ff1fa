package wizard

import "fmt"

// Phase is the lifecycle position of a stream session.
type Phase int

const (
	PhaseIdle       Phase = iota // No session, or after Reset.
	PhaseConnecting              // Opening the connection, including retries.
	PhaseStreaming               // At least one payload received.
	PhaseComplete                // Terminal payload received.
	PhaseError                   // Terminal failure; State.Error is set.
	PhaseEnded                   // Connection closed without a terminal event.
)

var phaseNames = [...]string{
	PhaseIdle:       "idle",
	PhaseConnecting: "connecting",
	PhaseStreaming:  "streaming",
	PhaseComplete:   "complete",
	PhaseError:      "error",
	PhaseEnded:      "ended",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	for i, name := range phaseNames {
		if name == s {
			return Phase(i), nil
		}
	}
	return PhaseIdle, fmt.Errorf("unknown phase %q: %w", s, ErrValidation)
}

// Terminal reports whether no further state changes follow without a new
// session.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseError || p == PhaseEnded
}

// State is the externally observed snapshot of a stream session.
//
// IsStreaming and IsComplete are derived from Phase, so they are never true
// at the same time. Error is only set together with PhaseError.
//
// A consumer must not read !IsComplete() as "still running": PhaseEnded is a
// valid terminal state with neither a result nor an error.
type State struct {
	SessionID   string
	Phase       Phase
	Text        string // concatenated text_chunk content, in arrival order
	PartialData []any  // best-effort items extracted so far; nil if none
	Error       string
	FinalData   any
	Retries     int // consecutive failed attempts since the last successful open
}

// IsStreaming reports whether a session is in flight.
func (s State) IsStreaming() bool {
	return s.Phase == PhaseConnecting || s.Phase == PhaseStreaming
}

// IsComplete reports whether a terminal payload was received.
func (s State) IsComplete() bool {
	return s.Phase == PhaseComplete
}

// Clone returns a copy that shares no mutable slice with s. Items themselves
// are never mutated after they are accepted, so they are shared.
func (s State) Clone() State {
	if s.PartialData != nil {
		items := make([]any, len(s.PartialData))
		copy(items, s.PartialData)
		s.PartialData = items
	}
	return s
}
