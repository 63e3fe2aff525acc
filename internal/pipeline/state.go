package pipeline

// State is a step of a single read.
type State string

const (
	StateStart          State = "start"
	StateAwaitingSource State = "awaiting_source"
	StateParsing        State = "parsing"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

var transitions = map[State][]State{
	StateStart:          {StateAwaitingSource},
	StateAwaitingSource: {StateParsing, StateFailed},
	StateParsing:        {StateDone, StateFailed},
}

// CanTransition reports whether next may follow s.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends a read.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
