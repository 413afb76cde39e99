package launch

// State is a step of the launch state machine
type State int

const (
	StateNotStarted State = iota
	StateProbing
	StateEmbeddedRunning
	StateRetryingWithLessMemory
	StateReExecuted
	StateFallbackExternal
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateProbing:
		return "probing"
	case StateEmbeddedRunning:
		return "embedded-running"
	case StateRetryingWithLessMemory:
		return "retrying-with-less-memory"
	case StateReExecuted:
		return "re-executed"
	case StateFallbackExternal:
		return "fallback-external"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no transition leaves s
func (s State) Terminal() bool {
	switch s {
	case StateEmbeddedRunning, StateReExecuted, StateFallbackExternal, StateFailed:
		return true
	default:
		return false
	}
}
