package workflows

// State enumerates the orchestrator's run states. A run moves
// Idle → Decoding → Running → Encoding → Done; Error is terminal and
// reachable from any state on an unrecoverable failure. Recoverable stage
// faults do not leave Running.
type State int

const (
	StateIdle State = iota
	StateDecoding
	StateRunning
	StateEncoding
	StateDone
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDecoding:
		return "decoding"
	case StateRunning:
		return "running"
	case StateEncoding:
		return "encoding"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
