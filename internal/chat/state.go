package chat

// State is a lifecycle state of the controller.
type State int

const (
	StateUninitialized State = iota
	StateValidating
	StateConnecting
	StateReady
	StateRunningTurn
	StateReconnecting
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateValidating:
		return "validating"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateRunningTurn:
		return "running_turn"
	case StateReconnecting:
		return "reconnecting"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
