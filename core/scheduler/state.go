package scheduler

// State is the phase of the charger within a cycle.
type State int

const (
	StateIdle State = iota
	StateTraveling
	StateTransferring
	StateReplenishing
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTraveling:
		return "traveling"
	case StateTransferring:
		return "transferring"
	case StateReplenishing:
		return "replenishing"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// allowed lists the legal transitions of the cycle state machine.
var allowed = map[State][]State{
	StateIdle:         {StateTraveling, StateIdle, StateTerminated},
	StateTraveling:    {StateTransferring},
	StateTransferring: {StateReplenishing},
	StateReplenishing: {StateIdle, StateTerminated},
}

func canTransition(from, to State) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}
