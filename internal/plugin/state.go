package plugin

import "fmt"

// State is a point in the module lifecycle state machine:
// Discovered -> Validated -> Loaded -> Initialized -> Configured -> Started -> Stopped -> Unloaded,
// with a terminal Failed(stage, error) reachable from any prior state.
type State int

const (
	Discovered State = iota
	Validated
	Loaded
	Initialized
	Configured
	Started
	Stopped
	Unloaded
	Failed
)

func (s State) String() string {
	switch s {
	case Discovered:
		return "Discovered"
	case Validated:
		return "Validated"
	case Loaded:
		return "Loaded"
	case Initialized:
		return "Initialized"
	case Configured:
		return "Configured"
	case Started:
		return "Started"
	case Stopped:
		return "Stopped"
	case Unloaded:
		return "Unloaded"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// order gives each non-terminal state its position in the monotonic
// progression, used by CanTransition to reject backward moves.
var order = map[State]int{
	Discovered:  0,
	Validated:   1,
	Loaded:      2,
	Initialized: 3,
	Configured:  4,
	Started:     5,
	Stopped:     6,
	Unloaded:    7,
}

// CanTransition reports whether moving from `from` to `to` respects the
// lifecycle's monotonic ordering. Failed is reachable from anywhere. The one
// explicitly forbidden non-terminal move is Stopped -> Started: a stopped
// module must be reloaded, not merely restarted.
func CanTransition(from, to State) bool {
	if to == Failed {
		return true
	}
	if from == Stopped && to == Started {
		return false
	}
	fromN, fromOK := order[from]
	toN, toOK := order[to]
	if !fromOK || !toOK {
		return false
	}
	return toN == fromN+1
}

// FailureRecord captures the stage and cause of a terminal Failed transition.
type FailureRecord struct {
	Stage State
	Err   error
}

func (f FailureRecord) String() string {
	return fmt.Sprintf("Failed(%s): %v", f.Stage, f.Err)
}
