package scheduler

// State is the lifecycle phase of a BuildContext.
type State uint8

const (
	// StateAccumulating accepts new builders and edges.
	StateAccumulating State = iota
	// StateRunning executes the planned graph. The graph is frozen.
	StateRunning
	// StateCompleted means the last run finished without errors.
	StateCompleted
	// StateFailed means the last run finished with at least one error.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAccumulating:
		return "accumulating"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
