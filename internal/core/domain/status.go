package domain

// BuilderStatus is the execution state of a builder within one session.
type BuilderStatus uint8

const (
	// StatusPending means the builder has not been visited yet.
	StatusPending BuilderStatus = iota
	// StatusRunning means the builder is executing.
	StatusRunning
	// StatusCompleted means the builder ran successfully.
	StatusCompleted
	// StatusCached means the builder was skipped and its cached outputs reused.
	StatusCached
	// StatusFailed means the builder's Run returned an error.
	StatusFailed
	// StatusUnavailable means the builder reported it cannot run.
	StatusUnavailable
	// StatusUnresolved means a prerequisite was unavailable or unresolved.
	StatusUnresolved
	// StatusBlocked means a prerequisite failed.
	StatusBlocked
)

var statusNames = [...]string{
	StatusPending:     "pending",
	StatusRunning:     "running",
	StatusCompleted:   "completed",
	StatusCached:      "cached",
	StatusFailed:      "failed",
	StatusUnavailable: "unavailable",
	StatusUnresolved:  "unresolved",
	StatusBlocked:     "blocked",
}

func (s BuilderStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// IsTerminal reports whether the status is final for the session.
func (s BuilderStatus) IsTerminal() bool {
	return s != StatusPending && s != StatusRunning
}

// Succeeded reports whether outputs are available.
func (s BuilderStatus) Succeeded() bool {
	return s == StatusCompleted || s == StatusCached
}
