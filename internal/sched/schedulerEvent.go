// internal/sched/schedulerEvent.go

package sched

// EventKind represents the type of scheduler event
type EventKind int

const (
	EventAssign EventKind = iota
	EventRelease
	EventNoServer
	EventDeadlineMiss
	EventPowerCapExceeded
	EventExhausted
)

// Event is recorded on every key action of a driver.
// Value carries the kind specific quantity: the end time of an assignment,
// the overrun of a missed deadline, or the total draw over the global cap.
type Event struct {
	Time     float64
	Kind     EventKind
	TaskID   TaskID
	ServerID ServerID
	Value    float64
}

func (ek EventKind) String() string {
	switch ek {
	case EventAssign:
		return "assign"
	case EventRelease:
		return "release"
	case EventNoServer:
		return "no-server"
	case EventDeadlineMiss:
		return "deadline-miss"
	case EventPowerCapExceeded:
		return "power-cap-exceeded"
	case EventExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Warning reports whether the event signals a constraint that was not met.
func (ek EventKind) Warning() bool {
	switch ek {
	case EventNoServer, EventDeadlineMiss, EventPowerCapExceeded, EventExhausted:
		return true
	default:
		return false
	}
}

// Count returns the number of events of the given kind.
func Count(events []Event, kind EventKind) int {
	var result int

	for _, event := range events {
		if event.Kind == kind {
			result++
		}
	}

	return result
}
