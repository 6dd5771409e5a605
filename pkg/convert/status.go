// ABOUTME: Conversion session status values
// ABOUTME: Converting -> Stopping -> Stopped state machine
package convert

// Status is the lifecycle state of an Engine
type Status int

const (
	// StatusConverting accepts new submissions
	StatusConverting Status = iota
	// StatusStopping finishes queued work and drops new submissions
	StatusStopping
	// StatusStopped is terminal
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusConverting:
		return "converting"
	case StatusStopping:
		return "stopping"
	case StatusStopped:
		return "stopped"
	}
	return "unknown"
}
