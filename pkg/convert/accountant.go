// ABOUTME: Packet accounting for conversion sessions
// ABOUTME: Tracks packets submitted versus packets fully converted
package convert

import "fmt"

// accountant holds the two monotonically increasing counters that decide
// when a draining session is finished. The engine guards it with its mutex.
type accountant struct {
	submitted int64
	converted int64
}

func (a *accountant) submit(packets int) {
	a.submitted += int64(packets)
}

// complete records converted (or failed) packets. Completing more than was
// submitted is a programming error.
func (a *accountant) complete(packets int) {
	if a.converted+int64(packets) > a.submitted {
		panic(fmt.Sprintf("convert: %d packets completed with only %d outstanding",
			packets, a.submitted-a.converted))
	}
	a.converted += int64(packets)
}

func (a *accountant) outstanding() int64 {
	return a.submitted - a.converted
}

// isComplete is the only valid end-of-stream test: a stop was requested
// and every submitted packet has been accounted for.
func (a *accountant) isComplete(status Status) bool {
	return status == StatusStopping && a.converted == a.submitted
}
