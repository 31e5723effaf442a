// Package rf receives pulse bursts from the remote-control RF module
// with hardware abstraction. The real implementation counts edges on a
// GPIO line via the Linux GPIO character device and groups them into
// bursts; the fake implementation replays scripted bursts for tests.
package rf

import "github.com/sweeney/bark-trainer/internal/logic"

// Burst is one receive event: the number of pulses seen before the
// line went idle, and when the burst completed.
type Burst struct {
	Pulses int
	At     logic.Millis
}

// Receiver hands out pending bursts without blocking.
type Receiver interface {
	// TryRecv returns the next pending burst, if any.
	TryRecv() (Burst, bool)

	// Close releases receiver resources.
	Close() error
}

// DefaultPin is the BCM pin the 433 MHz receiver data line is wired to.
const DefaultPin = 35
