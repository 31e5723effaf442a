package gpio

import "time"

// FakeActuator records pulses for test assertions.
type FakeActuator struct {
	// Pulses contains the duration of every Pulse call, in order.
	Pulses []time.Duration

	// Closed tracks if Close was called.
	Closed bool

	// PulseError, if set, will be returned by Pulse.
	PulseError error
}

// NewFakeActuator creates a FakeActuator for testing.
func NewFakeActuator() *FakeActuator {
	return &FakeActuator{}
}

// Pulse records the requested duration.
func (f *FakeActuator) Pulse(d time.Duration) error {
	if f.PulseError != nil {
		return f.PulseError
	}
	f.Pulses = append(f.Pulses, d)
	return nil
}

// Close marks the actuator as closed.
func (f *FakeActuator) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded pulses.
func (f *FakeActuator) Reset() {
	f.Pulses = nil
	f.Closed = false
	f.PulseError = nil
}
