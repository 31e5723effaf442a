// Package gpio drives the trainer's actuators with hardware
// abstraction. The real implementation uses the Linux GPIO character
// device. The fake implementation allows testing without hardware.
package gpio

import "time"

// Actuator drives one output device with timed pulses.
type Actuator interface {
	// Pulse switches the output on for the given duration and
	// schedules the switch-off; it returns immediately. A pulse
	// issued while one is active extends it.
	Pulse(d time.Duration) error

	// Close switches the output off and releases it.
	Close() error
}

// Default pin assignments (BCM numbering).
const (
	DefaultPinFeeder    = 17 // treat feeder motor
	DefaultPinValve     = 27 // water valve
	DefaultPinVibration = 22 // vibration motor
	DefaultPinLED       = 23 // status LED
)
