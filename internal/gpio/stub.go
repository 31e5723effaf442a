//go:build !linux

package gpio

import (
	"errors"
	"time"
)

// Bank is not available on non-Linux platforms.
type Bank struct{}

// NewBank returns an error on non-Linux platforms.
func NewBank() (*Bank, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Actuator is not implemented on non-Linux platforms.
func (b *Bank) Actuator(pin int) (*RealActuator, error) {
	return nil, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (b *Bank) Close() error {
	return nil
}

// RealActuator is not available on non-Linux platforms.
type RealActuator struct{}

// Pulse is not implemented on non-Linux platforms.
func (a *RealActuator) Pulse(d time.Duration) error { return errors.New("gpio: not supported") }

// Close is not implemented on non-Linux platforms.
func (a *RealActuator) Close() error { return nil }
