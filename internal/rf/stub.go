//go:build !linux

package rf

import (
	"errors"

	"github.com/sweeney/bark-trainer/internal/logic"
)

// RealReceiver is not available on non-Linux platforms.
type RealReceiver struct{}

// NewRealReceiver returns an error on non-Linux platforms.
func NewRealReceiver(pin, maxPulses int, now func() logic.Millis) (*RealReceiver, error) {
	return nil, errors.New("rf: not supported on this platform (requires Linux)")
}

// TryRecv is not implemented on non-Linux platforms.
func (r *RealReceiver) TryRecv() (Burst, bool) {
	return Burst{}, false
}

// Close is not implemented on non-Linux platforms.
func (r *RealReceiver) Close() error {
	return nil
}
