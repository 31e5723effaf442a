//go:build linux

package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Bank owns the GPIO chip and hands out output lines for actuators.
type Bank struct {
	chip  *gpiocdev.Chip
	lines []*RealActuator
}

// NewBank opens the Raspberry Pi GPIO chip.
func NewBank() (*Bank, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &Bank{chip: chip}, nil
}

// Actuator requests the given BCM pin as an output, initially off.
func (b *Bank) Actuator(pin int) (*RealActuator, error) {
	line, err := b.chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}
	a := &RealActuator{line: line}
	b.lines = append(b.lines, a)
	return a, nil
}

// Close shuts off and releases all actuators, then closes the chip.
// Pins are reconfigured to input with pull-down (matching Pi boot
// defaults) so external driver modules see a clean state on shutdown.
func (b *Bank) Close() error {
	var errs []error
	for _, a := range b.lines {
		if err := a.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealActuator drives one output line on actual hardware.
type RealActuator struct {
	line *gpiocdev.Line

	mu     sync.Mutex
	off    *time.Timer
	closed bool
}

// Pulse switches the line on and schedules the switch-off after d.
func (a *RealActuator) Pulse(d time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return fmt.Errorf("actuator closed")
	}
	if a.off != nil {
		a.off.Stop()
	}
	if err := a.line.SetValue(1); err != nil {
		return fmt.Errorf("set output: %w", err)
	}
	a.off = time.AfterFunc(d, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if !a.closed {
			a.line.SetValue(0)
		}
	})
	return nil
}

// Close switches the line off and releases it.
func (a *RealActuator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true
	if a.off != nil {
		a.off.Stop()
	}

	var errs []error
	if err := a.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("clear output: %w", err))
	}
	if err := a.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure pin: %w", err))
	}
	if err := a.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pin: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
