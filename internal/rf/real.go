//go:build linux

package rf

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/bark-trainer/internal/logic"
)

const (
	// burstIdleGap separates bursts: once the line has been quiet this
	// long, the accumulated edge count is emitted as one burst.
	burstIdleGap = 12 * time.Millisecond

	// edgeQueue bounds the raw edge queue between the gpiocdev event
	// goroutine and the grouping goroutine. Overflow truncates the
	// burst rather than blocking the event handler.
	edgeQueue = 4096

	// burstQueue bounds completed bursts awaiting the poll loop's
	// drain. Overflow drops the newest burst.
	burstQueue = 32
)

// RealReceiver counts edges from the RF receiver module's data line and
// groups them into bursts separated by an idle gap.
type RealReceiver struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line

	maxPulses int
	now       func() logic.Millis

	edges  chan struct{}
	bursts chan Burst
	done   chan struct{}
}

// NewRealReceiver opens the given BCM pin for edge events. Pulse counts
// are capped at maxPulses; now supplies burst timestamps.
func NewRealReceiver(pin, maxPulses int, now func() logic.Millis) (*RealReceiver, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealReceiver{
		chip:      chip,
		maxPulses: maxPulses,
		now:       now,
		edges:     make(chan struct{}, edgeQueue),
		bursts:    make(chan Burst, burstQueue),
		done:      make(chan struct{}),
	}

	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(r.onEdge))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request receiver pin %d: %w", pin, err)
	}
	r.line = line

	go r.groupEdges()
	return r, nil
}

// onEdge runs on the gpiocdev event goroutine; it must never block.
func (r *RealReceiver) onEdge(gpiocdev.LineEvent) {
	select {
	case r.edges <- struct{}{}:
	default:
		// Queue full under heavy noise; the burst gets truncated.
	}
}

// groupEdges accumulates edges into bursts: an idle gap on the line
// finishes the current burst.
func (r *RealReceiver) groupEdges() {
	timer := time.NewTimer(burstIdleGap)
	defer timer.Stop()

	count := 0
	for {
		select {
		case <-r.done:
			return

		case <-r.edges:
			if count < r.maxPulses {
				count++
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(burstIdleGap)

		case <-timer.C:
			if count > 0 {
				select {
				case r.bursts <- Burst{Pulses: count, At: r.now()}:
				default:
					// Poll loop is behind; drop this burst.
				}
				count = 0
			}
			timer.Reset(burstIdleGap)
		}
	}
}

// TryRecv returns the next completed burst, if any.
func (r *RealReceiver) TryRecv() (Burst, bool) {
	select {
	case b := <-r.bursts:
		return b, true
	default:
		return Burst{}, false
	}
}

// Close stops the grouping goroutine and releases GPIO resources.
func (r *RealReceiver) Close() error {
	close(r.done)

	var errs []error
	if r.line != nil {
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close receiver line: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
