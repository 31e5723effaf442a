package logic

// ViolationWindow rate-limits violation handling. Bark detectors tend
// to fire several times for one barking episode, and every call to
// Scheduler.OnViolation resets the quiet timer and may demote — so the
// caller gates detections through this window and lets at most one
// through per span.
type ViolationWindow struct {
	windowMs   Millis
	last       Millis
	armed      bool
	suppressed int
}

// NewViolationWindow creates a window of the given span.
func NewViolationWindow(windowMs Millis) *ViolationWindow {
	return &ViolationWindow{windowMs: windowMs}
}

// ShouldTrigger reports whether a detection at now should be handled.
// Detections inside the window are suppressed and counted.
func (w *ViolationWindow) ShouldTrigger(now Millis) bool {
	if w.armed && Since(now, w.last) < w.windowMs {
		w.suppressed++
		return false
	}
	w.suppressed = 0
	w.last = now
	w.armed = true
	return true
}

// Suppressed returns how many detections were swallowed inside the
// current window.
func (w *ViolationWindow) Suppressed() int { return w.suppressed }

// Reset clears the window so the next detection triggers immediately.
func (w *ViolationWindow) Reset() {
	w.armed = false
	w.suppressed = 0
}
