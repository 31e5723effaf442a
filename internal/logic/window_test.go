package logic

import "testing"

func TestViolationWindowFirstDetectionTriggers(t *testing.T) {
	w := NewViolationWindow(5000)
	if !w.ShouldTrigger(0) {
		t.Error("first detection should trigger")
	}
}

func TestViolationWindowSuppressesInsideWindow(t *testing.T) {
	w := NewViolationWindow(5000)
	w.ShouldTrigger(1000)

	if w.ShouldTrigger(2000) {
		t.Error("detection inside window should be suppressed")
	}
	if w.ShouldTrigger(5999) {
		t.Error("detection at window edge should be suppressed")
	}
	if w.Suppressed() != 2 {
		t.Errorf("suppressed: got %d, want 2", w.Suppressed())
	}

	if !w.ShouldTrigger(6000) {
		t.Error("detection after window should trigger")
	}
	if w.Suppressed() != 0 {
		t.Errorf("suppressed after trigger: got %d, want 0", w.Suppressed())
	}
}

func TestViolationWindowReset(t *testing.T) {
	w := NewViolationWindow(5000)
	w.ShouldTrigger(1000)
	w.Reset()
	if !w.ShouldTrigger(1001) {
		t.Error("detection after reset should trigger")
	}
}

func TestViolationWindowAcrossCounterWrap(t *testing.T) {
	w := NewViolationWindow(5000)
	base := Millis(4294966000)
	w.ShouldTrigger(base)
	if w.ShouldTrigger(base + 4999) { // wrapped
		t.Error("detection inside window should be suppressed across wrap")
	}
	if !w.ShouldTrigger(base + 5000) {
		t.Error("detection after window should trigger across wrap")
	}
}
