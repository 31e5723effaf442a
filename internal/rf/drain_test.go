package rf

import "testing"

func TestDrainLatestKeepsNewestInRange(t *testing.T) {
	r := NewFakeReceiver([]Burst{
		{Pulses: 10, At: 100},  // below range, skipped
		{Pulses: 120, At: 200}, // in range
		{Pulses: 30, At: 300},  // below range, skipped
		{Pulses: 140, At: 400}, // in range, newest
	})

	b, ok := DrainLatest(r, 8, 50, 400)
	if !ok {
		t.Fatal("expected a burst")
	}
	if b.Pulses != 140 || b.At != 400 {
		t.Errorf("got %+v, want {140 400}", b)
	}
}

func TestDrainLatestEmpty(t *testing.T) {
	r := NewFakeReceiver(nil)
	if _, ok := DrainLatest(r, 8, 50, 400); ok {
		t.Error("expected no burst from empty receiver")
	}
}

func TestDrainLatestAllBelowRange(t *testing.T) {
	r := NewFakeReceiver([]Burst{{Pulses: 5}, {Pulses: 49}})
	if _, ok := DrainLatest(r, 8, 50, 400); ok {
		t.Error("expected no burst when all are below range")
	}
}

func TestDrainLatestCapsPulses(t *testing.T) {
	r := NewFakeReceiver([]Burst{{Pulses: 900, At: 100}})
	b, ok := DrainLatest(r, 8, 50, 400)
	if !ok {
		t.Fatal("expected a burst")
	}
	if b.Pulses != 400 {
		t.Errorf("pulses: got %d, want 400 (capped)", b.Pulses)
	}
}

func TestDrainLatestBoundedBatch(t *testing.T) {
	bursts := make([]Burst, 10)
	for i := range bursts {
		bursts[i] = Burst{Pulses: 100 + i, At: 0}
	}
	r := NewFakeReceiver(bursts)

	b, ok := DrainLatest(r, 4, 50, 400)
	if !ok {
		t.Fatal("expected a burst")
	}
	// Only the first 4 items were drained; the rest stay queued.
	if b.Pulses != 103 {
		t.Errorf("pulses: got %d, want 103", b.Pulses)
	}
	if next, ok := r.TryRecv(); !ok || next.Pulses != 104 {
		t.Errorf("queue head after bounded drain: got %+v ok=%v, want pulses 104", next, ok)
	}
}

func TestFakeReceiverExhaustionAndReset(t *testing.T) {
	r := NewFakeReceiver([]Burst{{Pulses: 100}})
	if _, ok := r.TryRecv(); !ok {
		t.Fatal("expected first burst")
	}
	if _, ok := r.TryRecv(); ok {
		t.Error("expected exhaustion after script ends")
	}

	r.Reset()
	if _, ok := r.TryRecv(); !ok {
		t.Error("expected burst again after Reset")
	}

	if err := r.Close(); err != nil || !r.Closed {
		t.Error("Close should mark the receiver closed")
	}
}
