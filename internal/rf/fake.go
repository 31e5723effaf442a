package rf

// FakeReceiver is a test double that hands out scripted bursts.
type FakeReceiver struct {
	// Bursts contains the scripted bursts. Each TryRecv consumes the
	// next one; when exhausted, TryRecv reports no pending burst.
	Bursts []Burst

	// index tracks the current position in Bursts.
	index int

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeReceiver creates a FakeReceiver with the given bursts.
func NewFakeReceiver(bursts []Burst) *FakeReceiver {
	return &FakeReceiver{Bursts: bursts}
}

// TryRecv returns the next scripted burst, if any remain.
func (f *FakeReceiver) TryRecv() (Burst, bool) {
	if f.index >= len(f.Bursts) {
		return Burst{}, false
	}
	b := f.Bursts[f.index]
	f.index++
	return b, true
}

// Push appends a burst to the script.
func (f *FakeReceiver) Push(b Burst) {
	f.Bursts = append(f.Bursts, b)
}

// Close marks the receiver as closed.
func (f *FakeReceiver) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the receiver to the beginning of the script.
func (f *FakeReceiver) Reset() {
	f.index = 0
	f.Closed = false
}
