package rf

// DrainLatest pulls at most maxBatch pending bursts from r and returns
// the last one whose pulse count reaches minPulses, capping the count
// at maxPulses. Bounding the batch keeps the poll loop short under
// sustained RF noise; keeping only the newest in-range burst collapses
// a noisy drain to a single representative sample per poll.
func DrainLatest(r Receiver, maxBatch, minPulses, maxPulses int) (Burst, bool) {
	var latest Burst
	var found bool

	for i := 0; i < maxBatch; i++ {
		b, ok := r.TryRecv()
		if !ok {
			break
		}
		if b.Pulses < minPulses {
			continue
		}
		if b.Pulses > maxPulses {
			b.Pulses = maxPulses
		}
		latest = b
		found = true
	}
	return latest, found
}
