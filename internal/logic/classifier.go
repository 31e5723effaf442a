package logic

// SamplesToLearn is how many in-band bursts the classifier needs before
// it starts emitting gestures.
const SamplesToLearn = 3

// Signature is the learned pulse-count fingerprint of one remote.
// Invariant: MinPulses <= AvgPulses <= MaxPulses while Samples > 0.
type Signature struct {
	MinPulses int
	MaxPulses int
	AvgPulses int
	Samples   int
}

// Tolerance returns the accepted deviation from AvgPulses. A wider
// learned band widens the tolerance with it.
func (s Signature) Tolerance() int {
	tol := (s.MaxPulses - s.MinPulses) + 20
	if tol < 30 {
		tol = 30
	}
	return tol
}

// Matches reports whether pulses falls inside the learned band.
func (s Signature) Matches(pulses int) bool {
	if s.Samples == 0 {
		return false
	}
	tol := s.Tolerance()
	return pulses >= s.AvgPulses-tol && pulses <= s.AvgPulses+tol
}

type clickState int

const (
	stateIdle clickState = iota
	stateAwaitingSecond
	stateAwaitingThird
)

// Classifier learns the pulse-count fingerprint of one RF remote out of
// a noisy receive stream and classifies its presses into single, double
// and triple gestures. State mutates only through Ingest, Update and
// Reset; emission is the only observable output.
type Classifier struct {
	cfg ClassifierConfig
	sig Signature

	state        clickState
	firstClick   Millis
	secondClick  Millis
	lastPress    Millis
	pressedOnce  bool // lastPress is valid
	lockoutStart Millis
	locked       bool
}

// NewClassifier creates an unlearned classifier.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Ingest consumes one pulse burst and returns the gesture it completes,
// if any. Call once per available burst.
func (c *Classifier) Ingest(pulses int, now Millis) Gesture {
	if pulses < c.cfg.MinPulses {
		return GestureNone // below the noise floor
	}
	if pulses > c.cfg.MaxPulses {
		pulses = c.cfg.MaxPulses
	}

	if !c.IsLearned() {
		c.learn(pulses)
		return GestureNone
	}

	if !c.sig.Matches(pulses) {
		// Another transmitter. Leave signature and click state alone.
		return GestureNone
	}

	// Matching bursts keep feeding the signature so the band adapts.
	c.learn(pulses)
	return c.press(now)
}

// Update fires pending click timeouts. Call once per poll even when no
// burst arrived, so singles and doubles are emitted on time.
func (c *Classifier) Update(now Millis) Gesture {
	switch c.state {
	case stateAwaitingSecond:
		wait := c.cfg.TripleClickMs
		if wait == 0 {
			wait = c.cfg.DoubleClickMs
		}
		if Since(now, c.firstClick) >= wait {
			return c.emit(GestureSingle, now)
		}
	case stateAwaitingThird:
		if Since(now, c.secondClick) >= c.cfg.TripleClickMs {
			return c.emit(GestureDouble, now)
		}
	}
	return GestureNone
}

// Reset clears the signature and click state unconditionally.
func (c *Classifier) Reset() {
	c.sig = Signature{}
	c.state = stateIdle
	c.pressedOnce = false
	c.locked = false
}

// IsLearned reports whether enough samples have been collected to start
// classifying.
func (c *Classifier) IsLearned() bool {
	return c.sig.Samples >= SamplesToLearn
}

// SignatureSnapshot returns a copy of the learned signature for
// diagnostics.
func (c *Classifier) SignatureSnapshot() Signature {
	return c.sig
}

func (c *Classifier) learn(pulses int) {
	if c.sig.Samples == 0 {
		c.sig = Signature{MinPulses: pulses, MaxPulses: pulses, AvgPulses: pulses, Samples: 1}
		return
	}
	if pulses < c.sig.MinPulses {
		c.sig.MinPulses = pulses
	}
	if pulses > c.sig.MaxPulses {
		c.sig.MaxPulses = pulses
	}
	c.sig.AvgPulses = (c.sig.AvgPulses*c.sig.Samples + pulses) / (c.sig.Samples + 1)
	c.sig.Samples++
}

// press runs the click state machine for one accepted burst.
func (c *Classifier) press(now Millis) Gesture {
	if c.inLockout(now) {
		return GestureNone
	}
	if c.pressedOnce && Since(now, c.lastPress) < c.cfg.DebounceMs {
		return GestureNone // bounce
	}
	c.lastPress = now
	c.pressedOnce = true

	switch c.state {
	case stateIdle:
		c.state = stateAwaitingSecond
		c.firstClick = now

	case stateAwaitingSecond:
		if Since(now, c.firstClick) > c.cfg.DoubleClickMs {
			// Too late for a double; this press starts over as a
			// fresh first click.
			c.firstClick = now
			return GestureNone
		}
		if c.cfg.TripleClickMs == 0 {
			return c.emit(GestureDouble, now)
		}
		c.state = stateAwaitingThird
		c.secondClick = now

	case stateAwaitingThird:
		if Since(now, c.secondClick) > c.cfg.TripleClickMs {
			c.state = stateAwaitingSecond
			c.firstClick = now
			return GestureNone
		}
		return c.emit(GestureTriple, now)
	}
	return GestureNone
}

func (c *Classifier) emit(g Gesture, now Millis) Gesture {
	c.state = stateIdle
	c.lockoutStart = now
	c.locked = true
	return g
}

func (c *Classifier) inLockout(now Millis) bool {
	if !c.locked {
		return false
	}
	if Since(now, c.lockoutStart) >= c.cfg.LockoutMs {
		c.locked = false
		return false
	}
	return true
}
