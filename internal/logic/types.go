// Package logic contains the pure decision cores of the bark trainer:
// the remote-gesture classifier and the quiet-reinforcement scheduler.
// This package has NO external dependencies (no GPIO, MQTT, OS, or
// time.Sleep). Time is always injected as a Millis parameter.
package logic

// Millis is a monotonic millisecond counter. It wraps around roughly
// every 49.7 days, so elapsed time must never be computed by comparing
// two Millis values directly — always use Since, whose unsigned modular
// subtraction stays correct across the wrap. This is a design invariant
// of the whole package, not an incidental property of the platform.
type Millis uint32

// Since returns the milliseconds elapsed from then to now.
func Since(now, then Millis) Millis {
	return now - then
}

// Gesture is a classified remote button press.
type Gesture int

const (
	GestureNone Gesture = iota
	GestureSingle
	GestureDouble
	GestureTriple
)

func (g Gesture) String() string {
	switch g {
	case GestureSingle:
		return "SINGLE"
	case GestureDouble:
		return "DOUBLE"
	case GestureTriple:
		return "TRIPLE"
	default:
		return "NONE"
	}
}

// ClassifierConfig holds the classifier's fixed construction parameters.
type ClassifierConfig struct {
	// MinPulses is the noise floor: bursts below it are discarded
	// without touching the signature or the click state.
	MinPulses int
	// MaxPulses caps the pulse count of any accepted burst.
	MaxPulses int
	// DebounceMs is the minimum spacing between accepted presses.
	DebounceMs Millis
	// DoubleClickMs is how long after the first press a second press
	// still counts toward a double.
	DoubleClickMs Millis
	// TripleClickMs is how long after the second press a third press
	// still counts toward a triple. Zero disables triple detection:
	// a second press inside DoubleClickMs then emits Double at once.
	TripleClickMs Millis
	// LockoutMs suppresses press acceptance after an emitted gesture,
	// so an RF echo cannot duplicate the gesture it belongs to.
	LockoutMs Millis
}

// Level is one rung of the reinforcement schedule.
type Level struct {
	// QuietMs is the violation-free span required for one success.
	QuietMs Millis
	// RewardMs is how long to run the feeder when a reward fires.
	RewardMs Millis
	// Pattern is the cyclic sequence of reward bits, consumed in
	// order, one per qualifying quiet window. Empty means always
	// reward.
	Pattern []bool
	// ShuffleOnWrap moves the cursor to a random index each time the
	// pattern wraps, turning a fixed ratio into a variable one.
	ShuffleOnWrap bool
}

// SchedulerConfig holds the scheduler's fixed construction parameters.
type SchedulerConfig struct {
	// SuccessesToAdvance is how many quiet successes promote a level.
	SuccessesToAdvance int
	// CooldownMs is the minimum spacing between scheduled rewards,
	// regardless of how fast quiet windows are satisfied.
	CooldownMs Millis
	// DemotionLevels is how many levels a violation steps back
	// (0 disables demotion).
	DemotionLevels int
	// SaveIntervalMs throttles durable writes during normal ticking.
	SaveIntervalMs Millis
}

// Progress is the durable subset of scheduler state.
type Progress struct {
	Level         int
	Successes     int
	PatternCursor int
}

// ProgressStore persists scheduler progress across restarts.
type ProgressStore interface {
	Load() (Progress, error)
	Save(Progress) error
}

// Rand supplies the pattern shuffle. *math/rand.Rand satisfies it;
// tests inject a scripted sequence.
type Rand interface {
	Intn(n int) int
}
