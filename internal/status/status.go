// Package status provides a thread-safe status tracker for the bark-trainer daemon.
// It is read by the HTTP handlers and the websocket feed.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/bark-trainer/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPPort    string
	StorePath   string
	Levels      int
}

// SignatureInfo describes the learned remote fingerprint.
type SignatureInfo struct {
	Learned   bool
	MinPulses int
	MaxPulses int
	AvgPulses int
	Samples   int
}

// ScheduleInfo describes the reinforcement schedule position.
type ScheduleInfo struct {
	Level         int
	Successes     int
	QuietTargetMs uint32
	PatternCursor int
	Paused        bool
}

// EventCounts tallies trainer occurrences since startup.
type EventCounts struct {
	Singles    int
	Doubles    int
	Triples    int
	Violations int
	Rewards    int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Signature     SignatureInfo
	Schedule      ScheduleInfo
	Counts        EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets signature and schedule state. Called from runLoop on every tick.
func (t *Tracker) Update(sig SignatureInfo, sched ScheduleInfo) {
	t.mu.Lock()
	t.snap.Signature = sig
	t.snap.Schedule = sched
	t.mu.Unlock()
}

// CountGesture bumps the counter for the given gesture.
func (t *Tracker) CountGesture(g logic.Gesture) {
	t.mu.Lock()
	switch g {
	case logic.GestureSingle:
		t.snap.Counts.Singles++
	case logic.GestureDouble:
		t.snap.Counts.Doubles++
	case logic.GestureTriple:
		t.snap.Counts.Triples++
	}
	t.mu.Unlock()
}

// CountViolation bumps the violation counter.
func (t *Tracker) CountViolation() {
	t.mu.Lock()
	t.snap.Counts.Violations++
	t.mu.Unlock()
}

// CountReward bumps the reward counter.
func (t *Tracker) CountReward() {
	t.mu.Lock()
	t.snap.Counts.Rewards++
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
