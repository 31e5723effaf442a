package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Signature     SignatureJSON `json:"signature"`
	Schedule      ScheduleJSON  `json:"schedule"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	MQTT          MQTTStatus    `json:"mqtt"`
	Counts        CountsJSON    `json:"event_counts"`
	Network       *NetworkJSON  `json:"network,omitempty"`
	Config        ConfigJSON    `json:"config"`
}

// SignatureJSON is the JSON representation of the learned fingerprint.
type SignatureJSON struct {
	Learned   bool `json:"learned"`
	MinPulses int  `json:"min_pulses"`
	MaxPulses int  `json:"max_pulses"`
	AvgPulses int  `json:"avg_pulses"`
	Samples   int  `json:"samples"`
}

// ScheduleJSON is the JSON representation of the schedule position.
type ScheduleJSON struct {
	Level         int    `json:"level"`
	Successes     int    `json:"successes"`
	QuietTargetMs uint32 `json:"quiet_target_ms"`
	PatternCursor int    `json:"pattern_cursor"`
	Paused        bool   `json:"paused"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Singles    int `json:"singles"`
	Doubles    int `json:"doubles"`
	Triples    int `json:"triples"`
	Violations int `json:"violations"`
	Rewards    int `json:"rewards"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPPort    string `json:"http_port"`
	StorePath   string `json:"store_path"`
	Levels      int    `json:"levels"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Signature: SignatureJSON{
			Learned:   snap.Signature.Learned,
			MinPulses: snap.Signature.MinPulses,
			MaxPulses: snap.Signature.MaxPulses,
			AvgPulses: snap.Signature.AvgPulses,
			Samples:   snap.Signature.Samples,
		},
		Schedule: ScheduleJSON{
			Level:         snap.Schedule.Level,
			Successes:     snap.Schedule.Successes,
			QuietTargetMs: snap.Schedule.QuietTargetMs,
			PatternCursor: snap.Schedule.PatternCursor,
			Paused:        snap.Schedule.Paused,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Singles:    snap.Counts.Singles,
			Doubles:    snap.Counts.Doubles,
			Triples:    snap.Counts.Triples,
			Violations: snap.Counts.Violations,
			Rewards:    snap.Counts.Rewards,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPPort:    snap.Config.HTTPPort,
			StorePath:   snap.Config.StorePath,
			Levels:      snap.Config.Levels,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
