// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"
)

// Topic is the MQTT topic for trainer events.
const Topic = "pets/trainer/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "pets/trainer/system"

// TopicBark is the topic remote detectors publish bark notifications
// to; any message on it counts as one detection.
const TopicBark = "pets/trainer/bark"

// EventType classifies a trainer event.
type EventType string

const (
	EventGestureSingle EventType = "GESTURE_SINGLE"
	EventGestureDouble EventType = "GESTURE_DOUBLE"
	EventGestureTriple EventType = "GESTURE_TRIPLE"
	EventViolation     EventType = "VIOLATION"
	EventReward        EventType = "REWARD"
	EventLevelUp       EventType = "LEVEL_UP"
	EventLevelDown     EventType = "LEVEL_DOWN"
	EventPaused        EventType = "PAUSED"
	EventResumed       EventType = "RESUMED"
)

// Event is one trainer occurrence to publish.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Level     int
	Successes int
	RewardMs  uint32 // reward events only
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a trainer event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Trainer TrainerPayload `json:"trainer"`
}

// TrainerPayload contains the trainer event details.
type TrainerPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Level     int    `json:"level"`
	Successes int    `json:"successes"`
	RewardMs  uint32 `json:"reward_ms,omitempty"`
}

// FormatPayload creates the JSON payload for a trainer event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		Trainer: TrainerPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Level:     event.Level,
			Successes: event.Successes,
			RewardMs:  event.RewardMs,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
