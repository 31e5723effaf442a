// Package config loads the trainer configuration from a YAML file,
// layered over built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/bark-trainer/internal/logic"
)

// Config is the full daemon configuration.
type Config struct {
	Broker    string         `yaml:"broker"`
	HTTPAddr  string         `yaml:"http_addr"`
	StorePath string         `yaml:"store_path"`
	Pins      PinConfig      `yaml:"pins"`
	Remote    RemoteConfig   `yaml:"remote"`
	Schedule  ScheduleConfig `yaml:"schedule"`
	Punish    PunishConfig   `yaml:"punish"`
}

// PinConfig maps hardware lines to BCM pin numbers.
type PinConfig struct {
	Receiver  int `yaml:"receiver"`
	Feeder    int `yaml:"feeder"`
	Valve     int `yaml:"valve"`
	Vibration int `yaml:"vibration"`
	LED       int `yaml:"led"`
}

// RemoteConfig tunes the RF gesture classifier.
type RemoteConfig struct {
	MinPulses     int    `yaml:"min_pulses"`
	MaxPulses     int    `yaml:"max_pulses"`
	DebounceMs    uint32 `yaml:"debounce_ms"`
	DoubleClickMs uint32 `yaml:"double_click_ms"`
	TripleClickMs uint32 `yaml:"triple_click_ms"`
	LockoutMs     uint32 `yaml:"lockout_ms"`
}

// ScheduleConfig tunes the reinforcement scheduler.
type ScheduleConfig struct {
	SuccessesToAdvance int           `yaml:"successes_to_advance"`
	CooldownMs         uint32        `yaml:"cooldown_ms"`
	DemotionLevels     int           `yaml:"demotion_levels"`
	ViolationWindowMs  uint32        `yaml:"violation_window_ms"`
	SaveIntervalMs     uint32        `yaml:"save_interval_ms"`
	Levels             []LevelConfig `yaml:"levels"`
}

// LevelConfig describes one difficulty level.
type LevelConfig struct {
	QuietMs       uint32 `yaml:"quiet_ms"`
	RewardMs      uint32 `yaml:"reward_ms"`
	Pattern       []int  `yaml:"pattern"`
	ShuffleOnWrap bool   `yaml:"shuffle_on_wrap"`
}

// PunishConfig sets punishment actuator pulse lengths.
type PunishConfig struct {
	ValveMs     uint32 `yaml:"valve_ms"`
	VibrationMs uint32 `yaml:"vibration_ms"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Broker:    "tcp://192.168.1.200:1883",
		HTTPAddr:  ":8080",
		StorePath: "/var/lib/bark-trainer/progress.db",
		Pins: PinConfig{
			Receiver:  35,
			Feeder:    17,
			Valve:     27,
			Vibration: 22,
			LED:       23,
		},
		Remote: RemoteConfig{
			MinPulses:     50,
			MaxPulses:     400,
			DebounceMs:    50,
			DoubleClickMs: 600,
			TripleClickMs: 900,
			LockoutMs:     500,
		},
		Schedule: ScheduleConfig{
			SuccessesToAdvance: 4,
			CooldownMs:         7000,
			DemotionLevels:     1,
			ViolationWindowMs:  5000,
			SaveIntervalMs:     10000,
			Levels: []LevelConfig{
				{QuietMs: 2000, RewardMs: 1500, Pattern: []int{1, 1, 1, 1}},
				{QuietMs: 5000, RewardMs: 1500, Pattern: []int{1, 1, 1, 0}},
				{QuietMs: 10000, RewardMs: 1500, Pattern: []int{1, 0, 1, 0}, ShuffleOnWrap: true},
				{QuietMs: 20000, RewardMs: 2000, Pattern: []int{1, 0, 0, 0}, ShuffleOnWrap: true},
			},
		},
		Punish: PunishConfig{
			ValveMs:     800,
			VibrationMs: 600,
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing path
// ("" or nonexistent file) returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks config values that would otherwise fail deep inside
// the classifier or scheduler.
func (c Config) Validate() error {
	if c.Remote.MinPulses <= 0 || c.Remote.MaxPulses <= c.Remote.MinPulses {
		return fmt.Errorf("remote: pulse band %d..%d is invalid", c.Remote.MinPulses, c.Remote.MaxPulses)
	}
	if c.Remote.DoubleClickMs == 0 {
		return fmt.Errorf("remote: double_click_ms must be positive")
	}
	if c.Remote.TripleClickMs != 0 && c.Remote.TripleClickMs < c.Remote.DoubleClickMs {
		return fmt.Errorf("remote: triple_click_ms %d shorter than double_click_ms %d",
			c.Remote.TripleClickMs, c.Remote.DoubleClickMs)
	}
	if c.Schedule.SuccessesToAdvance <= 0 {
		return fmt.Errorf("schedule: successes_to_advance must be positive")
	}
	if len(c.Schedule.Levels) == 0 {
		return fmt.Errorf("schedule: at least one level required")
	}
	for i, lvl := range c.Schedule.Levels {
		if lvl.QuietMs == 0 {
			return fmt.Errorf("schedule: level %d quiet_ms must be positive", i)
		}
		if lvl.RewardMs == 0 {
			return fmt.Errorf("schedule: level %d reward_ms must be positive", i)
		}
		for _, bit := range lvl.Pattern {
			if bit != 0 && bit != 1 {
				return fmt.Errorf("schedule: level %d pattern entries must be 0 or 1", i)
			}
		}
	}
	return nil
}

// ClassifierConfig converts the remote section for the classifier.
func (c Config) ClassifierConfig() logic.ClassifierConfig {
	return logic.ClassifierConfig{
		MinPulses:     c.Remote.MinPulses,
		MaxPulses:     c.Remote.MaxPulses,
		DebounceMs:    logic.Millis(c.Remote.DebounceMs),
		DoubleClickMs: logic.Millis(c.Remote.DoubleClickMs),
		TripleClickMs: logic.Millis(c.Remote.TripleClickMs),
		LockoutMs:     logic.Millis(c.Remote.LockoutMs),
	}
}

// SchedulerConfig converts the schedule section for the scheduler.
func (c Config) SchedulerConfig() logic.SchedulerConfig {
	return logic.SchedulerConfig{
		SuccessesToAdvance: c.Schedule.SuccessesToAdvance,
		CooldownMs:         logic.Millis(c.Schedule.CooldownMs),
		DemotionLevels:     c.Schedule.DemotionLevels,
		SaveIntervalMs:     logic.Millis(c.Schedule.SaveIntervalMs),
	}
}

// Levels converts the level list for the scheduler.
func (c Config) Levels() []logic.Level {
	levels := make([]logic.Level, len(c.Schedule.Levels))
	for i, lvl := range c.Schedule.Levels {
		pattern := make([]bool, len(lvl.Pattern))
		for j, bit := range lvl.Pattern {
			pattern[j] = bit != 0
		}
		levels[i] = logic.Level{
			QuietMs:       logic.Millis(lvl.QuietMs),
			RewardMs:      logic.Millis(lvl.RewardMs),
			Pattern:       pattern,
			ShuffleOnWrap: lvl.ShuffleOnWrap,
		}
	}
	return levels
}
