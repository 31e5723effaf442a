package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Broker != Default().Broker {
		t.Errorf("broker: got %q", cfg.Broker)
	}
	if len(cfg.Schedule.Levels) != 4 {
		t.Errorf("levels: got %d, want 4", len(cfg.Schedule.Levels))
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Remote.MaxPulses != 400 {
		t.Errorf("max_pulses: got %d, want 400", cfg.Remote.MaxPulses)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
broker: tcp://10.0.0.5:1883
remote:
  min_pulses: 80
  max_pulses: 300
  debounce_ms: 50
  double_click_ms: 500
  triple_click_ms: 800
  lockout_ms: 400
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Broker != "tcp://10.0.0.5:1883" {
		t.Errorf("broker: got %q", cfg.Broker)
	}
	if cfg.Remote.MinPulses != 80 {
		t.Errorf("min_pulses: got %d, want 80", cfg.Remote.MinPulses)
	}
	// Untouched sections keep defaults.
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("http_addr: got %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.Pins.Feeder != 17 {
		t.Errorf("feeder pin: got %d, want 17", cfg.Pins.Feeder)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "broker: [unclosed")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidateRejectsBadPulseBand(t *testing.T) {
	cfg := Default()
	cfg.Remote.MaxPulses = cfg.Remote.MinPulses
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty pulse band")
	}
}

func TestValidateRejectsTripleShorterThanDouble(t *testing.T) {
	cfg := Default()
	cfg.Remote.TripleClickMs = cfg.Remote.DoubleClickMs - 1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for triple < double")
	}
}

func TestValidateAllowsDisabledTriple(t *testing.T) {
	cfg := Default()
	cfg.Remote.TripleClickMs = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("triple_click_ms=0 should be valid: %v", err)
	}
}

func TestValidateRejectsNoLevels(t *testing.T) {
	cfg := Default()
	cfg.Schedule.Levels = nil
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty level list")
	}
}

func TestValidateRejectsBadPatternBit(t *testing.T) {
	cfg := Default()
	cfg.Schedule.Levels[0].Pattern = []int{1, 2}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for pattern entry 2")
	}
}

func TestLevelsConversion(t *testing.T) {
	cfg := Default()
	levels := cfg.Levels()
	if len(levels) != 4 {
		t.Fatalf("levels: got %d, want 4", len(levels))
	}
	if levels[0].QuietMs != 2000 || levels[0].RewardMs != 1500 {
		t.Errorf("level 0: got %+v", levels[0])
	}
	wantPattern := []bool{true, true, true, false}
	for i, bit := range levels[1].Pattern {
		if bit != wantPattern[i] {
			t.Errorf("level 1 pattern[%d]: got %v, want %v", i, bit, wantPattern[i])
		}
	}
	if !levels[2].ShuffleOnWrap {
		t.Error("level 2 should shuffle on wrap")
	}
}

func TestClassifierConfigConversion(t *testing.T) {
	cc := Default().ClassifierConfig()
	if cc.MinPulses != 50 || cc.MaxPulses != 400 {
		t.Errorf("pulse band: got %d..%d", cc.MinPulses, cc.MaxPulses)
	}
	if cc.DoubleClickMs != 600 || cc.TripleClickMs != 900 {
		t.Errorf("click windows: got %d/%d", cc.DoubleClickMs, cc.TripleClickMs)
	}
}

func TestSchedulerConfigConversion(t *testing.T) {
	sc := Default().SchedulerConfig()
	if sc.SuccessesToAdvance != 4 {
		t.Errorf("successes_to_advance: got %d, want 4", sc.SuccessesToAdvance)
	}
	if sc.CooldownMs != 7000 {
		t.Errorf("cooldown_ms: got %d, want 7000", sc.CooldownMs)
	}
}
