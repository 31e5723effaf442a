package logic

import (
	"errors"
	"testing"
)

// fakeStore is an in-memory ProgressStore with scriptable failures.
type fakeStore struct {
	progress Progress
	loadErr  error
	saveErr  error
	saves    int
}

func (f *fakeStore) Load() (Progress, error) { return f.progress, f.loadErr }

func (f *fakeStore) Save(p Progress) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.progress = p
	return nil
}

// scriptedRand returns a fixed sequence from Intn.
type scriptedRand struct {
	vals []int
	i    int
}

func (r *scriptedRand) Intn(n int) int {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v % n
}

func testLevels() []Level {
	return []Level{
		{QuietMs: 2000, RewardMs: 1500, Pattern: []bool{true, true, true, true}},
		{QuietMs: 5000, RewardMs: 1500, Pattern: []bool{true, true, true, false}},
		{QuietMs: 10000, RewardMs: 2000, Pattern: []bool{true, false}},
	}
}

func testSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		SuccessesToAdvance: 4,
		CooldownMs:         5000,
		DemotionLevels:     1,
		SaveIntervalMs:     10000,
	}
}

func TestTickRewardCooldownAndAdvance(t *testing.T) {
	st := &fakeStore{}
	s := NewScheduler(testSchedulerConfig(), testLevels(), st, nil, 0)

	if s.CurrentLevel() != 0 {
		t.Fatalf("level: got %d, want 0", s.CurrentLevel())
	}

	// Quiet target met: reward scheduled.
	if !s.Tick(2000) {
		t.Fatal("tick at 2000 should schedule a reward")
	}
	if ms := s.ConsumePendingRewardMs(); ms != 1500 {
		t.Errorf("reward: got %d, want 1500", ms)
	}

	// Next two successes fall inside the cooldown: bits are consumed
	// and successes counted, but no reward fires.
	if s.Tick(4000) {
		t.Error("tick at 4000 should be blocked by cooldown")
	}
	if s.Tick(6000) {
		t.Error("tick at 6000 should be blocked by cooldown")
	}
	if s.SuccessesAtLevel() != 3 {
		t.Errorf("successes: got %d, want 3", s.SuccessesAtLevel())
	}

	// Cooldown over (scheduled at 2000 + 5000): reward fires again,
	// and the 4th success promotes the level.
	if !s.Tick(8000) {
		t.Fatal("tick at 8000 should schedule a reward")
	}
	if s.CurrentLevel() != 1 {
		t.Errorf("level after 4 successes: got %d, want 1", s.CurrentLevel())
	}
	if s.SuccessesAtLevel() != 0 {
		t.Errorf("successes after advance: got %d, want 0", s.SuccessesAtLevel())
	}
}

func TestTickBeforeQuietTarget(t *testing.T) {
	s := NewScheduler(testSchedulerConfig(), testLevels(), &fakeStore{}, nil, 0)
	if s.Tick(1999) {
		t.Error("tick before the quiet target scheduled a reward")
	}
	if s.SuccessesAtLevel() != 0 {
		t.Errorf("successes: got %d, want 0", s.SuccessesAtLevel())
	}
}

func TestPendingRewardBlocksTick(t *testing.T) {
	s := NewScheduler(testSchedulerConfig(), testLevels(), &fakeStore{}, nil, 0)

	if !s.Tick(2000) {
		t.Fatal("expected reward at 2000")
	}
	// Reward not consumed yet: further ticks are no-ops.
	if s.Tick(4500) {
		t.Error("tick with pending reward scheduled another")
	}
	if s.SuccessesAtLevel() != 1 {
		t.Errorf("no-op tick counted a success: got %d, want 1", s.SuccessesAtLevel())
	}
}

func TestConsumePendingRewardOnce(t *testing.T) {
	s := NewScheduler(testSchedulerConfig(), testLevels(), &fakeStore{}, nil, 0)
	s.Tick(2000)
	if ms := s.ConsumePendingRewardMs(); ms != 1500 {
		t.Errorf("first consume: got %d, want 1500", ms)
	}
	if ms := s.ConsumePendingRewardMs(); ms != 0 {
		t.Errorf("second consume: got %d, want 0", ms)
	}
}

func TestViolationResetsAndDemotes(t *testing.T) {
	st := &fakeStore{}
	s := NewScheduler(testSchedulerConfig(), testLevels(), st, nil, 0)
	s.SetLevel(2, 1000)

	// Earn a success and a pending reward at level 2.
	if !s.Tick(11000) {
		t.Fatal("expected reward at level 2")
	}

	s.OnViolation(12000)

	if s.CurrentLevel() != 1 {
		t.Errorf("level after demotion: got %d, want 1", s.CurrentLevel())
	}
	if s.PatternCursor() != 0 {
		t.Errorf("cursor after demotion: got %d, want 0", s.PatternCursor())
	}
	if s.SuccessesAtLevel() != 0 {
		t.Errorf("successes after violation: got %d, want 0", s.SuccessesAtLevel())
	}
	if ms := s.ConsumePendingRewardMs(); ms != 0 {
		t.Errorf("pending reward survived violation: %d", ms)
	}
	if s.LastViolation() != 12000 {
		t.Errorf("lastViolation: got %d, want 12000", s.LastViolation())
	}

	// Quiet window restarted at the violation.
	if s.Tick(16999) {
		t.Error("quiet window not restarted by violation")
	}
	if !s.Tick(17000) {
		t.Error("expected reward once the new quiet window completes")
	}
}

func TestViolationWithoutDemotionKeepsLevel(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.DemotionLevels = 0
	s := NewScheduler(cfg, testLevels(), &fakeStore{}, nil, 0)
	s.SetLevel(2, 0)

	s.OnViolation(1000)
	if s.CurrentLevel() != 2 {
		t.Errorf("level changed without demotion: got %d", s.CurrentLevel())
	}
}

func TestDemotionFloorsAtZero(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.DemotionLevels = 5
	s := NewScheduler(cfg, testLevels(), &fakeStore{}, nil, 0)
	s.SetLevel(2, 0)

	s.OnViolation(1000)
	if s.CurrentLevel() != 0 {
		t.Errorf("level after floored demotion: got %d, want 0", s.CurrentLevel())
	}
}

func TestSetLevel(t *testing.T) {
	st := &fakeStore{}
	s := NewScheduler(testSchedulerConfig(), testLevels(), st, nil, 0)

	s.SetLevel(2, 500)
	if s.CurrentLevel() != 2 {
		t.Fatalf("level: got %d, want 2", s.CurrentLevel())
	}
	if s.CurrentQuietTargetMs() != 10000 {
		t.Errorf("quiet target: got %d, want 10000", s.CurrentQuietTargetMs())
	}
	// Persisted immediately, unthrottled.
	if st.saves != 1 {
		t.Errorf("saves: got %d, want 1", st.saves)
	}
	if st.progress.Level != 2 {
		t.Errorf("persisted level: got %d, want 2", st.progress.Level)
	}

	// Out-of-range indexes are ignored without a save.
	s.SetLevel(5, 600)
	s.SetLevel(-1, 600)
	if s.CurrentLevel() != 2 || st.saves != 1 {
		t.Errorf("out-of-range SetLevel changed state (level=%d saves=%d)", s.CurrentLevel(), st.saves)
	}
}

func TestResetState(t *testing.T) {
	st := &fakeStore{}
	s := NewScheduler(testSchedulerConfig(), testLevels(), st, nil, 0)
	s.SetLevel(2, 1000)
	s.Tick(11000) // pending reward

	s.ResetState(12000)

	if s.CurrentLevel() != 0 || s.SuccessesAtLevel() != 0 || s.PatternCursor() != 0 {
		t.Errorf("state after reset: level=%d successes=%d cursor=%d",
			s.CurrentLevel(), s.SuccessesAtLevel(), s.PatternCursor())
	}
	if ms := s.ConsumePendingRewardMs(); ms != 0 {
		t.Errorf("pending reward survived reset: %d", ms)
	}
	want := Progress{}
	if st.progress != want {
		t.Errorf("persisted progress: got %+v, want %+v", st.progress, want)
	}

	// Cooldown cleared: the very next qualifying tick rewards.
	if !s.Tick(14000) {
		t.Error("expected reward after reset cleared the cooldown")
	}
}

func TestEmptyPatternAlwaysRewards(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.CooldownMs = 0
	levels := []Level{{QuietMs: 1000, RewardMs: 500}}
	s := NewScheduler(cfg, levels, &fakeStore{}, nil, 0)

	for i := 1; i <= 3; i++ {
		now := Millis(i * 1000)
		if !s.Tick(now) {
			t.Errorf("tick at %d: expected reward with empty pattern", now)
		}
		s.ConsumePendingRewardMs()
	}
}

func TestShuffleOnWrap(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.SuccessesToAdvance = 100
	cfg.CooldownMs = 0
	levels := []Level{{QuietMs: 1000, RewardMs: 500, Pattern: []bool{true, false}, ShuffleOnWrap: true}}
	rnd := &scriptedRand{vals: []int{1}}
	s := NewScheduler(cfg, levels, &fakeStore{}, rnd, 0)

	s.Tick(1000) // cursor 0 -> 1
	s.ConsumePendingRewardMs()
	s.Tick(2000) // wraps; reshuffled to index 1
	if s.PatternCursor() != 1 {
		t.Errorf("cursor after shuffle: got %d, want 1", s.PatternCursor())
	}
	if rnd.i != 1 {
		t.Errorf("rand calls: got %d, want 1", rnd.i)
	}
}

func TestFixedPatternWrapsToZero(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.SuccessesToAdvance = 100
	cfg.CooldownMs = 0
	levels := []Level{{QuietMs: 1000, RewardMs: 500, Pattern: []bool{true, false}}}
	s := NewScheduler(cfg, levels, &fakeStore{}, nil, 0)

	s.Tick(1000)
	s.ConsumePendingRewardMs()
	s.Tick(2000)
	if s.PatternCursor() != 0 {
		t.Errorf("cursor after wrap: got %d, want 0", s.PatternCursor())
	}
}

func TestPersistenceThrottled(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.SuccessesToAdvance = 100
	cfg.CooldownMs = 0
	st := &fakeStore{}
	s := NewScheduler(cfg, testLevels(), st, nil, 0)

	// Ticks inside the save interval don't write.
	for _, now := range []Millis{2000, 4000, 6000, 8000} {
		s.Tick(now)
		s.ConsumePendingRewardMs()
	}
	if st.saves != 0 {
		t.Fatalf("saves before interval: got %d, want 0", st.saves)
	}

	// First tick at/after the interval writes the current tuple.
	s.Tick(10000)
	s.ConsumePendingRewardMs()
	if st.saves != 1 {
		t.Fatalf("saves at interval: got %d, want 1", st.saves)
	}
	if st.progress.Successes != 5 || st.progress.PatternCursor != 1 {
		t.Errorf("persisted tuple: got %+v", st.progress)
	}

	// Violations share the same throttle.
	s.OnViolation(15000)
	if st.saves != 1 {
		t.Errorf("violation saved inside throttle interval: saves=%d", st.saves)
	}
	s.OnViolation(20000)
	if st.saves != 2 {
		t.Errorf("violation past interval did not save: saves=%d", st.saves)
	}
}

func TestBootClampsCorruptProgress(t *testing.T) {
	st := &fakeStore{progress: Progress{Level: 99, Successes: 2, PatternCursor: 7}}
	s := NewScheduler(testSchedulerConfig(), testLevels(), st, nil, 0)

	if s.CurrentLevel() != 0 {
		t.Errorf("corrupt level not clamped: got %d", s.CurrentLevel())
	}
	if s.PatternCursor() != 0 {
		t.Errorf("corrupt cursor not clamped: got %d", s.PatternCursor())
	}
	if s.SuccessesAtLevel() != 2 {
		t.Errorf("valid successes discarded: got %d, want 2", s.SuccessesAtLevel())
	}
}

func TestBootRestoresValidProgress(t *testing.T) {
	st := &fakeStore{progress: Progress{Level: 1, Successes: 3, PatternCursor: 2}}
	s := NewScheduler(testSchedulerConfig(), testLevels(), st, nil, 0)

	if s.CurrentLevel() != 1 || s.SuccessesAtLevel() != 3 || s.PatternCursor() != 2 {
		t.Errorf("progress not restored: level=%d successes=%d cursor=%d",
			s.CurrentLevel(), s.SuccessesAtLevel(), s.PatternCursor())
	}
}

func TestBootLoadErrorFallsBackToZero(t *testing.T) {
	st := &fakeStore{
		progress: Progress{Level: 1, Successes: 3, PatternCursor: 2},
		loadErr:  errors.New("store corrupt"),
	}
	s := NewScheduler(testSchedulerConfig(), testLevels(), st, nil, 0)

	if s.CurrentLevel() != 0 || s.SuccessesAtLevel() != 0 || s.PatternCursor() != 0 {
		t.Errorf("load error did not fall back to zero: level=%d successes=%d cursor=%d",
			s.CurrentLevel(), s.SuccessesAtLevel(), s.PatternCursor())
	}
}

func TestSaveErrorsCountedNotFatal(t *testing.T) {
	st := &fakeStore{saveErr: errors.New("disk full")}
	s := NewScheduler(testSchedulerConfig(), testLevels(), st, nil, 0)

	s.SetLevel(1, 0)
	if s.SaveErrors() != 1 {
		t.Errorf("save errors: got %d, want 1", s.SaveErrors())
	}
	if s.CurrentLevel() != 1 {
		t.Error("save failure rolled back the level change")
	}
}

func TestSchedulerAcrossCounterWrap(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.CooldownMs = 0
	base := Millis(4294966500) // quiet window straddles the wrap
	s := NewScheduler(cfg, testLevels(), &fakeStore{}, nil, base)

	if s.Tick(base + 1999) { // wrapped value
		t.Error("rewarded before the quiet target across wrap")
	}
	if !s.Tick(base + 2000) {
		t.Error("expected reward across the counter wrap")
	}
}
