package logic

// Scheduler implements the level-progressing partial-reinforcement
// schedule: on a cadence of elapsed quiet time it decides whether to
// reward, following the current level's cyclic reward pattern, advances
// on repeated success, demotes on violations, and persists the compact
// progress tuple so training survives restarts.
//
// Levels must be non-empty and are read-only for the scheduler's
// lifetime.
type Scheduler struct {
	cfg    SchedulerConfig
	levels []Level
	store  ProgressStore
	rnd    Rand

	level     int
	successes int
	cursor    int

	quietStart      Millis
	lastViolation   Millis
	cooldownStart   Millis
	cooldownActive  bool
	pendingRewardMs Millis
	lastSave        Millis
	saveErrs        int
}

// NewScheduler loads persisted progress (clamping corrupt values to
// zero rather than failing startup) and reinitializes the volatile
// timing state to now. A store load error falls back to zero progress;
// the store implementation is expected to log it.
func NewScheduler(cfg SchedulerConfig, levels []Level, store ProgressStore, rnd Rand, now Millis) *Scheduler {
	s := &Scheduler{
		cfg:           cfg,
		levels:        levels,
		store:         store,
		rnd:           rnd,
		quietStart:    now,
		lastViolation: now,
		lastSave:      now,
	}

	p, err := store.Load()
	if err != nil {
		p = Progress{}
	}
	if p.Level >= 0 && p.Level < len(levels) {
		s.level = p.Level
	}
	if p.Successes >= 0 && p.Successes < cfg.SuccessesToAdvance {
		s.successes = p.Successes
	}
	if p.PatternCursor >= 0 && p.PatternCursor < len(levels[s.level].Pattern) {
		s.cursor = p.PatternCursor
	}
	return s
}

// OnViolation interrupts the current quiet window: the quiet timer and
// success count restart, any pending reward is cancelled, and if
// demotion is configured the schedule steps back, floored at level 0.
func (s *Scheduler) OnViolation(now Millis) {
	s.lastViolation = now
	s.quietStart = now
	s.successes = 0
	s.pendingRewardMs = 0

	if s.cfg.DemotionLevels > 0 && s.level > 0 {
		if s.level >= s.cfg.DemotionLevels {
			s.level -= s.cfg.DemotionLevels
		} else {
			s.level = 0
		}
		s.cursor = 0
	}

	s.saveThrottled(now)
}

// Tick evaluates the quiet window and returns true if a reward was just
// scheduled. It is a no-op while a reward is still pending. The pattern
// bit is consumed and the success counted even when the cooldown blocks
// the reward itself.
func (s *Scheduler) Tick(now Millis) bool {
	if s.pendingRewardMs > 0 {
		return false
	}

	lvl := s.levels[s.level]
	if Since(now, s.quietStart) < lvl.QuietMs {
		return false
	}

	reward := s.nextPatternBit(lvl)
	s.successes++

	if reward && !s.inCooldown(now) {
		s.pendingRewardMs = lvl.RewardMs
		s.cooldownStart = now
		s.cooldownActive = true
	}

	s.quietStart = now

	if s.successes >= s.cfg.SuccessesToAdvance {
		if s.level+1 < len(s.levels) {
			s.level++
		}
		s.successes = 0
	}

	s.saveThrottled(now)
	return s.pendingRewardMs > 0
}

// ConsumePendingRewardMs returns and clears the pending reward
// duration; zero if none is pending. At most one reward is ever pending
// between calls to Tick.
func (s *Scheduler) ConsumePendingRewardMs() Millis {
	ms := s.pendingRewardMs
	s.pendingRewardMs = 0
	return ms
}

// SetLevel jumps to the given level, resetting successes, cursor and
// the quiet timer, and persists immediately. Out-of-range indexes are
// ignored.
func (s *Scheduler) SetLevel(index int, now Millis) {
	if index < 0 || index >= len(s.levels) {
		return
	}
	s.level = index
	s.successes = 0
	s.cursor = 0
	s.quietStart = now
	s.saveNow(now)
}

// ResetState returns to level 0 with zero successes and cursor, clears
// the cooldown and any pending reward, and persists immediately.
func (s *Scheduler) ResetState(now Millis) {
	s.level = 0
	s.successes = 0
	s.cursor = 0
	s.quietStart = now
	s.lastViolation = now
	s.cooldownActive = false
	s.pendingRewardMs = 0
	s.saveNow(now)
}

// CurrentLevel returns the active level index.
func (s *Scheduler) CurrentLevel() int { return s.level }

// SuccessesAtLevel returns the quiet successes counted at this level.
func (s *Scheduler) SuccessesAtLevel() int { return s.successes }

// PatternCursor returns the next pattern bit index to be consumed.
func (s *Scheduler) PatternCursor() int { return s.cursor }

// CurrentQuietTargetMs returns the active level's quiet duration.
func (s *Scheduler) CurrentQuietTargetMs() Millis { return s.levels[s.level].QuietMs }

// CurrentRewardMs returns the active level's reward duration.
func (s *Scheduler) CurrentRewardMs() Millis { return s.levels[s.level].RewardMs }

// LastViolation returns when the last violation was reported.
func (s *Scheduler) LastViolation() Millis { return s.lastViolation }

// SaveErrors returns how many durable writes have failed since boot.
func (s *Scheduler) SaveErrors() int { return s.saveErrs }

// nextPatternBit reads the bit at the cursor and advances it modulo the
// pattern length, reshuffling the cursor on wraparound if configured.
func (s *Scheduler) nextPatternBit(lvl Level) bool {
	if len(lvl.Pattern) == 0 {
		return true
	}
	bit := lvl.Pattern[s.cursor]
	s.cursor++
	if s.cursor >= len(lvl.Pattern) {
		s.cursor = 0
		if lvl.ShuffleOnWrap && s.rnd != nil {
			s.cursor = s.rnd.Intn(len(lvl.Pattern))
		}
	}
	return bit
}

func (s *Scheduler) inCooldown(now Millis) bool {
	if !s.cooldownActive {
		return false
	}
	if Since(now, s.cooldownStart) >= s.cfg.CooldownMs {
		s.cooldownActive = false
		return false
	}
	return true
}

func (s *Scheduler) saveThrottled(now Millis) {
	if Since(now, s.lastSave) >= s.cfg.SaveIntervalMs {
		s.saveNow(now)
	}
}

func (s *Scheduler) saveNow(now Millis) {
	s.lastSave = now
	p := Progress{Level: s.level, Successes: s.successes, PatternCursor: s.cursor}
	if err := s.store.Save(p); err != nil {
		s.saveErrs++
	}
}
