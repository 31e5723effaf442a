package store

import "github.com/sweeney/bark-trainer/internal/logic"

// Memory is an in-memory ProgressStore. It backs tests and serves as
// the fallback when the sqlite file cannot be opened, so the daemon
// keeps running with progress that simply will not survive a restart.
type Memory struct {
	// Progress is the currently stored tuple.
	Progress logic.Progress

	// Saves counts Save calls.
	Saves int

	// LoadErr, if set, will be returned by Load.
	LoadErr error

	// SaveErr, if set, will be returned by Save.
	SaveErr error
}

// Load returns the stored tuple.
func (m *Memory) Load() (logic.Progress, error) {
	if m.LoadErr != nil {
		return logic.Progress{}, m.LoadErr
	}
	return m.Progress, nil
}

// Save stores the tuple.
func (m *Memory) Save(p logic.Progress) error {
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Progress = p
	return nil
}
