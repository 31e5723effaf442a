package store

import (
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite"

	"github.com/sweeney/bark-trainer/internal/logic"
)

// SQLite is a ProgressStore backed by a sqlite file. The driver is
// pure Go, so it runs on the Pi without cgo.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the progress database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open progress store: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS progress (
		ns    TEXT NOT NULL,
		key   TEXT NOT NULL,
		value INTEGER NOT NULL,
		PRIMARY KEY (ns, key)
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create progress table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Load reads the persisted progress tuple. Missing keys read as zero;
// a read failure is logged and returned so the scheduler can fall back
// to zero progress without failing startup.
func (s *SQLite) Load() (logic.Progress, error) {
	var p logic.Progress

	rows, err := s.db.Query(`SELECT key, value FROM progress WHERE ns = ?`, Namespace)
	if err != nil {
		log.Printf("store: load failed, starting from level 0: %v", err)
		return p, fmt.Errorf("load progress: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value int
		if err := rows.Scan(&key, &value); err != nil {
			log.Printf("store: scan failed, starting from level 0: %v", err)
			return logic.Progress{}, fmt.Errorf("scan progress: %w", err)
		}
		switch key {
		case keyLevel:
			p.Level = value
		case keySuccesses:
			p.Successes = value
		case keyCursor:
			p.PatternCursor = value
		}
	}
	if err := rows.Err(); err != nil {
		return logic.Progress{}, fmt.Errorf("read progress: %w", err)
	}
	return p, nil
}

// Save writes the progress tuple, one row per field.
func (s *SQLite) Save(p logic.Progress) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}

	const upsert = `INSERT INTO progress (ns, key, value) VALUES (?, ?, ?)
		ON CONFLICT (ns, key) DO UPDATE SET value = excluded.value`
	for key, value := range map[string]int{
		keyLevel:     p.Level,
		keySuccesses: p.Successes,
		keyCursor:    p.PatternCursor,
	} {
		if _, err := tx.Exec(upsert, Namespace, key, value); err != nil {
			tx.Rollback()
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
