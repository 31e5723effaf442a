// Package store persists reinforcement-schedule progress in a small
// key-value table. Each field of the progress tuple is an independent
// row keyed under a fixed namespace, so individual values can be read
// or patched with any sqlite client.
package store

// Namespace groups the trainer's progress keys.
const Namespace = "quiet"

// Row keys for the persisted progress tuple.
const (
	keyLevel     = "lvl"
	keySuccesses = "succ"
	keyCursor    = "pidx"
)
