// Package presence contains the core presence-tracking domain: persons,
// their append-only entry/exit log, and the derivation of the current
// inside/outside state from that log.
//
// Presence is never stored as a mutable column. It is always derived from
// the two most recent log timestamps, which removes the whole class of bugs
// where a cached state column diverges from the event log.
package presence

import "time"

// State classifies a person as inside or outside the facility.
type State string

const (
	// StateInside means the person's latest movement was an entry.
	StateInside State = "inside"

	// StateOutside means the person has never entered or their latest
	// movement was an exit.
	StateOutside State = "outside"
)

// DeriveState computes the presence state from the latest entry and exit
// timestamps. A nil timestamp means no record of that kind exists.
//
// The rules are:
//   - no entry record: outside
//   - entry record, no exit record: inside
//   - both records: inside iff the entry is strictly newer than the exit
//
// Equal timestamps resolve to outside. The single-person and bulk paths
// must both go through this function so they can never disagree.
func DeriveState(latestEntry, latestExit *time.Time) State {
	if latestEntry == nil {
		return StateOutside
	}
	if latestExit == nil {
		return StateInside
	}
	if latestEntry.After(*latestExit) {
		return StateInside
	}
	return StateOutside
}

// IsInside is a convenience wrapper around DeriveState.
func IsInside(latestEntry, latestExit *time.Time) bool {
	return DeriveState(latestEntry, latestExit) == StateInside
}
