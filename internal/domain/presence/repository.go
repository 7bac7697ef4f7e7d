package presence

import (
	"context"
	"time"

	"github.com/campus-hub/campus-presence/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// These interfaces define the storage contract for one person kind.
// Implementations live in infrastructure/persistence and are instantiated
// once per kind, each bound to its own table set.
// ══════════════════════════════════════════════════════════════════════════════

// PresenceRow is a person together with the latest entry/exit timestamps
// from the movement log, as needed to derive the current state.
type PresenceRow struct {
	Person

	// LastEntryAt is the latest entry timestamp, nil if no entry exists.
	LastEntryAt *time.Time

	// LastEntryBuilding is the building of the latest entry, empty if no
	// entry exists.
	LastEntryBuilding string

	// LastExitAt is the latest exit timestamp, nil if no exit exists.
	LastExitAt *time.Time
}

// State derives the presence state for this row.
func (r PresenceRow) State() State {
	return DeriveState(r.LastEntryAt, r.LastExitAt)
}

// CurrentBuilding returns the building the person is currently in, or empty
// when the person is outside. Historical buildings are never reported for
// outside persons.
func (r PresenceRow) CurrentBuilding() string {
	if r.State() != StateInside {
		return ""
	}
	return r.LastEntryBuilding
}

// Directory owns the identity rows of one person kind.
type Directory interface {
	// Create inserts the person and the initial entry event in one
	// transaction. A freshly created person is always inside.
	// Returns ErrPersonAlreadyExists on an identifier collision.
	Create(ctx context.Context, p *Person, building, operator string) error

	// GetByID returns a person by internal ID.
	// Returns ErrPersonNotFound if the person does not exist.
	GetByID(ctx context.Context, id string) (*Person, error)

	// Snapshot returns every person of this kind with the latest entry and
	// exit timestamps attached. Filtering, ranking and pagination happen in
	// the application layer so that fuzzy matching stays a pure Go concern.
	Snapshot(ctx context.Context) ([]PresenceRow, error)
}

// EventLog is the append-only movement log of one person kind. Records are
// immutable once written; there is no update or delete.
type EventLog interface {
	// AppendEntry records an entry event. It does not check the current
	// state; that check belongs to the caller.
	AppendEntry(ctx context.Context, personID, building, operator string) error

	// AppendExit records an exit event, same contract as AppendEntry.
	AppendExit(ctx context.Context, personID, building, operator string) error

	// LatestEntry returns the most recent entry timestamp, nil if none.
	LatestEntry(ctx context.Context, personID string) (*time.Time, error)

	// LatestExit returns the most recent exit timestamp, nil if none.
	LatestExit(ctx context.Context, personID string) (*time.Time, error)

	// LatestEntryWithBuilding returns the most recent entry timestamp and
	// its building, (nil, "") if none.
	LatestEntryWithBuilding(ctx context.Context, personID string) (*time.Time, string, error)
}

// Toggler flips a person's presence state exactly once per call.
type Toggler interface {
	// Toggle reads the latest entry/exit records, derives the state and
	// appends the opposite event, all inside one transaction holding a
	// per-person lock. Returns the new state.
	//
	// Returns ErrPersonNotFound if the person does not exist and
	// ErrConcurrencyConflict if the transaction lost a race; conflicts are
	// safe to retry.
	Toggle(ctx context.Context, personID, building, operator string) (State, error)
}

// Store bundles the full storage contract for one person kind.
type Store interface {
	Directory
	EventLog
	Toggler
}

// StoreSet maps each person kind to its store.
type StoreSet map[Kind]Store

// For returns the store for a kind, or shared.ErrInvalidPersonKind.
func (s StoreSet) For(kind Kind) (Store, error) {
	store, ok := s[kind]
	if !ok {
		return nil, shared.ErrInvalidPersonKind
	}
	return store, nil
}
