package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-presence/internal/domain/presence"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
)

// ──────────────────────────────────────────────────────────────────────────────
// FAKES
// ──────────────────────────────────────────────────────────────────────────────

// snapshotStore is a presence.Store backed by a fixed snapshot.
type snapshotStore struct {
	rows []presence.PresenceRow
	err  error
}

func (f *snapshotStore) Create(ctx context.Context, p *presence.Person, building, operator string) error {
	return nil
}

func (f *snapshotStore) GetByID(ctx context.Context, id string) (*presence.Person, error) {
	return nil, shared.ErrPersonNotFound
}

func (f *snapshotStore) Snapshot(ctx context.Context) ([]presence.PresenceRow, error) {
	return f.rows, f.err
}

func (f *snapshotStore) AppendEntry(ctx context.Context, personID, building, operator string) error {
	return nil
}

func (f *snapshotStore) AppendExit(ctx context.Context, personID, building, operator string) error {
	return nil
}

func (f *snapshotStore) LatestEntry(ctx context.Context, personID string) (*time.Time, error) {
	return nil, nil
}

func (f *snapshotStore) LatestExit(ctx context.Context, personID string) (*time.Time, error) {
	return nil, nil
}

func (f *snapshotStore) LatestEntryWithBuilding(ctx context.Context, personID string) (*time.Time, string, error) {
	return nil, "", nil
}

func (f *snapshotStore) Toggle(ctx context.Context, personID, building, operator string) (presence.State, error) {
	return "", shared.ErrPersonNotFound
}

// row builds a snapshot row. Entry and exit are offsets from a fixed base;
// zero means no record.
func row(identifier, firstName, lastName, building string, entryMin, exitMin int) presence.PresenceRow {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	r := presence.PresenceRow{
		Person: presence.Person{
			ID:         "id-" + identifier,
			Kind:       presence.KindStudent,
			Identifier: identifier,
			FirstName:  firstName,
			LastName:   lastName,
			Department: "Mathematics",
		},
		LastEntryBuilding: building,
	}
	if entryMin != 0 {
		at := base.Add(time.Duration(entryMin) * time.Minute)
		r.LastEntryAt = &at
	}
	if exitMin != 0 {
		at := base.Add(time.Duration(exitMin) * time.Minute)
		r.LastExitAt = &at
	}
	return r
}

func studentStores(rows ...presence.PresenceRow) presence.StoreSet {
	return presence.StoreSet{presence.KindStudent: &snapshotStore{rows: rows}}
}

// ──────────────────────────────────────────────────────────────────────────────
// TESTS
// ──────────────────────────────────────────────────────────────────────────────

func TestListPersonsHandler_EmptyQueryListsEveryone(t *testing.T) {
	stores := studentStores(
		row("s-100", "ada", "lovelace", "library", 10, 0),
		row("s-200", "grace", "hopper", "annex", 10, 20),
		row("s-300", "alan", "turing", "", 0, 0),
	)
	handler := NewListPersonsHandler(stores, nil, nil)

	result, err := handler.Handle(context.Background(), ListPersonsQuery{
		Kind: presence.KindStudent, Limit: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Persons, 3)

	// Snapshot order is preserved when no query is given.
	assert.Equal(t, "s-100", result.Persons[0].Identifier)
	assert.True(t, result.Persons[0].IsInside)
	assert.Equal(t, "library", result.Persons[0].Building)

	assert.False(t, result.Persons[1].IsInside, "exit after entry means outside")
	assert.Empty(t, result.Persons[1].Building)

	assert.False(t, result.Persons[2].IsInside, "never entered means outside")
}

func TestListPersonsHandler_FuzzyRanking(t *testing.T) {
	stores := studentStores(
		row("stud-12346", "grace", "hopper", "", 10, 0),
		row("stud-12345", "ada", "lovelace", "", 10, 0),
		row("stud-99999", "alan", "turing", "", 10, 0),
	)
	handler := NewListPersonsHandler(stores, nil, nil)

	result, err := handler.Handle(context.Background(), ListPersonsQuery{
		Kind: presence.KindStudent, Query: "stud-12345", Limit: 10,
	})
	require.NoError(t, err)

	// The exact identifier outranks the one-edit neighbor; stud-99999 is
	// outside every threshold and is dropped.
	require.Equal(t, 2, result.Total)
	assert.Equal(t, "stud-12345", result.Persons[0].Identifier)
	assert.Equal(t, "stud-12346", result.Persons[1].Identifier)
}

func TestListPersonsHandler_QueryIsSanitized(t *testing.T) {
	stores := studentStores(
		row("s-100", "Anna", "Müller", "", 10, 0),
		row("s-200", "Grace", "Hopper", "", 10, 0),
	)
	handler := NewListPersonsHandler(stores, nil, nil)

	result, err := handler.Handle(context.Background(), ListPersonsQuery{
		Kind: presence.KindStudent, Query: "  MULLER  ", Limit: 10,
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.Persons)
	assert.Equal(t, "s-100", result.Persons[0].Identifier)
}

func TestListPersonsHandler_Pagination(t *testing.T) {
	stores := studentStores(
		row("s-100", "ada", "lovelace", "", 10, 0),
		row("s-200", "grace", "hopper", "", 10, 0),
		row("s-300", "alan", "turing", "", 10, 0),
	)
	handler := NewListPersonsHandler(stores, nil, nil)

	page, err := handler.Handle(context.Background(), ListPersonsQuery{
		Kind: presence.KindStudent, Limit: 2, Offset: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, page.Total, "total counts all matches, not the page")
	require.Len(t, page.Persons, 2)
	assert.Equal(t, "s-200", page.Persons[0].Identifier)
	assert.Equal(t, "s-300", page.Persons[1].Identifier)

	beyond, err := handler.Handle(context.Background(), ListPersonsQuery{
		Kind: presence.KindStudent, Limit: 2, Offset: 10,
	})
	require.NoError(t, err)
	assert.Empty(t, beyond.Persons)
	assert.Equal(t, 3, beyond.Total)
}

func TestListPersonsQuery_Validate(t *testing.T) {
	tests := []struct {
		name string
		q    ListPersonsQuery
		ok   bool
	}{
		{"valid", ListPersonsQuery{Kind: presence.KindStudent, Limit: 10}, true},
		{"invalid kind", ListPersonsQuery{Kind: "visitor", Limit: 10}, false},
		{"zero limit", ListPersonsQuery{Kind: presence.KindStudent}, false},
		{"negative offset", ListPersonsQuery{Kind: presence.KindStudent, Limit: 10, Offset: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, shared.IsInvalidArgument(err))
			}
		})
	}
}
