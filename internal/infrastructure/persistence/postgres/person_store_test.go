package postgres

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-presence/internal/domain/presence"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
)

// testConnection connects to the database named by TEST_DATABASE_URL and
// bootstraps the schema. Tests that need it are skipped when the variable is
// unset.
func testConnection(t *testing.T) *Connection {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	conn, err := NewConnectionFromURL(ctx, url, PoolSettings{})
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	require.NoError(t, EnsureSchema(ctx, conn))
	return conn
}

func registerStudent(t *testing.T, conn *Connection, building string) (*PersonStore, *presence.Person) {
	t.Helper()

	store, err := NewPersonStore(conn, presence.KindStudent)
	require.NoError(t, err)

	p, err := presence.NewPerson(
		presence.KindStudent,
		fmt.Sprintf("it-%d", time.Now().UnixNano()),
		"Ada", "Lovelace", "Mathematics",
	)
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), p, building, "tester"))

	return store, p
}

func countEvents(t *testing.T, conn *Connection, table, personID string) int {
	t.Helper()

	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE person_id = $1`, table)
	require.NoError(t, conn.QueryRow(context.Background(), query, personID).Scan(&n))
	return n
}

func TestPersonStore_ToggleRecordsGivenBuilding(t *testing.T) {
	conn := testConnection(t)
	ctx := context.Background()

	store, p := registerStudent(t, conn, "library")

	entryAt, entryBuilding, err := store.LatestEntryWithBuilding(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, entryAt)
	assert.Equal(t, "library", entryBuilding)

	// Registered in the library, toggled out from the gym desk: the exit row
	// carries the gym, not the building the person entered through.
	state, err := store.Toggle(ctx, p.ID, "gym", "tester")
	require.NoError(t, err)
	assert.Equal(t, presence.StateOutside, state)

	var exitBuilding string
	err = conn.QueryRow(ctx,
		`SELECT building FROM student_exits WHERE person_id = $1 ORDER BY occurred_at DESC, id DESC LIMIT 1`,
		p.ID,
	).Scan(&exitBuilding)
	require.NoError(t, err)
	assert.Equal(t, "gym", exitBuilding)
}

func TestPersonStore_ToggleInvolution(t *testing.T) {
	conn := testConnection(t)
	ctx := context.Background()

	store, p := registerStudent(t, conn, "library")

	state, err := store.Toggle(ctx, p.ID, "library", "tester")
	require.NoError(t, err)
	assert.Equal(t, presence.StateOutside, state)

	state, err = store.Toggle(ctx, p.ID, "library", "tester")
	require.NoError(t, err)
	assert.Equal(t, presence.StateInside, state)

	assert.Equal(t, 2, countEvents(t, conn, "student_entries", p.ID))
	assert.Equal(t, 1, countEvents(t, conn, "student_exits", p.ID))
}

func TestPersonStore_ToggleUnknownPerson(t *testing.T) {
	conn := testConnection(t)

	store, err := NewPersonStore(conn, presence.KindStudent)
	require.NoError(t, err)

	_, err = store.Toggle(context.Background(), "00000000-0000-0000-0000-000000000000", "library", "tester")
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

func TestPersonStore_ConcurrentTogglesAlternate(t *testing.T) {
	conn := testConnection(t)
	ctx := context.Background()

	store, p := registerStudent(t, conn, "library")

	const workers = 4
	const perWorker = 5

	errCh := make(chan error, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				for {
					_, err := store.Toggle(ctx, p.ID, "library", "tester")
					if err == nil {
						break
					}
					if shared.IsConcurrencyConflict(err) {
						continue
					}
					errCh <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	// An even number of toggles from inside lands back inside, with every
	// toggle appending exactly one event: the log alternates, never doubles.
	entries := countEvents(t, conn, "student_entries", p.ID)
	exits := countEvents(t, conn, "student_exits", p.ID)
	assert.Equal(t, 1+workers*perWorker/2, entries)
	assert.Equal(t, workers*perWorker/2, exits)

	lastEntry, err := store.LatestEntry(ctx, p.ID)
	require.NoError(t, err)
	lastExit, err := store.LatestExit(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, presence.StateInside, presence.DeriveState(lastEntry, lastExit))
}
