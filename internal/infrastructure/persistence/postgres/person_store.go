package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/campus-presence/internal/domain/presence"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PERSON STORE
// One PersonStore serves one person kind. Students and employees share the
// implementation but are bound to disjoint table sets, so the two directories
// can never bleed into each other.
// ══════════════════════════════════════════════════════════════════════════════

// PersonStore implements presence.Store on top of PostgreSQL.
type PersonStore struct {
	conn   *Connection
	kind   presence.Kind
	tables personTableSet
}

// NewPersonStore creates a store bound to the table set of the given kind.
func NewPersonStore(conn *Connection, kind presence.Kind) (*PersonStore, error) {
	var tables personTableSet
	switch kind {
	case presence.KindStudent:
		tables = studentTables
	case presence.KindEmployee:
		tables = employeeTables
	default:
		return nil, shared.ErrInvalidPersonKind
	}

	return &PersonStore{conn: conn, kind: kind, tables: tables}, nil
}

// Kind returns the person kind this store serves.
func (s *PersonStore) Kind() presence.Kind {
	return s.kind
}

// ──────────────────────────────────────────────────────────────────────────────
// Directory
// ──────────────────────────────────────────────────────────────────────────────

// Create inserts the person and the initial entry event in one transaction.
func (s *PersonStore) Create(ctx context.Context, p *presence.Person, building, operator string) error {
	insertPerson := fmt.Sprintf(`
		INSERT INTO %s (id, identifier, first_name, last_name, department, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, s.tables.Persons)

	insertEntry := fmt.Sprintf(`
		INSERT INTO %s (person_id, building, recorded_by)
		VALUES ($1, $2, $3)
	`, s.tables.Entries)

	err := s.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertPerson,
			p.ID, p.Identifier, p.FirstName, p.LastName, p.Department, p.CreatedAt,
		); err != nil {
			if IsUniqueViolation(err) {
				return shared.ErrPersonAlreadyExists
			}
			return err
		}

		_, err := tx.Exec(ctx, insertEntry, p.ID, building, operator)
		return err
	})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
		return shared.WrapError(string(s.kind), "Create", shared.ErrStorage, "insert person", err)
	}
	return nil
}

// GetByID returns a person by internal ID.
func (s *PersonStore) GetByID(ctx context.Context, id string) (*presence.Person, error) {
	query := fmt.Sprintf(`
		SELECT id, identifier, first_name, last_name, department, created_at
		FROM %s
		WHERE id = $1
	`, s.tables.Persons)

	return s.scanPerson(s.conn.QueryRow(ctx, query, id))
}

// Snapshot returns every person of this kind with latest entry/exit attached.
func (s *PersonStore) Snapshot(ctx context.Context) ([]presence.PresenceRow, error) {
	query := fmt.Sprintf(`
		SELECT p.id, p.identifier, p.first_name, p.last_name, p.department, p.created_at,
		       e.occurred_at, COALESCE(e.building, ''), x.occurred_at
		FROM %s p
		LEFT JOIN LATERAL (
			SELECT occurred_at, building FROM %s
			WHERE person_id = p.id
			ORDER BY occurred_at DESC, id DESC
			LIMIT 1
		) e ON TRUE
		LEFT JOIN LATERAL (
			SELECT occurred_at FROM %s
			WHERE person_id = p.id
			ORDER BY occurred_at DESC, id DESC
			LIMIT 1
		) x ON TRUE
		ORDER BY p.identifier
	`, s.tables.Persons, s.tables.Entries, s.tables.Exits)

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapError(string(s.kind), "Snapshot", shared.ErrStorage, "query snapshot", err)
	}
	defer rows.Close()

	var result []presence.PresenceRow
	for rows.Next() {
		var row presence.PresenceRow
		row.Kind = s.kind
		if err := rows.Scan(
			&row.ID, &row.Identifier, &row.FirstName, &row.LastName, &row.Department, &row.CreatedAt,
			&row.LastEntryAt, &row.LastEntryBuilding, &row.LastExitAt,
		); err != nil {
			return nil, shared.WrapError(string(s.kind), "Snapshot", shared.ErrStorage, "scan snapshot row", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, shared.WrapError(string(s.kind), "Snapshot", shared.ErrStorage, "iterate snapshot", err)
	}

	return result, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// EventLog
// ──────────────────────────────────────────────────────────────────────────────

// AppendEntry records an entry event.
func (s *PersonStore) AppendEntry(ctx context.Context, personID, building, operator string) error {
	return s.appendEvent(ctx, s.conn, s.tables.Entries, personID, building, operator)
}

// AppendExit records an exit event.
func (s *PersonStore) AppendExit(ctx context.Context, personID, building, operator string) error {
	return s.appendEvent(ctx, s.conn, s.tables.Exits, personID, building, operator)
}

func (s *PersonStore) appendEvent(ctx context.Context, q Querier, table, personID, building, operator string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (person_id, building, recorded_by)
		VALUES ($1, $2, $3)
	`, table)

	if _, err := q.Exec(ctx, query, personID, building, operator); err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrPersonNotFound
		}
		return shared.WrapError(string(s.kind), "Append", shared.ErrStorage, "insert event", err)
	}
	return nil
}

// LatestEntry returns the most recent entry timestamp, nil if none.
func (s *PersonStore) LatestEntry(ctx context.Context, personID string) (*time.Time, error) {
	ts, _, err := s.latestEvent(ctx, s.conn, s.tables.Entries, personID)
	return ts, err
}

// LatestExit returns the most recent exit timestamp, nil if none.
func (s *PersonStore) LatestExit(ctx context.Context, personID string) (*time.Time, error) {
	ts, _, err := s.latestEvent(ctx, s.conn, s.tables.Exits, personID)
	return ts, err
}

// LatestEntryWithBuilding returns the most recent entry and its building.
func (s *PersonStore) LatestEntryWithBuilding(ctx context.Context, personID string) (*time.Time, string, error) {
	return s.latestEvent(ctx, s.conn, s.tables.Entries, personID)
}

func (s *PersonStore) latestEvent(ctx context.Context, q Querier, table, personID string) (*time.Time, string, error) {
	query := fmt.Sprintf(`
		SELECT occurred_at, building FROM %s
		WHERE person_id = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT 1
	`, table)

	var ts time.Time
	var building string
	err := q.QueryRow(ctx, query, personID).Scan(&ts, &building)
	if err != nil {
		if IsNoRows(err) {
			return nil, "", nil
		}
		return nil, "", shared.WrapError(string(s.kind), "Latest", shared.ErrStorage, "query latest event", err)
	}
	return &ts, building, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Toggler
// ──────────────────────────────────────────────────────────────────────────────

// Toggle derives the current state under a per-person row lock and appends
// the opposite event. Both entries and exits record the given building, the
// one whose desk the operator toggles from.
func (s *PersonStore) Toggle(ctx context.Context, personID, building, operator string) (presence.State, error) {
	lockPerson := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR UPDATE`, s.tables.Persons)

	var newState presence.State
	err := s.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, lockPerson, personID).Scan(&locked); err != nil {
			if IsNoRows(err) {
				return shared.ErrPersonNotFound
			}
			return err
		}

		lastEntry, _, err := s.latestEvent(ctx, tx, s.tables.Entries, personID)
		if err != nil {
			return err
		}
		lastExit, _, err := s.latestEvent(ctx, tx, s.tables.Exits, personID)
		if err != nil {
			return err
		}

		if presence.DeriveState(lastEntry, lastExit) == presence.StateInside {
			newState = presence.StateOutside
			return s.appendEvent(ctx, tx, s.tables.Exits, personID, building, operator)
		}

		newState = presence.StateInside
		return s.appendEvent(ctx, tx, s.tables.Entries, personID, building, operator)
	})
	if err != nil {
		if IsSerializationFailure(err) || IsDeadlockDetected(err) {
			return "", shared.ErrToggleConflict
		}
		if shared.IsNotFound(err) || shared.IsStorage(err) {
			return "", err
		}
		return "", shared.WrapError(string(s.kind), "Toggle", shared.ErrStorage, "toggle transaction", err)
	}

	return newState, nil
}

func (s *PersonStore) scanPerson(row pgx.Row) (*presence.Person, error) {
	var p presence.Person
	p.Kind = s.kind
	err := row.Scan(&p.ID, &p.Identifier, &p.FirstName, &p.LastName, &p.Department, &p.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrPersonNotFound
		}
		return nil, shared.WrapError(string(s.kind), "GetByID", shared.ErrStorage, "scan person", err)
	}
	return &p, nil
}
