package postgres

import (
	"context"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEMA BOOTSTRAP
// The service owns its schema and creates it idempotently at startup.
// Entry and exit tables are append-only; rows are never updated or deleted.
// ══════════════════════════════════════════════════════════════════════════════

// personTableSet names the three tables backing one person kind.
type personTableSet struct {
	Persons string
	Entries string
	Exits   string
}

var (
	studentTables = personTableSet{
		Persons: "students",
		Entries: "student_entries",
		Exits:   "student_exits",
	}

	employeeTables = personTableSet{
		Persons: "employees",
		Entries: "employee_entries",
		Exits:   "employee_exits",
	}
)

const schemaSharedSQL = `
CREATE TABLE IF NOT EXISTS buildings (
	name TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS operators (
	id UUID PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	building TEXT NOT NULL REFERENCES buildings(name),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	operator_id UUID NOT NULL REFERENCES operators(id) ON DELETE CASCADE,
	username TEXT NOT NULL,
	building TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions (expires_at);
`

// schemaPersonSQL builds the DDL for one person kind's table set.
// Event timestamps default to clock_timestamp(), not NOW(): toggles queue on
// a row lock, and NOW() would stamp a waiting transaction with its begin
// time, putting events out of insert order.
func schemaPersonSQL(t personTableSet) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	id UUID PRIMARY KEY,
	identifier TEXT NOT NULL UNIQUE,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	department TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS %[2]s (
	id BIGSERIAL PRIMARY KEY,
	person_id UUID NOT NULL REFERENCES %[1]s(id) ON DELETE CASCADE,
	building TEXT NOT NULL,
	recorded_by TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE INDEX IF NOT EXISTS idx_%[2]s_person_occurred ON %[2]s (person_id, occurred_at DESC);

CREATE TABLE IF NOT EXISTS %[3]s (
	id BIGSERIAL PRIMARY KEY,
	person_id UUID NOT NULL REFERENCES %[1]s(id) ON DELETE CASCADE,
	building TEXT NOT NULL,
	recorded_by TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE INDEX IF NOT EXISTS idx_%[3]s_person_occurred ON %[3]s (person_id, occurred_at DESC);
`, t.Persons, t.Entries, t.Exits)
}

// EnsureSchema creates all tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, conn *Connection) error {
	statements := []string{
		schemaSharedSQL,
		schemaPersonSQL(studentTables),
		schemaPersonSQL(employeeTables),
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: ensure schema: %w", err)
		}
	}

	return nil
}
