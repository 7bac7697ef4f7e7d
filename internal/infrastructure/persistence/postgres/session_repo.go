package postgres

import (
	"context"
	"time"

	"github.com/campus-hub/campus-presence/internal/domain/session"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
)

// SessionRepository implements session.Repository.
type SessionRepository struct {
	conn *Connection
}

// NewSessionRepository creates a session repository.
func NewSessionRepository(conn *Connection) *SessionRepository {
	return &SessionRepository{conn: conn}
}

// Create inserts a session.
func (r *SessionRepository) Create(ctx context.Context, s session.Session) error {
	query := `
		INSERT INTO sessions (id, operator_id, username, building, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.conn.Exec(ctx, query, s.ID, s.OperatorID, s.Username, s.Building, s.ExpiresAt); err != nil {
		return shared.WrapError("session", "Create", shared.ErrStorage, "insert session", err)
	}
	return nil
}

// GetByID returns a session by its token digest.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (session.Session, error) {
	query := `
		SELECT id, operator_id, username, building, expires_at
		FROM sessions
		WHERE id = $1
	`

	var s session.Session
	err := r.conn.QueryRow(ctx, query, id).Scan(&s.ID, &s.OperatorID, &s.Username, &s.Building, &s.ExpiresAt)
	if err != nil {
		if IsNoRows(err) {
			return session.Session{}, shared.ErrSessionNotFound
		}
		return session.Session{}, shared.WrapError("session", "GetByID", shared.ErrStorage, "scan session", err)
	}
	return s, nil
}

// UpdateExpiry extends a session.
func (r *SessionRepository) UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	query := `UPDATE sessions SET expires_at = $2 WHERE id = $1`

	tag, err := r.conn.Exec(ctx, query, id, expiresAt)
	if err != nil {
		return shared.WrapError("session", "UpdateExpiry", shared.ErrStorage, "update session", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrSessionNotFound
	}
	return nil
}

// Delete removes a session.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM sessions WHERE id = $1`

	if _, err := r.conn.Exec(ctx, query, id); err != nil {
		return shared.WrapError("session", "Delete", shared.ErrStorage, "delete session", err)
	}
	return nil
}

// DeleteExpired purges sessions that lapsed before now.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= $1`

	tag, err := r.conn.Exec(ctx, query, now)
	if err != nil {
		return 0, shared.WrapError("session", "DeleteExpired", shared.ErrStorage, "delete expired sessions", err)
	}
	return tag.RowsAffected(), nil
}
