package query

import (
	"context"
	"time"

	"github.com/campus-hub/campus-presence/internal/domain/session"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
	"github.com/campus-hub/campus-presence/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALIDATE SESSION QUERY
// Resolves a raw token into a live session. Sessions slide: when less than
// the renewal window remains, validation extends the expiry by a full
// lifetime. Expired sessions are deleted on sight.
// ══════════════════════════════════════════════════════════════════════════════

// ValidateSessionQuery holds the raw token from the client.
type ValidateSessionQuery struct {
	Token string
}

// Validate validates the query.
func (q ValidateSessionQuery) Validate() error {
	if q.Token == "" {
		return shared.NewDomainError("session", "Validate", shared.ErrEmptyValue, "token is required")
	}
	return nil
}

// SessionCacheReader is the cache surface needed for validation.
type SessionCacheReader interface {
	Get(ctx context.Context, id string) (session.Session, error)
	Set(ctx context.Context, s session.Session, now time.Time) error
	Delete(ctx context.Context, id string) error
}

// ValidateSessionHandler resolves tokens into sessions.
type ValidateSessionHandler struct {
	sessions    session.Repository
	cache       SessionCacheReader
	lifetime    time.Duration
	renewWindow time.Duration
	logger      *logger.Logger
}

// NewValidateSessionHandler creates the handler. Zero durations fall back to
// the domain defaults.
func NewValidateSessionHandler(
	sessions session.Repository,
	cache SessionCacheReader,
	lifetime, renewWindow time.Duration,
	log *logger.Logger,
) *ValidateSessionHandler {
	if lifetime <= 0 {
		lifetime = session.Lifetime
	}
	if renewWindow <= 0 {
		renewWindow = session.RenewalWindow
	}
	if log == nil {
		log = logger.Default()
	}
	return &ValidateSessionHandler{
		sessions:    sessions,
		cache:       cache,
		lifetime:    lifetime,
		renewWindow: renewWindow,
		logger:      log.With(logger.Component("validate_session")),
	}
}

// Handle validates the token. Returns ErrSessionNotFound for unknown tokens
// and ErrSessionExpired for lapsed ones.
func (h *ValidateSessionHandler) Handle(ctx context.Context, q ValidateSessionQuery) (session.Session, error) {
	if err := q.Validate(); err != nil {
		return session.Session{}, err
	}

	id := session.TokenID(q.Token)
	now := time.Now().UTC()

	s, cached, err := h.lookup(ctx, id)
	if err != nil {
		return session.Session{}, err
	}

	if s.Expired(now) {
		if err := h.sessions.Delete(ctx, id); err != nil {
			h.logger.Warn("expired session cleanup failed", logger.Err(err))
		}
		if h.cache != nil {
			_ = h.cache.Delete(ctx, id)
		}
		return session.Session{}, shared.ErrSessionExpired
	}

	if s.ExpiresAt.Sub(now) < h.renewWindow {
		s.ExpiresAt = now.Add(h.lifetime)
		if err := h.sessions.UpdateExpiry(ctx, id, s.ExpiresAt); err != nil {
			return session.Session{}, err
		}
		cached = false
	}

	if !cached && h.cache != nil {
		if err := h.cache.Set(ctx, s, now); err != nil {
			h.logger.Warn("session cache write failed", logger.Err(err))
		}
	}

	return s, nil
}

// lookup tries the cache first and falls back to the database.
func (h *ValidateSessionHandler) lookup(ctx context.Context, id string) (session.Session, bool, error) {
	if h.cache != nil {
		if s, err := h.cache.Get(ctx, id); err == nil {
			return s, true, nil
		}
	}

	s, err := h.sessions.GetByID(ctx, id)
	if err != nil {
		return session.Session{}, false, err
	}
	return s, false, nil
}
