package command

import (
	"context"

	"github.com/campus-hub/campus-presence/internal/domain/session"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
	"github.com/campus-hub/campus-presence/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOGOUT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// LogoutCommand holds the raw session token to invalidate.
type LogoutCommand struct {
	Token string
}

// Validate validates the command.
func (c LogoutCommand) Validate() error {
	if c.Token == "" {
		return shared.NewDomainError("session", "Logout", shared.ErrEmptyValue, "token is required")
	}
	return nil
}

// LogoutHandler invalidates sessions.
type LogoutHandler struct {
	sessions session.Repository
	cache    SessionCacher
	logger   *logger.Logger
}

// NewLogoutHandler creates the handler.
func NewLogoutHandler(sessions session.Repository, cache SessionCacher, log *logger.Logger) *LogoutHandler {
	if log == nil {
		log = logger.Default()
	}
	return &LogoutHandler{
		sessions: sessions,
		cache:    cache,
		logger:   log.With(logger.Component("logout")),
	}
}

// Handle deletes the session everywhere. Logging out an already-dead session
// is not an error.
func (h *LogoutHandler) Handle(ctx context.Context, cmd LogoutCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	id := session.TokenID(cmd.Token)

	if err := h.sessions.Delete(ctx, id); err != nil {
		return err
	}

	if h.cache != nil {
		if err := h.cache.Delete(ctx, id); err != nil {
			h.logger.Warn("session cache delete failed", logger.Err(err))
		}
	}

	return nil
}
