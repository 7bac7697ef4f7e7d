package command

import (
	"context"
	"time"

	"github.com/campus-hub/campus-presence/internal/domain/operator"
	"github.com/campus-hub/campus-presence/internal/domain/session"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
	"github.com/campus-hub/campus-presence/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOGIN COMMAND
// Authenticates an operator and issues a session. Only the SHA-256 digest of
// the token is persisted; the raw token travels back to the client once and
// is never stored.
// ══════════════════════════════════════════════════════════════════════════════

// LoginCommand contains operator credentials.
type LoginCommand struct {
	Username string
	Password string
}

// Validate validates the command.
func (c LoginCommand) Validate() error {
	if c.Username == "" {
		return shared.NewDomainError("operator", "Login", shared.ErrEmptyValue, "username is required")
	}
	if c.Password == "" {
		return shared.NewDomainError("operator", "Login", shared.ErrEmptyValue, "password is required")
	}
	return nil
}

// LoginResult contains the issued session and its raw token.
type LoginResult struct {
	// Token is the raw session token for the client cookie.
	Token string

	Session session.Session
}

// SessionCacher mirrors sessions into a cache.
type SessionCacher interface {
	Set(ctx context.Context, s session.Session, now time.Time) error
	Delete(ctx context.Context, id string) error
}

// LoginHandler handles operator logins.
type LoginHandler struct {
	operators operator.Repository
	sessions  session.Repository
	cache     SessionCacher
	lifetime  time.Duration
	logger    *logger.Logger
}

// NewLoginHandler creates the handler. A zero lifetime falls back to the
// domain default.
func NewLoginHandler(
	operators operator.Repository,
	sessions session.Repository,
	cache SessionCacher,
	lifetime time.Duration,
	log *logger.Logger,
) *LoginHandler {
	if lifetime <= 0 {
		lifetime = session.Lifetime
	}
	if log == nil {
		log = logger.Default()
	}
	return &LoginHandler{
		operators: operators,
		sessions:  sessions,
		cache:     cache,
		lifetime:  lifetime,
		logger:    log.With(logger.Component("login")),
	}
}

// Handle authenticates and issues a session. Unknown usernames and wrong
// passwords both map to ErrInvalidCredentials.
func (h *LoginHandler) Handle(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	op, err := h.operators.GetByUsername(ctx, cmd.Username)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := op.Authenticate(cmd.Password); err != nil {
		h.logger.Warn("failed login attempt", logger.Operator(cmd.Username))
		return nil, err
	}

	token, err := session.GenerateToken()
	if err != nil {
		return nil, err
	}

	s := session.Session{
		ID:         session.TokenID(token),
		OperatorID: op.ID,
		Username:   op.Username,
		Building:   op.Building,
		ExpiresAt:  time.Now().UTC().Add(h.lifetime),
	}

	if err := h.sessions.Create(ctx, s); err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, s, time.Now().UTC()); err != nil {
			h.logger.Warn("session cache write failed", logger.Err(err))
		}
	}

	h.logger.Info("operator logged in",
		logger.Operator(op.Username),
		logger.Building(op.Building),
	)

	return &LoginResult{Token: token, Session: s}, nil
}
