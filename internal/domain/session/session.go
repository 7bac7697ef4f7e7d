// Package session holds the operator session model. Sessions are keyed by
// the SHA-256 digest of an opaque token, so a database leak never exposes
// usable tokens.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// Lifetime is how long a freshly issued session stays valid.
	Lifetime = 30 * 24 * time.Hour

	// RenewalWindow is the remaining lifetime below which validation
	// extends the session by a full Lifetime.
	RenewalWindow = 15 * 24 * time.Hour
)

// tokenEncoding is unpadded lowercase base32, safe for cookies and URLs.
var tokenEncoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// Session is an authenticated operator session.
type Session struct {
	// ID is the hex SHA-256 digest of the token. Only the digest is stored.
	ID         string
	OperatorID string
	Username   string
	Building   string
	ExpiresAt  time.Time
}

// Expired reports whether the session lapsed at the given instant.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ShouldRenew reports whether the session is inside its renewal window.
func (s Session) ShouldRenew(now time.Time) bool {
	return s.ExpiresAt.Sub(now) < RenewalWindow
}

// GenerateToken returns a fresh random session token.
func GenerateToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return tokenEncoding.EncodeToString(buf), nil
}

// TokenID derives the stored session ID from a token.
func TokenID(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Repository persists sessions.
type Repository interface {
	Create(ctx context.Context, s Session) error
	GetByID(ctx context.Context, id string) (Session, error)
	UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
