// Package operator holds the front-desk operator accounts that record
// entries and exits. Passwords are stored as bcrypt hashes only.
package operator

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-hub/campus-presence/internal/domain/shared"
)

// Operator is a front-desk account bound to one building.
type Operator struct {
	ID           string
	Username     string
	PasswordHash string
	Building     string
	CreatedAt    time.Time
}

// New creates an operator with a bcrypt-hashed password.
func New(username, password, building string) (Operator, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Operator{}, shared.NewDomainError("operator", "New", shared.ErrEmptyValue, "username is required")
	}
	if password == "" {
		return Operator{}, shared.NewDomainError("operator", "New", shared.ErrEmptyValue, "password is required")
	}
	if strings.TrimSpace(building) == "" {
		return Operator{}, shared.NewDomainError("operator", "New", shared.ErrEmptyValue, "building is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Operator{}, shared.NewDomainError("operator", "New", err, "hash password")
	}

	return Operator{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Building:     building,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Authenticate checks a candidate password against the stored hash.
func (o Operator) Authenticate(password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(password)); err != nil {
		return shared.ErrInvalidCredentials
	}
	return nil
}

// Repository persists operator accounts.
type Repository interface {
	Create(ctx context.Context, o Operator) error
	GetByUsername(ctx context.Context, username string) (Operator, error)
}
