package postgres

import (
	"context"

	"github.com/campus-hub/campus-presence/internal/domain/operator"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
)

// OperatorRepository implements operator.Repository.
type OperatorRepository struct {
	conn *Connection
}

// NewOperatorRepository creates an operator repository.
func NewOperatorRepository(conn *Connection) *OperatorRepository {
	return &OperatorRepository{conn: conn}
}

// Create inserts an operator account.
func (r *OperatorRepository) Create(ctx context.Context, o operator.Operator) error {
	query := `
		INSERT INTO operators (id, username, password_hash, building, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.conn.Exec(ctx, query, o.ID, o.Username, o.PasswordHash, o.Building, o.CreatedAt); err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("operator", "Create", shared.ErrAlreadyExists, "username already taken")
		}
		return shared.WrapError("operator", "Create", shared.ErrStorage, "insert operator", err)
	}
	return nil
}

// GetByUsername returns an operator by username.
func (r *OperatorRepository) GetByUsername(ctx context.Context, username string) (operator.Operator, error) {
	query := `
		SELECT id, username, password_hash, building, created_at
		FROM operators
		WHERE username = $1
	`

	var o operator.Operator
	err := r.conn.QueryRow(ctx, query, username).Scan(&o.ID, &o.Username, &o.PasswordHash, &o.Building, &o.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return operator.Operator{}, shared.ErrOperatorNotFound
		}
		return operator.Operator{}, shared.WrapError("operator", "GetByUsername", shared.ErrStorage, "scan operator", err)
	}
	return o, nil
}
