package postgres

import (
	"context"

	"github.com/campus-hub/campus-presence/internal/domain/building"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
)

// BuildingRepository implements building.Repository.
type BuildingRepository struct {
	conn *Connection
}

// NewBuildingRepository creates a building repository.
func NewBuildingRepository(conn *Connection) *BuildingRepository {
	return &BuildingRepository{conn: conn}
}

// Create inserts a building into the catalog.
func (r *BuildingRepository) Create(ctx context.Context, b building.Building) error {
	query := `
		INSERT INTO buildings (name, created_at)
		VALUES ($1, $2)
	`

	if _, err := r.conn.Exec(ctx, query, b.Name, b.CreatedAt); err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrBuildingAlreadyExists
		}
		return shared.WrapError("building", "Create", shared.ErrStorage, "insert building", err)
	}
	return nil
}

// List returns the full catalog ordered by name.
func (r *BuildingRepository) List(ctx context.Context) ([]building.Building, error) {
	query := `
		SELECT name, created_at
		FROM buildings
		ORDER BY name
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapError("building", "List", shared.ErrStorage, "query buildings", err)
	}
	defer rows.Close()

	var result []building.Building
	for rows.Next() {
		var b building.Building
		if err := rows.Scan(&b.Name, &b.CreatedAt); err != nil {
			return nil, shared.WrapError("building", "List", shared.ErrStorage, "scan building", err)
		}
		result = append(result, b)
	}

	if err := rows.Err(); err != nil {
		return nil, shared.WrapError("building", "List", shared.ErrStorage, "iterate buildings", err)
	}

	return result, nil
}

// Exists reports whether a building is in the catalog.
func (r *BuildingRepository) Exists(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM buildings WHERE name = $1)`

	var exists bool
	if err := r.conn.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, shared.WrapError("building", "Exists", shared.ErrStorage, "query building", err)
	}
	return exists, nil
}
