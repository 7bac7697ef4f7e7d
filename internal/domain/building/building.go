// Package building holds the tracked-building catalog. Occupancy reports
// cover every cataloged building, including the empty ones.
package building

import (
	"context"
	"strings"
	"time"

	"github.com/campus-hub/campus-presence/internal/domain/shared"
)

// Building is one tracked facility building.
type Building struct {
	Name      string
	CreatedAt time.Time
}

// New validates the name and returns a Building.
func New(name string) (Building, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Building{}, shared.NewDomainError("building", "New", shared.ErrEmptyValue, "building name is required")
	}
	return Building{Name: name, CreatedAt: time.Now().UTC()}, nil
}

// Repository persists the building catalog.
type Repository interface {
	Create(ctx context.Context, b Building) error
	List(ctx context.Context) ([]Building, error)
	Exists(ctx context.Context, name string) (bool, error)
}
