package query

import (
	"context"

	"github.com/campus-hub/campus-presence/internal/domain/building"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST BUILDINGS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ListBuildingsHandler returns the building catalog.
type ListBuildingsHandler struct {
	buildings building.Repository
}

// NewListBuildingsHandler creates the handler.
func NewListBuildingsHandler(buildings building.Repository) *ListBuildingsHandler {
	return &ListBuildingsHandler{buildings: buildings}
}

// Handle lists the catalog in name order.
func (h *ListBuildingsHandler) Handle(ctx context.Context) ([]building.Building, error) {
	return h.buildings.List(ctx)
}
