package query

import (
	"context"
	"sort"

	"github.com/campus-hub/campus-presence/internal/domain/building"
	"github.com/campus-hub/campus-presence/internal/domain/presence"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
	"github.com/campus-hub/campus-presence/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// OCCUPANCY QUERY
// Counts persons currently inside, per building. The counts come from the
// same snapshot and the same state derivation as single-person reads, so the
// aggregate can never disagree with the individual rows it summarizes.
// ══════════════════════════════════════════════════════════════════════════════

// OccupancyQuery selects the directory to aggregate.
type OccupancyQuery struct {
	Kind presence.Kind
}

// Validate validates the query.
func (q OccupancyQuery) Validate() error {
	if !q.Kind.Valid() {
		return shared.ErrInvalidPersonKind
	}
	return nil
}

// BuildingCount is one building with its inside count. Buildings with no one
// inside are included with a zero count.
type BuildingCount struct {
	Building string `json:"building"`
	Count    int    `json:"count"`
}

// OccupancyResult is the full aggregate for one kind.
type OccupancyResult struct {
	Kind      presence.Kind   `json:"kind"`
	Buildings []BuildingCount `json:"buildings"`
}

// OccupancyCacher caches computed aggregates.
type OccupancyCacher interface {
	Get(ctx context.Context, kind string) (map[string]int, error)
	Set(ctx context.Context, kind string, counts map[string]int) error
}

// OccupancyHandler handles occupancy queries.
type OccupancyHandler struct {
	stores    presence.StoreSet
	buildings building.Repository
	cache     OccupancyCacher
	logger    *logger.Logger
}

// NewOccupancyHandler creates the handler.
func NewOccupancyHandler(
	stores presence.StoreSet,
	buildings building.Repository,
	cache OccupancyCacher,
	log *logger.Logger,
) *OccupancyHandler {
	if log == nil {
		log = logger.Default()
	}
	return &OccupancyHandler{
		stores:    stores,
		buildings: buildings,
		cache:     cache,
		logger:    log.With(logger.Component("occupancy")),
	}
}

// Handle computes the aggregate, consulting the cache first. Cache errors
// degrade to a fresh computation.
func (h *OccupancyHandler) Handle(ctx context.Context, q OccupancyQuery) (*OccupancyResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		if counts, err := h.cache.Get(ctx, string(q.Kind)); err == nil {
			return h.assemble(ctx, q.Kind, counts)
		}
	}

	counts, err := h.compute(ctx, q.Kind)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, string(q.Kind), counts); err != nil {
			h.logger.Warn("occupancy cache write failed", logger.Err(err))
		}
	}

	return h.assemble(ctx, q.Kind, counts)
}

// compute derives per-building counts from a fresh snapshot.
func (h *OccupancyHandler) compute(ctx context.Context, kind presence.Kind) (map[string]int, error) {
	store, err := h.stores.For(kind)
	if err != nil {
		return nil, err
	}

	rows, err := store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, row := range rows {
		if b := row.CurrentBuilding(); b != "" {
			counts[b]++
		}
	}
	return counts, nil
}

// assemble joins the counts against the building catalog so empty buildings
// appear with zero.
func (h *OccupancyHandler) assemble(ctx context.Context, kind presence.Kind, counts map[string]int) (*OccupancyResult, error) {
	catalog, err := h.buildings.List(ctx)
	if err != nil {
		return nil, err
	}

	result := &OccupancyResult{
		Kind:      kind,
		Buildings: make([]BuildingCount, 0, len(catalog)),
	}

	seen := make(map[string]bool, len(catalog))
	for _, b := range catalog {
		seen[b.Name] = true
		result.Buildings = append(result.Buildings, BuildingCount{
			Building: b.Name,
			Count:    counts[b.Name],
		})
	}

	// Entries recorded against buildings no longer in the catalog still
	// count; they are appended after the cataloged ones.
	var extra []string
	for name := range counts {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		result.Buildings = append(result.Buildings, BuildingCount{Building: name, Count: counts[name]})
	}

	return result, nil
}
