package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-presence/internal/domain/building"
	"github.com/campus-hub/campus-presence/internal/domain/presence"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
)

// catalogRepo is an in-memory building.Repository.
type catalogRepo struct {
	names []string
}

func (f *catalogRepo) Create(ctx context.Context, b building.Building) error {
	f.names = append(f.names, b.Name)
	return nil
}

func (f *catalogRepo) List(ctx context.Context) ([]building.Building, error) {
	out := make([]building.Building, len(f.names))
	for i, n := range f.names {
		out[i] = building.Building{Name: n, CreatedAt: time.Now().UTC()}
	}
	return out, nil
}

func (f *catalogRepo) Exists(ctx context.Context, name string) (bool, error) {
	for _, n := range f.names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// recordingCache is an OccupancyCacher with scripted contents.
type recordingCache struct {
	counts map[string]int
	sets   int
}

func (c *recordingCache) Get(ctx context.Context, kind string) (map[string]int, error) {
	if c.counts == nil {
		return nil, shared.ErrNotFound
	}
	return c.counts, nil
}

func (c *recordingCache) Set(ctx context.Context, kind string, counts map[string]int) error {
	c.counts = counts
	c.sets++
	return nil
}

func TestOccupancyHandler_CountsInsideOnly(t *testing.T) {
	stores := studentStores(
		row("s-100", "ada", "lovelace", "library", 10, 0),
		row("s-200", "grace", "hopper", "library", 30, 0),
		row("s-300", "alan", "turing", "library", 10, 20),
		row("s-400", "mary", "shelley", "annex", 10, 0),
		row("s-500", "jane", "austen", "", 0, 0),
	)
	buildings := &catalogRepo{names: []string{"annex", "gym", "library"}}
	handler := NewOccupancyHandler(stores, buildings, nil, nil)

	result, err := handler.Handle(context.Background(), OccupancyQuery{Kind: presence.KindStudent})
	require.NoError(t, err)

	assert.Equal(t, presence.KindStudent, result.Kind)
	require.Len(t, result.Buildings, 3)

	// Catalog order, empty buildings kept at zero.
	assert.Equal(t, BuildingCount{Building: "annex", Count: 1}, result.Buildings[0])
	assert.Equal(t, BuildingCount{Building: "gym", Count: 0}, result.Buildings[1])
	assert.Equal(t, BuildingCount{Building: "library", Count: 2}, result.Buildings[2])
}

func TestOccupancyHandler_UncatalogedBuildingStillCounts(t *testing.T) {
	stores := studentStores(
		row("s-100", "ada", "lovelace", "demolished wing", 10, 0),
	)
	buildings := &catalogRepo{names: []string{"library"}}
	handler := NewOccupancyHandler(stores, buildings, nil, nil)

	result, err := handler.Handle(context.Background(), OccupancyQuery{Kind: presence.KindStudent})
	require.NoError(t, err)

	require.Len(t, result.Buildings, 2)
	assert.Equal(t, BuildingCount{Building: "library", Count: 0}, result.Buildings[0])
	assert.Equal(t, BuildingCount{Building: "demolished wing", Count: 1}, result.Buildings[1])
}

func TestOccupancyHandler_CacheHitSkipsComputation(t *testing.T) {
	// A snapshot that disagrees with the cache exposes which path ran.
	stores := studentStores(
		row("s-100", "ada", "lovelace", "library", 10, 0),
	)
	buildings := &catalogRepo{names: []string{"library"}}
	cache := &recordingCache{counts: map[string]int{"library": 7}}
	handler := NewOccupancyHandler(stores, buildings, cache, nil)

	result, err := handler.Handle(context.Background(), OccupancyQuery{Kind: presence.KindStudent})
	require.NoError(t, err)

	assert.Equal(t, 7, result.Buildings[0].Count)
	assert.Zero(t, cache.sets)
}

func TestOccupancyHandler_CacheMissComputesAndStores(t *testing.T) {
	stores := studentStores(
		row("s-100", "ada", "lovelace", "library", 10, 0),
	)
	buildings := &catalogRepo{names: []string{"library"}}
	cache := &recordingCache{}
	handler := NewOccupancyHandler(stores, buildings, cache, nil)

	result, err := handler.Handle(context.Background(), OccupancyQuery{Kind: presence.KindStudent})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Buildings[0].Count)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, map[string]int{"library": 1}, cache.counts)
}

func TestOccupancyQuery_Validate(t *testing.T) {
	assert.NoError(t, OccupancyQuery{Kind: presence.KindEmployee}.Validate())

	err := OccupancyQuery{Kind: "visitor"}.Validate()
	require.Error(t, err)
	assert.True(t, shared.IsInvalidArgument(err))
}
