// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"time"

	"github.com/campus-hub/campus-presence/internal/domain/presence"
	"github.com/campus-hub/campus-presence/internal/domain/search"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
	"github.com/campus-hub/campus-presence/pkg/logger"
	"github.com/campus-hub/campus-presence/pkg/sanitize"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST PERSONS QUERY
// Lists one directory with presence annotations, optionally filtered by a
// fuzzy search query. Matching and ranking run in the application layer on a
// full snapshot; the database only supplies rows with their latest entry and
// exit timestamps.
// ══════════════════════════════════════════════════════════════════════════════

// ListPersonsQuery describes one directory listing request.
type ListPersonsQuery struct {
	// Kind selects the directory.
	Kind presence.Kind

	// Query is the fuzzy search text. Empty lists everyone in identifier
	// order.
	Query string

	// Limit is the page size. Must be positive.
	Limit int

	// Offset is the number of ranked rows to skip. Must be non-negative.
	Offset int
}

// Validate validates the query.
func (q ListPersonsQuery) Validate() error {
	if !q.Kind.Valid() {
		return shared.ErrInvalidPersonKind
	}
	if q.Limit <= 0 {
		return shared.NewDomainError("presence", "List", shared.ErrInvalidArgument, "limit must be positive")
	}
	if q.Offset < 0 {
		return shared.NewDomainError("presence", "List", shared.ErrInvalidArgument, "offset must be non-negative")
	}
	return nil
}

// PersonView is one row of a directory listing.
type PersonView struct {
	ID         string        `json:"id"`
	Kind       presence.Kind `json:"kind"`
	Identifier string        `json:"identifier"`
	FirstName  string        `json:"firstName"`
	LastName   string        `json:"lastName"`
	Department string        `json:"department"`

	// IsInside is the derived presence state.
	IsInside bool `json:"isInside"`

	// Building is the current building, empty when outside.
	Building string `json:"building,omitempty"`

	LastEntryAt *time.Time `json:"lastEntryAt,omitempty"`
	LastExitAt  *time.Time `json:"lastExitAt,omitempty"`
}

// ListPersonsResult is a page of a directory listing.
type ListPersonsResult struct {
	Persons []PersonView `json:"persons"`

	// Total is the number of rows matching the query before pagination.
	Total int `json:"total"`
}

// ListPersonsHandler handles directory listings.
type ListPersonsHandler struct {
	stores  presence.StoreSet
	matcher *search.Matcher
	logger  *logger.Logger
}

// NewListPersonsHandler creates the handler. A nil matcher falls back to
// default thresholds.
func NewListPersonsHandler(stores presence.StoreSet, matcher *search.Matcher, log *logger.Logger) *ListPersonsHandler {
	if matcher == nil {
		matcher = search.NewMatcher(search.DefaultThresholds())
	}
	if log == nil {
		log = logger.Default()
	}
	return &ListPersonsHandler{
		stores:  stores,
		matcher: matcher,
		logger:  log.With(logger.Component("list_persons")),
	}
}

// Handle lists the directory.
func (h *ListPersonsHandler) Handle(ctx context.Context, q ListPersonsQuery) (*ListPersonsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	store, err := h.stores.For(q.Kind)
	if err != nil {
		return nil, err
	}

	rows, err := store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	// Snapshot rows arrive in identifier order, which is the final tie-break
	// of the matcher too, so pagination is stable either way.
	matched := rows
	if queryText := sanitize.Sanitize(q.Query); queryText != "" {
		candidates := make([]search.Candidate, len(rows))
		for i, row := range rows {
			candidates[i] = search.Candidate{
				Identifier: sanitize.Sanitize(row.Identifier),
				FirstName:  sanitize.Sanitize(row.FirstName),
				LastName:   sanitize.Sanitize(row.LastName),
			}
		}

		ranked := h.matcher.Rank(queryText, candidates)
		matched = make([]presence.PresenceRow, len(ranked))
		for i, r := range ranked {
			matched[i] = rows[r.Index]
		}
	}

	total := len(matched)
	page := paginate(matched, q.Offset, q.Limit)

	views := make([]PersonView, len(page))
	for i, row := range page {
		views[i] = PersonView{
			ID:          row.ID,
			Kind:        row.Kind,
			Identifier:  row.Identifier,
			FirstName:   row.FirstName,
			LastName:    row.LastName,
			Department:  row.Department,
			IsInside:    row.State() == presence.StateInside,
			Building:    row.CurrentBuilding(),
			LastEntryAt: row.LastEntryAt,
			LastExitAt:  row.LastExitAt,
		}
	}

	return &ListPersonsResult{Persons: views, Total: total}, nil
}

// paginate returns the [offset, offset+limit) window of rows.
func paginate(rows []presence.PresenceRow, offset, limit int) []presence.PresenceRow {
	if offset >= len(rows) {
		return nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}
