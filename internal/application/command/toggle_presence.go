package command

import (
	"context"

	"github.com/campus-hub/campus-presence/internal/domain/presence"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
	"github.com/campus-hub/campus-presence/pkg/logger"
	"github.com/campus-hub/campus-presence/pkg/retry"
	"github.com/campus-hub/campus-presence/pkg/sanitize"
)

// ══════════════════════════════════════════════════════════════════════════════
// TOGGLE PRESENCE COMMAND
// Flips a person between inside and outside. The store performs the
// read-derive-append sequence under a per-person lock; this handler retries
// transparently when a concurrent toggle wins the race, so callers see
// exactly one state flip per invocation.
// ══════════════════════════════════════════════════════════════════════════════

// TogglePresenceCommand identifies the person to toggle.
type TogglePresenceCommand struct {
	// Kind selects the directory.
	Kind presence.Kind

	// PersonID is the internal person ID.
	PersonID string

	// Building is the operator's building, recorded on the appended event.
	Building string

	// Operator is the username of the operator recording the movement.
	Operator string
}

// Validate validates the command.
func (c TogglePresenceCommand) Validate() error {
	if !c.Kind.Valid() {
		return shared.ErrInvalidPersonKind
	}
	if c.PersonID == "" {
		return shared.NewDomainError("presence", "Toggle", shared.ErrEmptyValue, "person id is required")
	}
	if sanitize.Sanitize(c.Building) == "" {
		return shared.NewDomainError("presence", "Toggle", shared.ErrEmptyValue, "building is required")
	}
	return nil
}

// TogglePresenceResult contains the outcome of a toggle.
type TogglePresenceResult struct {
	PersonID string
	Kind     presence.Kind

	// State is the state after the toggle.
	State presence.State
}

// TogglePresenceHandler handles presence toggles.
type TogglePresenceHandler struct {
	stores    presence.StoreSet
	occupancy OccupancyInvalidator
	retrier   *retry.Retrier
	logger    *logger.Logger
}

// NewTogglePresenceHandler creates the handler.
func NewTogglePresenceHandler(
	stores presence.StoreSet,
	occupancy OccupancyInvalidator,
	log *logger.Logger,
) *TogglePresenceHandler {
	if log == nil {
		log = logger.Default()
	}
	return &TogglePresenceHandler{
		stores:    stores,
		occupancy: occupancy,
		retrier:   retry.ToggleRetrier(),
		logger:    log.With(logger.Component("toggle_presence")),
	}
}

// Handle toggles the person's presence state.
func (h *TogglePresenceHandler) Handle(ctx context.Context, cmd TogglePresenceCommand) (*TogglePresenceResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	store, err := h.stores.For(cmd.Kind)
	if err != nil {
		return nil, err
	}

	buildingName := sanitize.Sanitize(cmd.Building)

	var state presence.State
	err = h.retrier.Do(ctx, func(ctx context.Context) error {
		s, err := store.Toggle(ctx, cmd.PersonID, buildingName, cmd.Operator)
		if err != nil {
			if shared.IsConcurrencyConflict(err) {
				return retry.Retryable(err)
			}
			return retry.Permanent(err)
		}
		state = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	if h.occupancy != nil {
		if err := h.occupancy.Invalidate(ctx, string(cmd.Kind)); err != nil {
			h.logger.Warn("occupancy cache invalidation failed", logger.Err(err))
		}
	}

	h.logger.Info("presence toggled",
		logger.PersonKind(string(cmd.Kind)),
		logger.PersonID(cmd.PersonID),
		logger.F("state", string(state)),
		logger.Operator(cmd.Operator),
	)

	return &TogglePresenceResult{PersonID: cmd.PersonID, Kind: cmd.Kind, State: state}, nil
}
