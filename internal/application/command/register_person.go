// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"

	"github.com/campus-hub/campus-presence/internal/domain/building"
	"github.com/campus-hub/campus-presence/internal/domain/presence"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
	"github.com/campus-hub/campus-presence/pkg/logger"
	"github.com/campus-hub/campus-presence/pkg/sanitize"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER PERSON COMMAND
// Registers a student or employee. The identity row and the initial entry
// event are written in one transaction, so a freshly registered person is
// inside the operator's building from the first read on.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterPersonCommand contains the data to register a person.
type RegisterPersonCommand struct {
	// Kind selects the directory (student or employee).
	Kind presence.Kind

	// Identifier is the external identifier (student index or employee email).
	Identifier string

	// FirstName and LastName of the person.
	FirstName string
	LastName  string

	// Department the person belongs to.
	Department string

	// Building where the person is being registered.
	Building string

	// Operator is the username of the operator recording the registration.
	Operator string
}

// Validate validates the command. Fields are checked after sanitization, so
// whitespace-only input is rejected the same way as empty input.
func (c RegisterPersonCommand) Validate() error {
	if !c.Kind.Valid() {
		return shared.ErrInvalidPersonKind
	}
	if sanitize.Sanitize(c.Identifier) == "" {
		return shared.NewDomainError("presence", "Register", shared.ErrEmptyValue, "identifier is required")
	}
	if sanitize.Sanitize(c.FirstName) == "" {
		return shared.NewDomainError("presence", "Register", shared.ErrEmptyValue, "first name is required")
	}
	if sanitize.Sanitize(c.LastName) == "" {
		return shared.NewDomainError("presence", "Register", shared.ErrEmptyValue, "last name is required")
	}
	if sanitize.Sanitize(c.Department) == "" {
		return shared.NewDomainError("presence", "Register", shared.ErrEmptyValue, "department is required")
	}
	if sanitize.Sanitize(c.Building) == "" {
		return shared.NewDomainError("presence", "Register", shared.ErrEmptyValue, "building is required")
	}
	return nil
}

// RegisterPersonResult contains the result of a registration.
type RegisterPersonResult struct {
	Person *presence.Person

	// State is always StateInside for a fresh registration.
	State presence.State
}

// OccupancyInvalidator drops cached occupancy aggregates after writes.
type OccupancyInvalidator interface {
	Invalidate(ctx context.Context, kind string) error
}

// RegisterPersonHandler handles person registration.
type RegisterPersonHandler struct {
	stores    presence.StoreSet
	buildings building.Repository
	occupancy OccupancyInvalidator
	logger    *logger.Logger
}

// NewRegisterPersonHandler creates the handler.
func NewRegisterPersonHandler(
	stores presence.StoreSet,
	buildings building.Repository,
	occupancy OccupancyInvalidator,
	log *logger.Logger,
) *RegisterPersonHandler {
	if log == nil {
		log = logger.Default()
	}
	return &RegisterPersonHandler{
		stores:    stores,
		buildings: buildings,
		occupancy: occupancy,
		logger:    log.With(logger.Component("register_person")),
	}
}

// Handle registers the person.
func (h *RegisterPersonHandler) Handle(ctx context.Context, cmd RegisterPersonCommand) (*RegisterPersonResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	store, err := h.stores.For(cmd.Kind)
	if err != nil {
		return nil, err
	}

	buildingName := sanitize.Sanitize(cmd.Building)
	exists, err := h.buildings.Exists(ctx, buildingName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrBuildingNotFound
	}

	person, err := presence.NewPerson(
		cmd.Kind,
		sanitize.Sanitize(cmd.Identifier),
		sanitize.Capitalize(sanitize.Sanitize(cmd.FirstName)),
		sanitize.Capitalize(sanitize.Sanitize(cmd.LastName)),
		sanitize.Capitalize(sanitize.Sanitize(cmd.Department)),
	)
	if err != nil {
		return nil, err
	}

	if err := store.Create(ctx, person, buildingName, cmd.Operator); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			h.logger.Warn("duplicate registration",
				logger.PersonKind(string(cmd.Kind)),
				logger.Identifier(person.Identifier),
			)
		}
		return nil, err
	}

	if h.occupancy != nil {
		if err := h.occupancy.Invalidate(ctx, string(cmd.Kind)); err != nil {
			h.logger.Warn("occupancy cache invalidation failed", logger.Err(err))
		}
	}

	h.logger.Info("person registered",
		logger.PersonKind(string(cmd.Kind)),
		logger.PersonID(person.ID),
		logger.Building(buildingName),
		logger.Operator(cmd.Operator),
	)

	return &RegisterPersonResult{Person: person, State: presence.StateInside}, nil
}
