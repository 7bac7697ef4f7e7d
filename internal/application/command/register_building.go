package command

import (
	"context"

	"github.com/campus-hub/campus-presence/internal/domain/building"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
	"github.com/campus-hub/campus-presence/pkg/logger"
	"github.com/campus-hub/campus-presence/pkg/sanitize"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER BUILDING COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// RegisterBuildingCommand adds a building to the catalog.
type RegisterBuildingCommand struct {
	Name string
}

// Validate validates the command.
func (c RegisterBuildingCommand) Validate() error {
	if sanitize.Sanitize(c.Name) == "" {
		return shared.NewDomainError("building", "Register", shared.ErrEmptyValue, "building name is required")
	}
	return nil
}

// RegisterBuildingHandler handles catalog additions.
type RegisterBuildingHandler struct {
	buildings building.Repository
	logger    *logger.Logger
}

// NewRegisterBuildingHandler creates the handler.
func NewRegisterBuildingHandler(buildings building.Repository, log *logger.Logger) *RegisterBuildingHandler {
	if log == nil {
		log = logger.Default()
	}
	return &RegisterBuildingHandler{
		buildings: buildings,
		logger:    log.With(logger.Component("register_building")),
	}
}

// Handle adds the building.
func (h *RegisterBuildingHandler) Handle(ctx context.Context, cmd RegisterBuildingCommand) (*building.Building, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	b, err := building.New(sanitize.Sanitize(cmd.Name))
	if err != nil {
		return nil, err
	}

	if err := h.buildings.Create(ctx, b); err != nil {
		return nil, err
	}

	h.logger.Info("building registered", logger.Building(b.Name))
	return &b, nil
}
