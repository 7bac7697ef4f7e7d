package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-presence/internal/domain/building"
	"github.com/campus-hub/campus-presence/internal/domain/presence"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
)

// fakeBuildingRepo is an in-memory building.Repository.
type fakeBuildingRepo struct {
	names []string
}

func (f *fakeBuildingRepo) Create(ctx context.Context, b building.Building) error {
	for _, n := range f.names {
		if n == b.Name {
			return shared.ErrBuildingAlreadyExists
		}
	}
	f.names = append(f.names, b.Name)
	return nil
}

func (f *fakeBuildingRepo) List(ctx context.Context) ([]building.Building, error) {
	out := make([]building.Building, len(f.names))
	for i, n := range f.names {
		out[i] = building.Building{Name: n, CreatedAt: time.Now().UTC()}
	}
	return out, nil
}

func (f *fakeBuildingRepo) Exists(ctx context.Context, name string) (bool, error) {
	for _, n := range f.names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

func TestRegisterPersonHandler_SanitizesAndCapitalizes(t *testing.T) {
	store := newFakeStore()
	buildings := &fakeBuildingRepo{names: []string{"library"}}
	invalidator := &fakeInvalidator{}
	handler := NewRegisterPersonHandler(presence.StoreSet{presence.KindStudent: store}, buildings, invalidator, nil)

	result, err := handler.Handle(context.Background(), RegisterPersonCommand{
		Kind:       presence.KindStudent,
		Identifier: "  S-101  ",
		FirstName:  " aDa ",
		LastName:   "LOVELACE",
		Department: "mathematics",
		Building:   " Library ",
		Operator:   "frontdesk",
	})

	require.NoError(t, err)
	assert.Equal(t, presence.StateInside, result.State, "fresh registrations start inside")

	require.Len(t, store.created, 1)
	p := store.created[0]
	assert.Equal(t, "s-101", p.Identifier)
	assert.Equal(t, "Ada", p.FirstName)
	assert.Equal(t, "Lovelace", p.LastName)
	assert.Equal(t, "Mathematics", p.Department)
	assert.NotEmpty(t, p.ID)

	assert.Equal(t, []string{"student"}, invalidator.kinds)
}

func TestRegisterPersonHandler_FoldsDiacritics(t *testing.T) {
	store := newFakeStore()
	buildings := &fakeBuildingRepo{names: []string{"library"}}
	handler := NewRegisterPersonHandler(presence.StoreSet{presence.KindEmployee: store}, buildings, nil, nil)

	_, err := handler.Handle(context.Background(), RegisterPersonCommand{
		Kind:       presence.KindEmployee,
		Identifier: "anna.muller@campus.edu",
		FirstName:  "Änna",
		LastName:   "Müller",
		Department: "Facilities",
		Building:   "Library",
	})

	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.Equal(t, "Anna", store.created[0].FirstName)
	assert.Equal(t, "Muller", store.created[0].LastName)
}

func TestRegisterPersonHandler_UnknownBuilding(t *testing.T) {
	store := newFakeStore()
	buildings := &fakeBuildingRepo{}
	handler := NewRegisterPersonHandler(presence.StoreSet{presence.KindStudent: store}, buildings, nil, nil)

	_, err := handler.Handle(context.Background(), RegisterPersonCommand{
		Kind:       presence.KindStudent,
		Identifier: "s-101",
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Department: "Mathematics",
		Building:   "Atlantis",
	})

	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
	assert.Empty(t, store.created)
}

func TestRegisterPersonHandler_DuplicateIdentifier(t *testing.T) {
	store := newFakeStore()
	store.createErr = shared.ErrPersonAlreadyExists
	buildings := &fakeBuildingRepo{names: []string{"library"}}
	handler := NewRegisterPersonHandler(presence.StoreSet{presence.KindStudent: store}, buildings, nil, nil)

	_, err := handler.Handle(context.Background(), RegisterPersonCommand{
		Kind:       presence.KindStudent,
		Identifier: "s-101",
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Department: "Mathematics",
		Building:   "Library",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
}

func TestRegisterPersonCommand_Validate(t *testing.T) {
	base := RegisterPersonCommand{
		Kind:       presence.KindStudent,
		Identifier: "s-101",
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Department: "Mathematics",
		Building:   "Library",
	}
	assert.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*RegisterPersonCommand)
	}{
		{"invalid kind", func(c *RegisterPersonCommand) { c.Kind = "visitor" }},
		{"blank identifier", func(c *RegisterPersonCommand) { c.Identifier = "   " }},
		{"blank first name", func(c *RegisterPersonCommand) { c.FirstName = "\t" }},
		{"blank last name", func(c *RegisterPersonCommand) { c.LastName = "" }},
		{"blank department", func(c *RegisterPersonCommand) { c.Department = " " }},
		{"blank building", func(c *RegisterPersonCommand) { c.Building = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := base
			tt.mutate(&cmd)
			err := cmd.Validate()
			require.Error(t, err)
			assert.True(t, shared.IsInvalidArgument(err))
		})
	}
}
