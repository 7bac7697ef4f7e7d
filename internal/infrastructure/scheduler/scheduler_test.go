package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopJob struct {
	name string
}

func (j noopJob) Name() string                  { return j.name }
func (j noopJob) Run(ctx context.Context) error { return nil }

func TestEvery_Next(t *testing.T) {
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, at.Add(time.Hour), Every(time.Hour).Next(at))
}

func TestScheduler_RegisterDuplicate(t *testing.T) {
	s := New(nil, 0)

	require.NoError(t, s.Register(noopJob{name: "sweep"}, Every(time.Hour)))

	err := s.Register(noopJob{name: "sweep"}, Every(time.Minute))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrJobAlreadyExists)
}

func TestScheduler_Lifecycle(t *testing.T) {
	s := New(nil, 0)
	require.NoError(t, s.Register(noopJob{name: "sweep"}, Every(time.Hour)))

	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
}
