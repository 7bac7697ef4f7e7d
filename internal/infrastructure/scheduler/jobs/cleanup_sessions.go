// Package jobs contains the concrete background jobs.
package jobs

import (
	"context"
	"time"

	"github.com/campus-hub/campus-presence/internal/domain/session"
	"github.com/campus-hub/campus-presence/pkg/logger"
)

// CleanupSessions purges expired sessions from the database. Expired
// sessions are also deleted lazily on validation; this job catches the ones
// whose owners never came back.
type CleanupSessions struct {
	sessions session.Repository
	logger   *logger.Logger
}

// NewCleanupSessions creates the job.
func NewCleanupSessions(sessions session.Repository, log *logger.Logger) *CleanupSessions {
	if log == nil {
		log = logger.Default()
	}
	return &CleanupSessions{
		sessions: sessions,
		logger:   log.With(logger.Component("cleanup_sessions")),
	}
}

// Name implements scheduler.Job.
func (j *CleanupSessions) Name() string {
	return "cleanup_sessions"
}

// Run implements scheduler.Job.
func (j *CleanupSessions) Run(ctx context.Context) error {
	deleted, err := j.sessions.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return err
	}

	if deleted > 0 {
		j.logger.Info("expired sessions purged", logger.Int64("deleted", deleted))
	}
	return nil
}
