package session

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CleanupRecorder receives the number of sessions removed by each run.
type CleanupRecorder interface {
	SessionsCleaned(n int64)
}

// StartCleanup schedules DeleteExpired on the given cron spec (for example
// "@every 1h") and starts the scheduler. Stop the returned cron on shutdown.
func StartCleanup(store Store, schedule string, recorder CleanupRecorder) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		RunCleanup(context.Background(), store, recorder)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

// RunCleanup performs one cleanup pass.
func RunCleanup(ctx context.Context, store Store, recorder CleanupRecorder) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	removed, err := store.DeleteExpired(ctx, time.Now())
	if err != nil {
		logrus.WithError(err).Warn("session cleanup failed")
		return
	}
	if recorder != nil {
		recorder.SessionsCleaned(removed)
	}
	if removed > 0 {
		logrus.WithField("removed", removed).Info("expired sessions removed")
	}
}
