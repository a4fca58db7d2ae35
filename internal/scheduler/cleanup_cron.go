package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/studybuddy-app/backend/internal/repository"
	"github.com/studybuddy-app/backend/internal/services"
)

// StalePendingRequestAge is how long a pending group-join request survives
// before the daily purge drops it.
const StalePendingRequestAge = 30 * 24 * time.Hour

// StartCleanupJobs schedules the periodic maintenance jobs.
func StartCleanupJobs(callService *services.CallService, groupRepo *repository.GroupRepository) {
	c := cron.New()

	// Expired call sessions: the TTL index handles these eventually, this
	// keeps the collection tidy between TTL monitor passes.
	c.AddFunc("@hourly", func() {
		deleted, err := callService.PurgeExpiredCalls(context.Background())
		if err != nil {
			logrus.WithError(err).Error("PurgeExpiredCalls failed")
			return
		}
		if deleted > 0 {
			logrus.Infof("Purged %d expired call sessions", deleted)
		}
	})

	// Stale group-join requests nobody ever acted on.
	c.AddFunc("@daily", func() {
		cutoff := time.Now().Add(-StalePendingRequestAge)
		purged, err := groupRepo.PurgeStalePendingRequests(context.Background(), cutoff)
		if err != nil {
			logrus.WithError(err).Error("PurgeStalePendingRequests failed")
			return
		}
		if purged > 0 {
			logrus.Infof("Purged stale pending requests from %d groups", purged)
		}
	})

	c.Start()
}
