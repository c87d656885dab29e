package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// StartCleanup schedules periodic removal of expired verification codes.
// The returned cron must be stopped on shutdown.
func StartCleanup(schedule string, purger Purger) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		removed, err := purger.PurgeExpired(ctx, time.Now())
		if err != nil {
			log.Printf("[Cleanup] purge verification codes: %v", err)
			return
		}
		if removed > 0 {
			log.Printf("[Cleanup] removed %d expired verification codes", removed)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
