// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartRefreshScheduler rebuilds the leaderboard every minute.
func (s *LeaderboardService) StartRefreshScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			if err := s.Refresh(); err != nil {
				log.Printf("[Scheduler] leaderboard refresh failed: %v", err)
			}
		}),
	)
}
