// services/scheduler.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler runs the periodic upkeep jobs: the daily quest rollover at
// midnight in the game timezone and, when a source is set, catalog refresh.
type Scheduler struct {
	Assignments    *AssignmentService
	Catalog        *CatalogService
	CatalogSource  CatalogSource
	CatalogRefresh time.Duration
	Location       *time.Location

	sched gocron.Scheduler
}

func (s *Scheduler) Start(ctx context.Context) error {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	sched, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
		gocron.NewTask(func() {
			if _, err := s.Assignments.RolloverDay(ctx); err != nil {
				log.Printf("❌ [Scheduler] rollover failed: %v", err)
			}
		}),
		gocron.WithName("daily-rollover"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule rollover: %w", err)
	}

	if s.CatalogSource != nil && s.CatalogRefresh > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(s.CatalogRefresh),
			gocron.NewTask(func() {
				if _, err := s.Catalog.RefreshCatalog(ctx, s.CatalogSource); err != nil {
					log.Printf("❌ [Scheduler] catalog refresh failed: %v", err)
				}
			}),
			gocron.WithName("catalog-refresh"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("schedule catalog refresh: %w", err)
		}
	}

	s.sched = sched
	sched.Start()
	log.Printf("⏰ [Scheduler] started (%d job(s), tz=%s)", len(sched.Jobs()), loc)
	return nil
}

func (s *Scheduler) Stop() {
	if s.sched == nil {
		return
	}
	if err := s.sched.Shutdown(); err != nil {
		log.Printf("⚠️ [Scheduler] shutdown: %v", err)
	}
	s.sched = nil
}
