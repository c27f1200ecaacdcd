package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/4propertygraphs/PDL4/config"
	"github.com/4propertygraphs/PDL4/services"
	"github.com/4propertygraphs/PDL4/storage"
)

// Scheduler drives recurring import runs, either on a cron expression or a
// fixed interval.
type Scheduler struct {
	cfg      *config.Config
	importer *services.Importer
	activity storage.ActivityStore
	cron     *cron.Cron
	ticker   *time.Ticker
	stopCh   chan struct{}
}

func New(cfg *config.Config, importer *services.Importer, activity storage.ActivityStore) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		importer: importer,
		activity: activity,
		cron:     cron.New(),
		stopCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	run := func() {
		if err := s.importer.Run(ctx, services.ImportScope{}); err != nil {
			log.Printf("Scheduled import error: %v", err)
		}
	}

	if s.cfg.ImportCron != "" {
		log.Printf("Starting scheduler with cron: %s", s.cfg.ImportCron)
		if _, err := s.cron.AddFunc(s.cfg.ImportCron, run); err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
		return nil
	}

	if s.cfg.ImportInterval <= 0 {
		log.Println("No schedule configured, imports must be run manually")
		return nil
	}

	log.Printf("Starting scheduler with interval: %s", s.cfg.ImportInterval)
	s.ticker = time.NewTicker(s.cfg.ImportInterval)
	go func() {
		for {
			select {
			case <-s.ticker.C:
				run()
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

// Countdown reports the time remaining until the next interval-driven run,
// measured from the latest recorded activity. Zero when a run is due or
// nothing has ever run.
func (s *Scheduler) Countdown(ctx context.Context) (time.Duration, error) {
	last, err := s.activity.LatestActivity(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	ref := last.FinishedAt
	if ref.IsZero() {
		ref = last.StartedAt
	}
	remaining := s.cfg.ImportInterval - time.Since(ref)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
