package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"nemostore/config"
	"nemostore/scraper"
)

// Scheduler re-runs the full collection on a cron expression or fixed
// interval. Runs never overlap: collection is strictly sequential, and a
// tick that fires while a run is in progress is skipped.
type Scheduler struct {
	cfg          *config.Config
	orchestrator *scraper.Orchestrator
	cron         *cron.Cron
	ticker       *time.Ticker
	stopCh       chan struct{}
	running      chan struct{}
}

func New(cfg *config.Config, orchestrator *scraper.Orchestrator) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		orchestrator: orchestrator,
		cron:         cron.New(),
		stopCh:       make(chan struct{}),
		running:      make(chan struct{}, 1),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	switch {
	case s.cfg.Scheduler.Cron != "":
		log.Printf("Scheduler: cron %q", s.cfg.Scheduler.Cron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.Cron, func() {
			s.runAll(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	case s.cfg.Scheduler.Interval > 0:
		log.Printf("Scheduler: interval %s", s.cfg.Scheduler.Interval)
		s.ticker = time.NewTicker(s.cfg.Scheduler.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.runAll(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	default:
		log.Println("Scheduler: no schedule configured, running once now")
		go s.runAll(ctx)
	}

	return nil
}

func (s *Scheduler) runAll(ctx context.Context) {
	select {
	case s.running <- struct{}{}:
	default:
		log.Println("Scheduler: previous collection still running, skipping tick")
		return
	}
	defer func() { <-s.running }()

	s.orchestrator.RunAll(ctx)
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
