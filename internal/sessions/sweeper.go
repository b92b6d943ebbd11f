package sessions

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper periodically discards state stores whose sessions have gone idle.
type Sweeper struct {
	registry *Registry
	maxIdle  time.Duration
	schedule string

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

func NewSweeper(registry *Registry, maxIdle time.Duration, schedule string) *Sweeper {
	return &Sweeper{
		registry: registry,
		maxIdle:  maxIdle,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start schedules the sweep job. Calling it twice is a no-op.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce() }); err != nil {
		return fmt.Errorf("invalid sweep schedule '%s': %w", s.schedule, err)
	}

	s.cron.Start()
	s.isRunning = true
	logrus.WithFields(logrus.Fields{
		"schedule": s.schedule,
		"max_idle": s.maxIdle.String(),
	}).Info("session sweeper: started")
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	logrus.Info("session sweeper: stopped")
}

// RunOnce sweeps idle stores immediately and returns how many were removed.
func (s *Sweeper) RunOnce() int {
	removed := s.registry.Sweep(s.maxIdle)
	if removed > 0 {
		logrus.WithFields(logrus.Fields{
			"removed":   removed,
			"remaining": s.registry.Len(),
		}).Info("session sweeper: discarded idle state stores")
	}
	return removed
}
