// Package maintenance runs periodic housekeeping jobs against the database.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/adcraft-ai/adcraft/internal/config"
	"github.com/adcraft-ai/adcraft/internal/database"
)

// Scheduler owns the gocron instance and the jobs registered on it.
type Scheduler struct {
	scheduler gocron.Scheduler
	store     database.Store
	cfg       config.TasksConfig
	logger    *slog.Logger
	mu        sync.Mutex
	running   bool
}

// NewScheduler creates the scheduler. Jobs are registered on Start.
func NewScheduler(store database.Store, cfg config.TasksConfig, logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{
		scheduler: s,
		store:     store,
		cfg:       cfg,
		logger:    logger.With("component", "maintenance"),
	}, nil
}

// Start registers the enabled jobs and begins ticking.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	if s.cfg.MaintenanceEnabled {
		_, err := s.scheduler.NewJob(
			gocron.CronJob(s.cfg.MaintenanceSchedule, false),
			gocron.NewTask(func(ctx context.Context) {
				s.logger.Info("Running SQL maintenance")
				start := time.Now()
				if err := s.store.RunSQLMaintenance(ctx); err != nil {
					s.logger.Error("SQL maintenance failed", "error", err)
				}
				s.logger.Info("Finished SQL maintenance", "duration", time.Since(start))
			}, context.Background()),
			gocron.WithName("sql_maintenance"),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule SQL maintenance: %w", err)
		}
		s.logger.Info("Scheduled SQL maintenance", "schedule", s.cfg.MaintenanceSchedule)
	}

	s.scheduler.Start()
	s.running = true
	return nil
}

// Stop shuts the scheduler down, waiting for running jobs to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down scheduler: %w", err)
	}
	return nil
}
