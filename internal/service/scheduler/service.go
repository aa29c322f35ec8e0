// Package scheduler runs the periodic XP rollup and achievement sweep.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/symposium-labs/engage/internal/config"
	prommetrics "github.com/symposium-labs/engage/internal/metrics"
	"github.com/symposium-labs/engage/pkg/logger"
)

// Job names, used as metric labels.
const (
	JobRollup            = "rollup"
	JobAchievementSweep  = "achievement_sweep"
	JobNotificationSweep = "notification_sweep"
)

// notificationSweepSchedule prunes expired notifications of idle users.
const notificationSweepSchedule = "@every 1m"

// Rollup re-aggregates recent ledger days.
type Rollup interface {
	AggregateRecent(ctx context.Context) error
}

// AchievementSweeper unlocks achievements satisfied by existing statistics.
type AchievementSweeper interface {
	EvaluateAll(ctx context.Context) (int, error)
}

// Service handles background job scheduling.
type Service struct {
	config  *config.SchedulerConfig
	rollup  Rollup
	sweeper AchievementSweeper
	feed    FeedSweeper
	log     *logger.Logger
	cron    *cron.Cron
}

// NewService creates a new scheduler service. sweeper and feed may be nil.
func NewService(
	cfg *config.SchedulerConfig,
	rollup Rollup,
	sweeper AchievementSweeper,
	feed FeedSweeper,
	log *logger.Logger,
) *Service {
	return &Service{
		config:  cfg,
		rollup:  rollup,
		sweeper: sweeper,
		feed:    feed,
		log:     log,
	}
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := s.config.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	if err := s.register(JobRollup, s.config.RollupTime, s.runRollup); err != nil {
		return err
	}

	if s.config.AchievementSweepTime != "" && s.sweeper != nil {
		if err := s.register(JobAchievementSweep, s.config.AchievementSweepTime, s.runAchievementSweep); err != nil {
			return err
		}
	}

	if s.feed != nil {
		if err := s.register(JobNotificationSweep, notificationSweepSchedule, s.runNotificationSweep); err != nil {
			return err
		}
	}

	s.cron.Start()

	entries := s.cron.Entries()
	nextRun := ""
	if len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}

	s.log.Info().
		Str("rollup_schedule", s.config.RollupTime).
		Str("timezone", s.config.Timezone).
		Int("jobs", len(entries)).
		Str("next_run", nextRun).
		Msg("Scheduler started successfully")

	return nil
}

// Stop gracefully shuts down the scheduler, waiting for running jobs.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

func (s *Service) register(job, spec string, run func(context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.runJob(context.Background(), job, run)
	})
	if err != nil {
		return fmt.Errorf("failed to register %s job: %w", job, err)
	}

	s.log.Debug().Str("job", job).Str("schedule", spec).Msg("Scheduler job registered")
	return nil
}

// runJob executes one job and records its outcome.
func (s *Service) runJob(ctx context.Context, job string, run func(context.Context) error) {
	start := time.Now()

	defer func() {
		prommetrics.ObserveSchedulerJobDuration(job, time.Since(start).Seconds())
		prommetrics.SetSchedulerLastRun(job)
	}()

	if err := run(ctx); err != nil {
		s.log.Error().
			Err(err).
			Str("job", job).
			Dur("duration", time.Since(start)).
			Msg("Scheduler job failed")
		prommetrics.RecordSchedulerJobRun(job, "error")
		return
	}

	prommetrics.RecordSchedulerJobRun(job, "success")
	s.log.Debug().
		Str("job", job).
		Dur("duration", time.Since(start)).
		Msg("Scheduler job completed")
}

func (s *Service) runRollup(ctx context.Context) error {
	return s.rollup.AggregateRecent(ctx)
}

func (s *Service) runAchievementSweep(ctx context.Context) error {
	unlocked, err := s.sweeper.EvaluateAll(ctx)
	if err != nil {
		return err
	}

	s.log.Info().
		Int("achievements_unlocked", unlocked).
		Msg("Achievement sweep completed")
	return nil
}
