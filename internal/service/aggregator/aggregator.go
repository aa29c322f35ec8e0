// Package aggregator rolls the XP ledger up into per-day totals.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/symposium-labs/engage/internal/models"
	"github.com/symposium-labs/engage/internal/repository"
	"github.com/symposium-labs/engage/pkg/logger"
)

// Service aggregates the XP ledger into daily_xp rows.
type Service struct {
	xpRepo *repository.XPRepository
	loc    *time.Location
	now    func() time.Time
	log    *logger.Logger
}

// NewService creates a new aggregator service. Calendar days are taken in loc.
func NewService(xpRepo *repository.XPRepository, loc *time.Location, log *logger.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		xpRepo: xpRepo,
		loc:    loc,
		now:    time.Now,
		log:    log,
	}
}

// AggregateDaily totals the ledger per user for the calendar day of date and
// upserts one daily_xp row per user. Running it again for the same day
// overwrites the rows with fresh totals.
func (s *Service) AggregateDaily(ctx context.Context, date time.Time) error {
	y, m, d := date.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	endOfDay := startOfDay.AddDate(0, 0, 1)
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	s.log.Debug().
		Str("date", day.Format(time.DateOnly)).
		Msg("Starting daily XP aggregation")

	// The ledger stores UTC timestamps.
	totals, err := s.xpRepo.SumByUserBetween(ctx, startOfDay.UTC(), endOfDay.UTC())
	if err != nil {
		return fmt.Errorf("failed to sum xp ledger: %w", err)
	}

	if len(totals) == 0 {
		s.log.Debug().Str("date", day.Format(time.DateOnly)).Msg("No XP events found for date")
		return nil
	}

	var failed int
	for _, t := range totals {
		row := &models.DailyXP{
			Date:   day,
			UserID: t.UserID,
			XP:     t.XP,
			Events: t.Events,
		}
		if err := s.xpRepo.UpsertDaily(ctx, row); err != nil {
			s.log.Error().
				Err(err).
				Str("user_id", t.UserID).
				Msg("Failed to save daily XP")
			failed++
			continue
		}
	}

	s.log.Info().
		Str("date", day.Format(time.DateOnly)).
		Int("users", len(totals)).
		Int("failed", failed).
		Msg("Daily XP aggregation completed")

	if failed > 0 {
		return fmt.Errorf("failed to save daily xp for %d of %d users", failed, len(totals))
	}
	return nil
}

// AggregateRecent re-aggregates yesterday and today.
func (s *Service) AggregateRecent(ctx context.Context) error {
	today := s.now().In(s.loc)
	yesterday := today.AddDate(0, 0, -1)

	return errors.Join(
		s.AggregateDaily(ctx, yesterday),
		s.AggregateDaily(ctx, today),
	)
}
