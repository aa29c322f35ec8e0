// Package leaderboard provides leaderboard and ranking services.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/symposium-labs/engage/internal/leveling"
	"github.com/symposium-labs/engage/internal/models"
	"github.com/symposium-labs/engage/internal/repository"
	"github.com/symposium-labs/engage/pkg/logger"
)

// Periods accepted by the leaderboard.
const (
	PeriodDay     = "day"
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodYear    = "year"
	PeriodAllTime = "all_time"
)

// ErrInvalidPeriod is returned for an unknown period name.
var ErrInvalidPeriod = errors.New("invalid period")

// ErrUserNotRanked is returned when a user has no XP in the requested period.
var ErrUserNotRanked = errors.New("user not found in leaderboard")

// StatsRepository interface for statistics operations.
type StatsRepository interface {
	Get(ctx context.Context, userID string) (*models.UserStatistics, error)
	TopByXP(ctx context.Context, limit int) ([]models.UserStatistics, error)
	CountAhead(ctx context.Context, xp int, userID string) (int64, error)
}

// XPRepository interface for daily rollup operations.
type XPRepository interface {
	TopByPeriod(ctx context.Context, start, end time.Time, limit int) ([]repository.UserXP, error)
}

// UserRepository interface for user operations.
type UserRepository interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
}

// Entry represents a single entry in a leaderboard.
type Entry struct {
	Position         int           `json:"position"`
	UserID           string        `json:"user_id"`
	Username         string        `json:"username"`
	DisplayName      string        `json:"display_name,omitempty"`
	XP               int           `json:"xp"` // XP earned in the period; total XP for all_time
	TotalXP          int           `json:"total_xp"`
	Level            int           `json:"level"`
	Rank             leveling.Rank `json:"rank"`
	AchievementCount int           `json:"achievement_count"`
}

// Service handles leaderboard generation.
type Service struct {
	statsRepo StatsRepository
	xpRepo    XPRepository
	userRepo  UserRepository
	ranks     *leveling.RankTable
	loc       *time.Location
	now       func() time.Time
	log       *logger.Logger
}

// NewService creates a new leaderboard service. Period boundaries are
// calendar days in loc, matching the daily rollup.
func NewService(
	statsRepo StatsRepository,
	xpRepo XPRepository,
	userRepo UserRepository,
	ranks *leveling.RankTable,
	loc *time.Location,
	log *logger.Logger,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if ranks == nil {
		ranks = leveling.DefaultRankTable()
	}
	return &Service{
		statsRepo: statsRepo,
		xpRepo:    xpRepo,
		userRepo:  userRepo,
		ranks:     ranks,
		loc:       loc,
		now:       time.Now,
		log:       log,
	}
}

// ValidPeriod reports whether period is accepted. The empty string means all_time.
func ValidPeriod(period string) bool {
	switch period {
	case "", PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodAllTime:
		return true
	}
	return false
}

// GetGlobalLeaderboard returns the leaderboard for a period. A limit <= 0
// returns every ranked user.
func (s *Service) GetGlobalLeaderboard(ctx context.Context, period string, limit int) ([]Entry, error) {
	if !ValidPeriod(period) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	if period == "" || period == PeriodAllTime {
		return s.allTime(ctx, limit)
	}
	return s.forPeriod(ctx, period, limit)
}

func (s *Service) allTime(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.statsRepo.TopByXP(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, s.entry(i+1, row.XP, &row))
	}
	return s.withProfiles(ctx, entries), nil
}

func (s *Service) forPeriod(ctx context.Context, period string, limit int) ([]Entry, error) {
	start, end := calculatePeriodRange(period, s.now().In(s.loc))

	totals, err := s.xpRepo.TopByPeriod(ctx, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get period totals: %w", err)
	}

	entries := make([]Entry, 0, len(totals))
	for i, t := range totals {
		row, err := s.statsRepo.Get(ctx, t.UserID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				s.log.Warn().Err(err).Str("user_id", t.UserID).Msg("Failed to get user statistics")
			}
			row = nil
		}

		e := s.entry(i+1, t.XP, row)
		e.UserID = t.UserID
		entries = append(entries, e)
	}
	return s.withProfiles(ctx, entries), nil
}

// entry builds an entry from a statistics row. A nil row yields a level 1 entry.
func (s *Service) entry(position, xp int, row *models.UserStatistics) Entry {
	e := Entry{Position: position, XP: xp, Level: 1}
	if row != nil {
		e.UserID = row.UserID
		e.TotalXP = row.XP
		e.Level = row.Level
		e.AchievementCount = len(row.Achievements)
	}
	e.Rank = s.ranks.Rank(e.Level)
	return e
}

// withProfiles fills usernames. Users without a profile keep their id as username.
func (s *Service) withProfiles(ctx context.Context, entries []Entry) []Entry {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get user profiles for leaderboard")
		users = nil
	}

	for i := range entries {
		if u, ok := users[entries[i].UserID]; ok {
			entries[i].Username = u.Username
			entries[i].DisplayName = u.DisplayName
		} else {
			entries[i].Username = entries[i].UserID
		}
	}
	return entries
}

// GetUserRank returns the 1-based position of a user in a period.
func (s *Service) GetUserRank(ctx context.Context, userID, period string) (int, error) {
	if !ValidPeriod(period) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	if period == "" || period == PeriodAllTime {
		row, err := s.statsRepo.Get(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrUserNotRanked
		}
		if err != nil {
			return 0, fmt.Errorf("failed to get user statistics: %w", err)
		}
		ahead, err := s.statsRepo.CountAhead(ctx, row.XP, userID)
		if err != nil {
			return 0, fmt.Errorf("failed to count users ahead: %w", err)
		}
		return int(ahead) + 1, nil
	}

	entries, err := s.GetGlobalLeaderboard(ctx, period, 0)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if e.UserID == userID {
			return e.Position, nil
		}
	}
	return 0, ErrUserNotRanked
}

// calculatePeriodRange returns the first and last calendar day of a period
// ending today. Dates are midnight UTC values carrying the local date, which
// is how the rollup stores them.
func calculatePeriodRange(period string, now time.Time) (startDate, endDate time.Time) {
	endDate = dateOf(now)

	switch period {
	case PeriodDay:
		startDate = endDate
	case PeriodWeek:
		startDate = endDate.AddDate(0, 0, -6)
	case PeriodMonth:
		startDate = endDate.AddDate(0, 0, -29)
	case PeriodYear:
		startDate = endDate.AddDate(0, 0, -364)
	default:
		startDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	return startDate, endDate
}

// dateOf strips the clock from t, keeping its local calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
