package gamification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/symposium-labs/engage/internal/leveling"
	"github.com/symposium-labs/engage/internal/models"
	"github.com/symposium-labs/engage/internal/repository"
)

// ErrNoDirectory is returned by RegisterUser when no user directory is configured.
var ErrNoDirectory = errors.New("user directory not configured")

// Unlock is a recorded unlock joined with its catalog entry.
type Unlock struct {
	Achievement leveling.Achievement `json:"achievement"`
	XP          int                  `json:"xp"`
	UnlockedAt  time.Time            `json:"unlocked_at"`
}

// History is a user's most recent ledger entries and daily XP totals.
type History struct {
	Events []models.XPEvent `json:"events"`
	Daily  []models.DailyXP `json:"daily"`
}

// RegisterResult is the outcome of RegisterUser.
type RegisterResult struct {
	User     models.User            `json:"user"`
	Profile  Profile                `json:"profile"`
	Unlocked []leveling.Achievement `json:"unlocked"`
}

// RegisterUser creates or updates a user profile. New users get the next
// member number, which is copied onto a statistics record that does not have
// one yet so that signup-order achievements can unlock.
func (s *Service) RegisterUser(ctx context.Context, user models.User) (RegisterResult, error) {
	if s.users == nil {
		return RegisterResult{}, ErrNoDirectory
	}
	if err := s.users.CreateOrUpdate(ctx, &user); err != nil {
		return RegisterResult{}, fmt.Errorf("failed to save user %s: %w", user.ID, err)
	}

	var (
		updated  leveling.Stats
		unlocked []leveling.Achievement
		leveled  bool
	)
	_, err := s.stats.Update(ctx, user.ID, func(row *models.UserStatistics) (*repository.Changes, error) {
		before := toStats(row)
		current := before.Clone()

		numbered := current.MemberNumber == 0 && user.MemberNumber > 0
		if numbered {
			current.MemberNumber = user.MemberNumber
		}

		updated, unlocked = s.engine.EvaluateAchievements(current)
		if !numbered && len(unlocked) == 0 {
			return nil, repository.ErrUnchanged
		}

		row.MemberNumber = updated.MemberNumber
		leveled = updated.Level > before.Level
		applyStats(row, updated)
		return s.unlockChanges(before, updated, unlocked), nil
	})
	if err != nil {
		return RegisterResult{}, fmt.Errorf("failed to sync statistics for %s: %w", user.ID, err)
	}

	s.afterUnlocks(ctx, user.ID, updated, unlocked, leveled)

	s.log.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Int("member_number", user.MemberNumber).
		Msg("Registered user")

	if unlocked == nil {
		unlocked = []leveling.Achievement{}
	}
	return RegisterResult{
		User:     user,
		Profile:  s.Progress(updated),
		Unlocked: unlocked,
	}, nil
}

// Achievements returns the user's recorded unlocks, most recent first.
// Unlocks of achievements no longer in the catalog keep only their id.
func (s *Service) Achievements(ctx context.Context, userID string) ([]Unlock, error) {
	out := []Unlock{}
	if s.unlocks == nil {
		return out, nil
	}

	rows, err := s.unlocks.GetUserAchievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlocks for %s: %w", userID, err)
	}

	for _, row := range rows {
		a, ok := s.engine.Catalog().Get(row.AchievementID)
		if !ok {
			a = leveling.Achievement{ID: row.AchievementID}
		}
		out = append(out, Unlock{
			Achievement: a,
			XP:          row.XP,
			UnlockedAt:  row.UnlockedAt,
		})
	}
	return out, nil
}

// XPHistory returns up to limit ledger entries and the daily totals of the
// last days calendar days, today included.
func (s *Service) XPHistory(ctx context.Context, userID string, limit, days int) (History, error) {
	out := History{Events: []models.XPEvent{}, Daily: []models.DailyXP{}}
	if s.ledger == nil {
		return out, nil
	}

	events, err := s.ledger.ListByUser(ctx, userID, limit)
	if err != nil {
		return History{}, err
	}
	if events != nil {
		out.Events = events
	}

	if days < 1 {
		days = 1
	}
	y, m, d := s.now().In(s.loc).Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -(days - 1))

	daily, err := s.ledger.GetDailyByRange(ctx, start, end, userID)
	if err != nil {
		return History{}, err
	}
	if daily != nil {
		out.Daily = daily
	}
	return out, nil
}
