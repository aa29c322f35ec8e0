package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/symposium-labs/engage/internal/models"
)

// Changes are extra rows written in the same transaction as a statistics update.
type Changes struct {
	Events  []models.XPEvent
	Unlocks []models.UserAchievement
}

// ErrUnchanged is returned by an UpdateFunc that left the record as it was.
// Update then skips the save and reports success.
var ErrUnchanged = errors.New("statistics unchanged")

// UpdateFunc mutates stats in place. Returning ErrUnchanged skips the save;
// any other error rolls the update back.
type UpdateFunc func(stats *models.UserStatistics) (*Changes, error)

// StatsRepository persists per-user gamification records.
type StatsRepository struct {
	db *DB
}

// NewStatsRepository creates a new statistics repository.
func NewStatsRepository(db *DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Get returns a user's statistics or ErrNotFound.
func (r *StatsRepository) Get(ctx context.Context, userID string) (*models.UserStatistics, error) {
	var stats models.UserStatistics
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&stats).Error; err != nil {
		return nil, notFound(err)
	}
	normalize(&stats)
	return &stats, nil
}

// Load returns a user's statistics, creating a fresh record on first access.
func (r *StatsRepository) Load(ctx context.Context, userID string) (*models.UserStatistics, error) {
	stats, err := r.Get(ctx, userID)
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to load statistics for %s: %w", userID, err)
	}

	var created *models.UserStatistics
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := lockOrCreate(tx, userID)
		created = s
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create statistics for %s: %w", userID, err)
	}
	return created, nil
}

// Update runs fn on the user's statistics inside a transaction holding the
// row lock, then saves the record together with the returned changes.
// Updates for the same user are serialised.
func (r *StatsRepository) Update(ctx context.Context, userID string, fn UpdateFunc) (*models.UserStatistics, error) {
	var result *models.UserStatistics

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stats, err := lockOrCreate(tx, userID)
		if err != nil {
			return err
		}

		changes, err := fn(stats)
		if errors.Is(err, ErrUnchanged) {
			result = stats
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Save(stats).Error; err != nil {
			return fmt.Errorf("failed to save statistics: %w", err)
		}

		if changes != nil {
			if len(changes.Events) > 0 {
				if err := tx.Create(&changes.Events).Error; err != nil {
					return fmt.Errorf("failed to append xp events: %w", err)
				}
			}
			if len(changes.Unlocks) > 0 {
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&changes.Unlocks).Error; err != nil {
					return fmt.Errorf("failed to record achievement unlocks: %w", err)
				}
			}
		}

		result = stats
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockOrCreate selects the row FOR UPDATE, inserting a fresh one first if needed.
func lockOrCreate(tx *gorm.DB, userID string) (*models.UserStatistics, error) {
	var stats models.UserStatistics
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&stats).Error
	if err == nil {
		normalize(&stats)
		return &stats, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to lock statistics: %w", err)
	}

	fresh := models.UserStatistics{
		UserID:       userID,
		Level:        1,
		Achievements: []string{},
		Counters:     map[string]int{},
		JoinDate:     time.Now().UTC(),
	}

	var user models.User
	if err := tx.Where("id = ?", userID).First(&user).Error; err == nil {
		fresh.JoinDate = user.CreatedAt
		fresh.MemberNumber = user.MemberNumber
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// A concurrent creator may win; DoNothing then re-select picks up its row.
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
		return nil, fmt.Errorf("failed to create statistics: %w", err)
	}

	stats = models.UserStatistics{}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&stats).Error; err != nil {
		return nil, fmt.Errorf("failed to lock statistics: %w", err)
	}
	normalize(&stats)
	return &stats, nil
}

func normalize(s *models.UserStatistics) {
	if s.Achievements == nil {
		s.Achievements = []string{}
	}
	if s.Counters == nil {
		s.Counters = map[string]int{}
	}
}

// ListUserIDs returns every user with a statistics record.
func (r *StatsRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.UserStatistics{}).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list statistics: %w", err)
	}
	return ids, nil
}

// TopByXP returns the statistics records with the most XP, ties broken by user id.
// A limit <= 0 returns every record.
func (r *StatsRepository) TopByXP(ctx context.Context, limit int) ([]models.UserStatistics, error) {
	query := r.db.WithContext(ctx).Order("xp DESC").Order("user_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var out []models.UserStatistics
	if err := query.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to load top statistics: %w", err)
	}
	for i := range out {
		normalize(&out[i])
	}
	return out, nil
}

// CountAhead returns how many users rank strictly ahead of the given XP total
// and user id under the TopByXP ordering.
func (r *StatsRepository) CountAhead(ctx context.Context, xp int, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserStatistics{}).
		Where("xp > ? OR (xp = ? AND user_id < ?)", xp, xp, userID).
		Count(&count).Error
	return count, err
}
