package repository

import (
	"context"
	"fmt"

	"github.com/symposium-labs/engage/internal/models"
)

// AchievementRepository handles achievement unlock records.
type AchievementRepository struct {
	db *DB
}

// NewAchievementRepository creates a new achievement repository.
func NewAchievementRepository(db *DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// GetUserAchievements returns a user's unlocks, most recent first.
func (r *AchievementRepository) GetUserAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	var unlocks []models.UserAchievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Find(&unlocks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get achievements for %s: %w", userID, err)
	}
	return unlocks, nil
}

// HoldersCounts returns holder counts for every achievement with at least one holder.
func (r *AchievementRepository) HoldersCounts(ctx context.Context) (map[string]int64, error) {
	type row struct {
		AchievementID string
		Holders       int64
	}

	var rows []row
	err := r.db.WithContext(ctx).Model(&models.UserAchievement{}).
		Select("achievement_id, COUNT(*) AS holders").
		Group("achievement_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count achievement holders: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.AchievementID] = r.Holders
	}
	return counts, nil
}
