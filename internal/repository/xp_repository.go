package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/symposium-labs/engage/internal/models"
)

// UserXP is a per-user XP total over some window.
type UserXP struct {
	UserID string
	XP     int
	Events int
}

// XPRepository handles the XP ledger and its daily rollups.
type XPRepository struct {
	db *DB
}

// NewXPRepository creates a new XP repository.
func NewXPRepository(db *DB) *XPRepository {
	return &XPRepository{db: db}
}

// Create appends a ledger entry.
func (r *XPRepository) Create(ctx context.Context, event *models.XPEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create xp event: %w", err)
	}
	return nil
}

// ListByUser returns a user's most recent ledger entries, newest first.
func (r *XPRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.XPEvent, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var events []models.XPEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list xp events for %s: %w", userID, err)
	}
	return events, nil
}

// SumByUserBetween totals the ledger per user for events in [start, end).
func (r *XPRepository) SumByUserBetween(ctx context.Context, start, end time.Time) ([]UserXP, error) {
	var results []UserXP
	err := r.db.WithContext(ctx).Model(&models.XPEvent{}).
		Select("user_id, SUM(amount) AS xp, COUNT(*) AS events").
		Where("created_at >= ? AND created_at < ?", start, end).
		Group("user_id").
		Order("user_id ASC").
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum xp events: %w", err)
	}
	return results, nil
}

// UpsertDaily creates or updates a daily rollup row. This keeps daily aggregation idempotent.
func (r *XPRepository) UpsertDaily(ctx context.Context, daily *models.DailyXP) error {
	var existing models.DailyXP
	err := r.db.WithContext(ctx).
		Where("date = ? AND user_id = ?", daily.Date, daily.UserID).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.db.WithContext(ctx).Create(daily).Error; err != nil {
			return fmt.Errorf("failed to create daily xp: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up daily xp: %w", err)
	}

	daily.ID = existing.ID
	daily.CreatedAt = existing.CreatedAt
	if err := r.db.WithContext(ctx).Save(daily).Error; err != nil {
		return fmt.Errorf("failed to update daily xp: %w", err)
	}
	return nil
}

// GetDailyByRange returns rollup rows with dates in [start, end], optionally for one user.
func (r *XPRepository) GetDailyByRange(ctx context.Context, start, end time.Time, userID string) ([]models.DailyXP, error) {
	query := r.db.WithContext(ctx).Where("date BETWEEN ? AND ?", start, end)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var rows []models.DailyXP
	if err := query.Order("date DESC").Order("user_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get daily xp: %w", err)
	}
	return rows, nil
}

// TopByPeriod ranks users by summed daily XP for dates in [start, end].
// Ties are broken by user id. A limit <= 0 returns every user.
func (r *XPRepository) TopByPeriod(ctx context.Context, start, end time.Time, limit int) ([]UserXP, error) {
	query := r.db.WithContext(ctx).Model(&models.DailyXP{}).
		Select("user_id, SUM(xp) AS xp, SUM(events) AS events").
		Where("date BETWEEN ? AND ?", start, end).
		Group("user_id").
		Order("xp DESC").
		Order("user_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var results []UserXP
	if err := query.Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to rank daily xp: %w", err)
	}
	return results, nil
}
