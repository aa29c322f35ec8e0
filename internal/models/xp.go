package models

import (
	"time"
)

// XPEvent is one entry of the XP ledger.
type XPEvent struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:64;not null;index:idx_xp_events_user_created" json:"user_id"`
	Action      string    `gorm:"size:64;not null" json:"action"`
	Amount      int       `gorm:"not null" json:"amount"`
	Source      string    `gorm:"size:32" json:"source"` // "award", "level_bonus", "achievement"
	Reference   string    `gorm:"size:100" json:"reference,omitempty"`
	LevelBefore int       `json:"level_before"`
	LevelAfter  int       `json:"level_after"`
	CreatedAt   time.Time `gorm:"not null;index;index:idx_xp_events_user_created" json:"created_at"`
}

// TableName specifies the table name for XPEvent model.
func (XPEvent) TableName() string {
	return "xp_events"
}

// XP ledger sources.
const (
	XPSourceAward       = "award"
	XPSourceLevelBonus  = "level_bonus"
	XPSourceAchievement = "achievement"
)

// DailyXP is the per-user rollup of the XP ledger for one calendar day.
type DailyXP struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:idx_daily_xp_date_user" json:"date"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_daily_xp_date_user;index" json:"user_id"`
	XP        int       `gorm:"default:0" json:"xp"`
	Events    int       `gorm:"default:0" json:"events"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for DailyXP model.
func (DailyXP) TableName() string {
	return "daily_xp"
}
