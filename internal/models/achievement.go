package models

import "time"

// UserAchievement records when a user unlocked an achievement.
// The achievement catalog itself lives in code (or a YAML override), not in the database.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        string    `gorm:"size:64;not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID string    `gorm:"size:100;not null;uniqueIndex:idx_user_achievement;index" json:"achievement_id"`
	XP            int       `gorm:"default:0" json:"xp"`
	UnlockedAt    time.Time `gorm:"not null" json:"unlocked_at"`
}

// TableName specifies the table name for UserAchievement model.
func (UserAchievement) TableName() string {
	return "user_achievements"
}
