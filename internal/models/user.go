// Package models defines the persisted domain models for the engagement service.
package models

import (
	"time"
)

// User represents a community member.
type User struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null;size:255" json:"username"`
	DisplayName  string    `gorm:"size:255" json:"display_name"`
	Avatar       string    `gorm:"type:text" json:"avatar,omitempty"`
	MemberNumber int       `gorm:"index" json:"member_number"` // signup ordinal, starts at 1
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// UserStatistics is a user's persisted gamification record.
type UserStatistics struct {
	UserID       string         `gorm:"primaryKey;size:64" json:"user_id"`
	XP           int            `gorm:"not null;default:0;index" json:"xp"`
	Level        int            `gorm:"not null;default:1" json:"level"`
	Achievements []string       `gorm:"type:text;serializer:json" json:"achievements"`
	Counters     map[string]int `gorm:"type:text;serializer:json" json:"counters"`
	MemberNumber int            `gorm:"default:0" json:"member_number"`
	JoinDate     time.Time      `gorm:"not null" json:"join_date"`
	LastLogin    *time.Time     `json:"last_login,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TableName specifies the table name for UserStatistics model.
func (UserStatistics) TableName() string {
	return "user_statistics"
}
