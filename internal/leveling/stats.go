package leveling

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownStat is returned by ParseStat for names outside the known counters.
var ErrUnknownStat = errors.New("unknown stat")

// StatKind names a per-user activity counter.
type StatKind string

// Known counters.
const (
	StatPostsCreated     StatKind = "posts_created"
	StatCommentsMade     StatKind = "comments_made"
	StatReactionsGiven   StatKind = "reactions_given"
	StatPostsShared      StatKind = "posts_shared"
	StatPapersUploaded   StatKind = "papers_uploaded"
	StatCoursesCreated   StatKind = "courses_created"
	StatCoursesEnrolled  StatKind = "courses_enrolled"
	StatCoursesCompleted StatKind = "courses_completed"
	StatLessonsCompleted StatKind = "lessons_completed"
	StatMessagesSent     StatKind = "messages_sent"
	StatLoginStreak      StatKind = "login_streak"
)

var knownStats = []StatKind{
	StatPostsCreated,
	StatCommentsMade,
	StatReactionsGiven,
	StatPostsShared,
	StatPapersUploaded,
	StatCoursesCreated,
	StatCoursesEnrolled,
	StatCoursesCompleted,
	StatLessonsCompleted,
	StatMessagesSent,
	StatLoginStreak,
}

// ParseStat validates a counter name.
func ParseStat(name string) (StatKind, error) {
	for _, k := range knownStats {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStat, name)
}

// StatKinds returns the known counters.
func StatKinds() []StatKind {
	out := make([]StatKind, len(knownStats))
	copy(out, knownStats)
	return out
}

// Stats is one user's gamification record.
type Stats struct {
	UserID       string           `json:"user_id"`
	XP           int              `json:"xp"`
	Level        int              `json:"level"`
	Achievements []string         `json:"achievements"`
	Counters     map[StatKind]int `json:"counters"`
	MemberNumber int              `json:"member_number,omitempty"` // signup ordinal, 0 when unknown
	JoinDate     time.Time        `json:"join_date"`
	LastLogin    *time.Time       `json:"last_login,omitempty"`
}

// NewStats returns a fresh record: no XP, level 1, zero counters.
func NewStats(userID string, joined time.Time) Stats {
	return Stats{
		UserID:       userID,
		Level:        1,
		Achievements: []string{},
		Counters:     map[StatKind]int{},
		JoinDate:     joined,
	}
}

// Clone returns a deep copy so callers never share slices or maps.
func (s Stats) Clone() Stats {
	out := s
	out.Achievements = make([]string, len(s.Achievements))
	copy(out.Achievements, s.Achievements)
	out.Counters = make(map[StatKind]int, len(s.Counters))
	for k, v := range s.Counters {
		out.Counters[k] = v
	}
	if s.LastLogin != nil {
		t := *s.LastLogin
		out.LastLogin = &t
	}
	return out
}

// Counter returns the counter value, 0 when absent.
func (s Stats) Counter(kind StatKind) int {
	return s.Counters[kind]
}

// HasAchievement reports whether the achievement is unlocked.
func (s Stats) HasAchievement(id string) bool {
	for _, a := range s.Achievements {
		if a == id {
			return true
		}
	}
	return false
}
