package gamification

import (
	"github.com/symposium-labs/engage/internal/leveling"
	"github.com/symposium-labs/engage/internal/models"
)

// toStats copies a persisted row into an engine value.
func toStats(row *models.UserStatistics) leveling.Stats {
	s := leveling.Stats{
		UserID:       row.UserID,
		XP:           row.XP,
		Level:        row.Level,
		Achievements: make([]string, len(row.Achievements)),
		Counters:     make(map[leveling.StatKind]int, len(row.Counters)),
		MemberNumber: row.MemberNumber,
		JoinDate:     row.JoinDate,
	}
	copy(s.Achievements, row.Achievements)
	for k, v := range row.Counters {
		s.Counters[leveling.StatKind(k)] = v
	}
	if row.LastLogin != nil {
		t := *row.LastLogin
		s.LastLogin = &t
	}
	if s.Level < 1 {
		s.Level = leveling.LevelForXP(s.XP)
	}
	return s
}

// applyStats writes engine-owned fields back onto the row.
func applyStats(row *models.UserStatistics, s leveling.Stats) {
	row.XP = s.XP
	row.Level = s.Level
	row.Achievements = make([]string, len(s.Achievements))
	copy(row.Achievements, s.Achievements)
	row.Counters = make(map[string]int, len(s.Counters))
	for k, v := range s.Counters {
		row.Counters[string(k)] = v
	}
	if s.LastLogin != nil {
		t := *s.LastLogin
		row.LastLogin = &t
	}
}
