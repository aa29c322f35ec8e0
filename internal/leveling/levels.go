// Package leveling implements XP accounting, level and rank derivation, and
// achievement unlocking for a single user's statistics record.
//
// Everything in this package is pure: functions take a Stats value, return a
// new one, and never touch storage. Persistence and per-user atomicity are the
// caller's job (see internal/service/gamification).
package leveling

// thresholds[i] is the minimum cumulative XP for level i+1.
var thresholds = [...]int{
	0, 100, 250, 500, 850, 1300, 1850, 2500, 3250, 4100,
	5050, 6100, 7250, 8500, 9850, 11300, 12850, 14500, 16250, 18100,
	20050, 22100, 24250, 26500, 28850, 31300, 33850, 36500, 39250, 42100,
	45050, 48100, 51250, 54500, 57850, 61300, 64850, 68500, 72250, 76100,
	80050, 84100, 88250, 92500, 96850, 101300, 105850, 110500, 115250, 120100,
}

// MaxLevel is the highest representable level.
const MaxLevel = len(thresholds)

// Thresholds returns a copy of the level threshold table.
func Thresholds() []int {
	out := make([]int, len(thresholds))
	copy(out, thresholds[:])
	return out
}

// LevelForXP returns the level reached with the given cumulative XP.
func LevelForXP(xp int) int {
	for i := len(thresholds) - 1; i >= 0; i-- {
		if xp >= thresholds[i] {
			return i + 1
		}
	}
	return 1
}

// XPRequiredForNextLevel returns the cumulative XP needed to reach level+1.
// Levels at or past the cap return the last threshold.
func XPRequiredForNextLevel(level int) int {
	if level < 0 {
		level = 0
	}
	if level >= len(thresholds) {
		return thresholds[len(thresholds)-1]
	}
	return thresholds[level]
}

// LevelProgress describes how far a user is into their current level.
type LevelProgress struct {
	Level   int     `json:"level"`
	Current int     `json:"current"` // XP earned inside the current level
	Needed  int     `json:"needed"`  // XP span of the current level
	Percent float64 `json:"percent"`
	NextAt  int     `json:"next_at"`
}

// Progress computes level progress for the given XP total.
func Progress(xp int) LevelProgress {
	level := LevelForXP(xp)
	base := thresholds[level-1]
	next := XPRequiredForNextLevel(level)

	p := LevelProgress{
		Level:   level,
		Current: xp - base,
		Needed:  next - base,
		NextAt:  next,
	}
	if level >= MaxLevel || p.Needed <= 0 {
		p.Percent = 100
		return p
	}

	p.Percent = float64(p.Current) / float64(p.Needed) * 100
	if p.Percent > 100 {
		p.Percent = 100
	}
	return p
}
