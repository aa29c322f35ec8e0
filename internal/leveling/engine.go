package leveling

import "math"

// MaxAwardAmount bounds an explicit award amount accepted from callers.
const MaxAwardAmount = 100_000

// Award is a request to grant XP. Amount, when set, overrides the action table.
type Award struct {
	Action Action
	Amount *int
}

// AwardResult is the outcome of Engine.AwardXP.
type AwardResult struct {
	Stats     Stats `json:"stats"`
	XPAwarded int   `json:"xp_awarded"`
	NewLevel  int   `json:"new_level"`
	LeveledUp bool  `json:"leveled_up"`
	Bonus     int   `json:"bonus"` // level-up bonus added on top of XPAwarded
}

// Engine applies XP awards, counter increments and achievement unlocks.
type Engine struct {
	ranks        *RankTable
	catalog      *Catalog
	levelUpBonus int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRanks replaces the default rank table.
func WithRanks(t *RankTable) Option {
	return func(e *Engine) { e.ranks = t }
}

// WithCatalog replaces the default achievement catalog.
func WithCatalog(c *Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithLevelUpBonus sets the XP granted on level-up.
func WithLevelUpBonus(xp int) Option {
	return func(e *Engine) { e.levelUpBonus = xp }
}

// NewEngine creates an engine with the built-in ranks and catalog unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		ranks:        DefaultRankTable(),
		catalog:      DefaultCatalog(),
		levelUpBonus: ActionReachLevelMilestone.Amount(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ranks returns the rank table.
func (e *Engine) Ranks() *RankTable { return e.ranks }

// Catalog returns the achievement catalog.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// CurrentRank returns the rank for a level.
func (e *Engine) CurrentRank(level int) Rank {
	return e.ranks.Rank(level)
}

// AwardXP grants XP for an action.
//
// A zero resolved amount is a no-op. XP saturates at math.MaxInt. When the award crosses a level boundary
// the level-up bonus is added to XP without re-deriving the level, so a bonus
// that crosses another threshold is only reflected by the next award.
// Achievements are never touched.
func (e *Engine) AwardXP(in Stats, award Award) AwardResult {
	amount := award.Action.Amount()
	if award.Amount != nil {
		amount = *award.Amount
	}

	out := in.Clone()
	if amount <= 0 {
		return AwardResult{Stats: out, NewLevel: out.Level}
	}

	newXP := addXP(in.XP, amount)
	if newXP == in.XP {
		return AwardResult{Stats: out, NewLevel: out.Level}
	}
	amount = newXP - in.XP
	newLevel := LevelForXP(newXP)
	leveledUp := newLevel > in.Level

	res := AwardResult{
		XPAwarded: amount,
		NewLevel:  newLevel,
		LeveledUp: leveledUp,
	}
	if leveledUp {
		withBonus := addXP(newXP, e.levelUpBonus)
		res.Bonus = withBonus - newXP
		newXP = withBonus
	}

	out.XP = newXP
	out.Level = newLevel
	res.Stats = out

	return res
}

// addXP adds a non-negative delta, saturating instead of wrapping.
func addXP(xp, delta int) int {
	if delta > math.MaxInt-xp {
		return math.MaxInt
	}
	return xp + delta
}

// IncrementStat adds delta to a counter and re-evaluates achievements.
// It returns the updated stats and the achievements unlocked by this call.
func (e *Engine) IncrementStat(in Stats, kind StatKind, delta int) (Stats, []Achievement) {
	out := in.Clone()
	out.Counters[kind] += delta
	if out.Counters[kind] < 0 {
		out.Counters[kind] = 0
	}
	return e.evaluate(out)
}

// EvaluateAchievements unlocks every achievement whose requirement is met,
// adds the bonus XP and recomputes the level once. Already-unlocked
// achievements are skipped, so repeated calls are no-ops.
func (e *Engine) EvaluateAchievements(in Stats) (Stats, []Achievement) {
	return e.evaluate(in.Clone())
}

// evaluate mutates s, which must already be a private copy.
func (e *Engine) evaluate(s Stats) (Stats, []Achievement) {
	var unlocked []Achievement
	for _, a := range e.catalog.items {
		if a.Requirement == nil || s.HasAchievement(a.ID) {
			continue
		}
		if !a.Requirement.Satisfied(s) {
			continue
		}
		s.Achievements = append(s.Achievements, a.ID)
		s.XP = addXP(s.XP, a.XP)
		unlocked = append(unlocked, a)
	}
	if len(unlocked) > 0 {
		s.Level = LevelForXP(s.XP)
	}
	return s, unlocked
}

// Grant unlocks an achievement regardless of its requirement. Unknown or
// already-unlocked ids leave the stats unchanged.
func (e *Engine) Grant(in Stats, id string) (Stats, bool) {
	out := in.Clone()
	a, ok := e.catalog.Get(id)
	if !ok || out.HasAchievement(id) {
		return out, false
	}
	out.Achievements = append(out.Achievements, a.ID)
	out.XP = addXP(out.XP, a.XP)
	out.Level = LevelForXP(out.XP)
	return out, true
}
