// Package gamification applies the leveling engine to persisted user statistics.
package gamification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/symposium-labs/engage/internal/leveling"
	prommetrics "github.com/symposium-labs/engage/internal/metrics"
	"github.com/symposium-labs/engage/internal/models"
	"github.com/symposium-labs/engage/internal/notify"
	"github.com/symposium-labs/engage/internal/repository"
	"github.com/symposium-labs/engage/pkg/logger"
)

// achievementAction is the ledger action recorded for achievement bonus XP.
const achievementAction = "ACHIEVEMENT"

// StatsStore interface for statistics persistence.
type StatsStore interface {
	Load(ctx context.Context, userID string) (*models.UserStatistics, error)
	Update(ctx context.Context, userID string, fn repository.UpdateFunc) (*models.UserStatistics, error)
	ListUserIDs(ctx context.Context) ([]string, error)
}

// UserDirectory interface for user profiles.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	CreateOrUpdate(ctx context.Context, user *models.User) error
}

// UnlockHistory interface for recorded achievement unlocks.
type UnlockHistory interface {
	GetUserAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error)
}

// Ledger interface for reading XP history.
type Ledger interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]models.XPEvent, error)
	GetDailyByRange(ctx context.Context, start, end time.Time, userID string) ([]models.DailyXP, error)
}

// HolderCounter interface for achievement holder counts.
type HolderCounter interface {
	HoldersCounts(ctx context.Context) (map[string]int64, error)
}

// Announcer publishes level-ups and unlocks to a chat channel.
type Announcer interface {
	AnnounceLevelUp(ctx context.Context, username string, level int, rank leveling.Rank) error
	AnnounceAchievement(ctx context.Context, username string, a leveling.Achievement) error
}

// NotificationFeed keeps the transient "+N XP" notifications.
type NotificationFeed interface {
	XPAwarded(userID string, action leveling.Action, amount int)
	Recent(userID string) []notify.Notification
}

// Profile is a user's statistics with derived progress and rank.
type Profile struct {
	Stats    leveling.Stats         `json:"stats"`
	Progress leveling.LevelProgress `json:"progress"`
	Rank     leveling.Rank          `json:"rank"`
}

// StatResult is the outcome of a counter increment.
type StatResult struct {
	Stats     leveling.Stats         `json:"stats"`
	Unlocked  []leveling.Achievement `json:"unlocked"`
	LeveledUp bool                   `json:"leveled_up"`
}

// LoginResult is the outcome of recording a login.
type LoginResult struct {
	Stats         leveling.Stats         `json:"stats"`
	Streak        int                    `json:"streak"`
	FirstToday    bool                   `json:"first_today"`
	XPAwarded     int                    `json:"xp_awarded"`
	LeveledUp     bool                   `json:"leveled_up"`
	Unlocked      []leveling.Achievement `json:"unlocked"`
	PreviousLogin *time.Time             `json:"previous_login,omitempty"`
}

// Service handles XP awards, counters and achievements.
type Service struct {
	engine   *leveling.Engine
	stats    StatsStore
	users    UserDirectory
	holders  HolderCounter
	unlocks  UnlockHistory
	ledger   Ledger
	announce Announcer
	feed     NotificationFeed
	loc      *time.Location
	now      func() time.Time
	log      *logger.Logger
}

// Option configures optional collaborators.
type Option func(*Service)

// WithAnnouncer posts level-ups and unlocks to chat.
func WithAnnouncer(a Announcer) Option {
	return func(s *Service) { s.announce = a }
}

// WithFeed pushes XP notifications after each committed award.
func WithFeed(f NotificationFeed) Option {
	return func(s *Service) { s.feed = f }
}

// WithHolderCounter refreshes holder gauges after sweeps.
func WithHolderCounter(h HolderCounter) Option {
	return func(s *Service) { s.holders = h }
}

// WithUnlockHistory serves recorded unlocks.
func WithUnlockHistory(h UnlockHistory) Option {
	return func(s *Service) { s.unlocks = h }
}

// WithLedger serves XP history.
func WithLedger(l Ledger) Option {
	return func(s *Service) { s.ledger = l }
}

// WithLocation sets the timezone used to decide calendar days for login
// streaks and XP history.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewService creates a new gamification service.
func NewService(engine *leveling.Engine, stats StatsStore, users UserDirectory, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		engine: engine,
		stats:  stats,
		users:  users,
		loc:    time.UTC,
		now:    time.Now,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecentNotifications returns the user's unexpired XP notifications.
func (s *Service) RecentNotifications(userID string) []notify.Notification {
	if s.feed == nil {
		return []notify.Notification{}
	}
	return s.feed.Recent(userID)
}

// Catalog returns the achievement catalog.
func (s *Service) Catalog() *leveling.Catalog { return s.engine.Catalog() }

// Ranks returns the rank table.
func (s *Service) Ranks() *leveling.RankTable { return s.engine.Ranks() }

// Progress derives level progress and rank for stats.
func (s *Service) Progress(stats leveling.Stats) Profile {
	return Profile{
		Stats:    stats,
		Progress: leveling.Progress(stats.XP),
		Rank:     s.engine.CurrentRank(stats.Level),
	}
}

// GetStats returns a user's profile, creating a fresh record on first access.
func (s *Service) GetStats(ctx context.Context, userID string) (Profile, error) {
	row, err := s.stats.Load(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to load stats: %w", err)
	}
	return s.Progress(toStats(row)), nil
}

// AwardXP grants XP for an action and persists the result with its ledger entries.
func (s *Service) AwardXP(ctx context.Context, userID string, award leveling.Award) (leveling.AwardResult, error) {
	var res leveling.AwardResult

	_, err := s.stats.Update(ctx, userID, func(row *models.UserStatistics) (*repository.Changes, error) {
		before := toStats(row)
		res = s.engine.AwardXP(before, award)
		if res.XPAwarded == 0 {
			return nil, repository.ErrUnchanged
		}
		applyStats(row, res.Stats)
		return &repository.Changes{Events: s.awardEvents(before, award.Action, res)}, nil
	})
	if err != nil {
		return leveling.AwardResult{}, fmt.Errorf("failed to award xp: %w", err)
	}

	if res.XPAwarded == 0 {
		prommetrics.RecordXPAwardSkipped(award.Action.String())
		s.log.Debug().Str("user_id", userID).Str("action", award.Action.String()).Msg("Skipped zero XP award")
		return res, nil
	}

	s.afterAward(ctx, userID, award.Action, res)
	return res, nil
}

// IncrementStat adds delta to a counter and unlocks any achievements it satisfies.
func (s *Service) IncrementStat(ctx context.Context, userID string, kind leveling.StatKind, delta int) (StatResult, error) {
	var out StatResult

	_, err := s.stats.Update(ctx, userID, func(row *models.UserStatistics) (*repository.Changes, error) {
		before := toStats(row)
		updated, unlocked := s.engine.IncrementStat(before, kind, delta)
		applyStats(row, updated)

		out = StatResult{
			Stats:     updated,
			Unlocked:  unlocked,
			LeveledUp: updated.Level > before.Level,
		}
		return s.unlockChanges(before, updated, unlocked), nil
	})
	if err != nil {
		return StatResult{}, fmt.Errorf("failed to increment %s: %w", kind, err)
	}

	s.afterUnlocks(ctx, userID, out.Stats, out.Unlocked, out.LeveledUp)
	return out, nil
}

// RecordLogin updates the last login and the consecutive-day streak.
// The first login of a calendar day awards DAILY_LOGIN; later logins that
// day only refresh the timestamp.
func (s *Service) RecordLogin(ctx context.Context, userID string) (LoginResult, error) {
	now := s.now().UTC()
	var (
		out           LoginResult
		award         leveling.AwardResult
		unlockLeveled bool
	)

	_, err := s.stats.Update(ctx, userID, func(row *models.UserStatistics) (*repository.Changes, error) {
		before := toStats(row)
		current := before.Clone()
		current.LastLogin = &now

		out = LoginResult{PreviousLogin: before.LastLogin}
		streak := before.Counter(leveling.StatLoginStreak)

		if before.LastLogin != nil && sameDay(*before.LastLogin, now, s.loc) {
			out.Stats = current
			out.Streak = streak
			applyStats(row, current)
			return nil, nil
		}

		next := 1
		if before.LastLogin != nil && nextDay(*before.LastLogin, now, s.loc) {
			next = streak + 1
		}

		counted, unlocked := s.engine.IncrementStat(current, leveling.StatLoginStreak, next-streak)
		unlockLeveled = counted.Level > before.Level
		award = s.engine.AwardXP(counted, leveling.Award{Action: leveling.ActionDailyLogin})

		out.Stats = award.Stats
		out.Streak = next
		out.FirstToday = true
		out.XPAwarded = award.XPAwarded
		out.Unlocked = unlocked
		out.LeveledUp = award.Stats.Level > before.Level
		applyStats(row, award.Stats)

		changes := s.unlockChanges(before, counted, unlocked)
		if changes == nil {
			changes = &repository.Changes{}
		}
		changes.Events = append(changes.Events, s.awardEvents(counted, leveling.ActionDailyLogin, award)...)
		return changes, nil
	})
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to record login: %w", err)
	}

	if out.FirstToday {
		s.afterUnlocks(ctx, userID, out.Stats, out.Unlocked, unlockLeveled)
		if award.XPAwarded > 0 {
			s.afterAward(ctx, userID, leveling.ActionDailyLogin, award)
		}
		s.log.Info().Str("user_id", userID).Int("streak", out.Streak).Msg("Recorded daily login")
	}
	return out, nil
}

// Grant unlocks an achievement regardless of its requirement.
// It returns false when the id is unknown or already unlocked.
func (s *Service) Grant(ctx context.Context, userID, achievementID string) (leveling.Stats, bool, error) {
	var (
		updated leveling.Stats
		granted bool
	)

	_, err := s.stats.Update(ctx, userID, func(row *models.UserStatistics) (*repository.Changes, error) {
		before := toStats(row)
		updated, granted = s.engine.Grant(before, achievementID)
		if !granted {
			return nil, repository.ErrUnchanged
		}
		applyStats(row, updated)
		a, _ := s.engine.Catalog().Get(achievementID)
		return s.unlockChanges(before, updated, []leveling.Achievement{a}), nil
	})
	if err != nil {
		return leveling.Stats{}, false, fmt.Errorf("failed to grant %s: %w", achievementID, err)
	}

	if granted {
		a, _ := s.engine.Catalog().Get(achievementID)
		s.afterUnlocks(ctx, userID, updated, []leveling.Achievement{a}, false)
	}
	return updated, granted, nil
}

// EvaluateAll re-evaluates achievements for every user and returns the number
// of unlocks. Per-user failures are logged and skipped.
// This is typically run as a scheduled job after catalog changes.
func (s *Service) EvaluateAll(ctx context.Context) (int, error) {
	s.log.Info().Msg("Starting achievement sweep for all users")
	start := time.Now()

	userIDs, err := s.stats.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	total := 0
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		var (
			updated  leveling.Stats
			unlocked []leveling.Achievement
			leveled  bool
		)
		_, err := s.stats.Update(ctx, userID, func(row *models.UserStatistics) (*repository.Changes, error) {
			before := toStats(row)
			updated, unlocked = s.engine.EvaluateAchievements(before)
			if len(unlocked) == 0 {
				return nil, repository.ErrUnchanged
			}
			leveled = updated.Level > before.Level
			applyStats(row, updated)
			return s.unlockChanges(before, updated, unlocked), nil
		})
		if err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Msg("Failed to evaluate achievements")
			continue
		}

		total += len(unlocked)
		s.afterUnlocks(ctx, userID, updated, unlocked, leveled)
	}

	s.refreshHolderGauges(ctx)

	s.log.Info().
		Int("users", len(userIDs)).
		Int("unlocked", total).
		Dur("duration", time.Since(start)).
		Msg("Completed achievement sweep")

	return total, nil
}

func (s *Service) refreshHolderGauges(ctx context.Context) {
	if s.holders == nil {
		return
	}
	counts, err := s.holders.HoldersCounts(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to refresh achievement holder counts")
		return
	}
	for _, a := range s.engine.Catalog().All() {
		prommetrics.SetAchievementHolders(a.ID, int(counts[a.ID]))
	}
}

// awardEvents builds the ledger rows for an award: the award itself and,
// on level-up, the bonus.
func (s *Service) awardEvents(before leveling.Stats, action leveling.Action, res leveling.AwardResult) []models.XPEvent {
	now := s.now().UTC()
	events := []models.XPEvent{{
		ID:          uuid.NewString(),
		UserID:      before.UserID,
		Action:      action.String(),
		Amount:      res.XPAwarded,
		Source:      models.XPSourceAward,
		LevelBefore: before.Level,
		LevelAfter:  res.NewLevel,
		CreatedAt:   now,
	}}
	if res.Bonus > 0 {
		events = append(events, models.XPEvent{
			ID:          uuid.NewString(),
			UserID:      before.UserID,
			Action:      leveling.ActionReachLevelMilestone.String(),
			Amount:      res.Bonus,
			Source:      models.XPSourceLevelBonus,
			LevelBefore: res.NewLevel,
			LevelAfter:  res.NewLevel,
			CreatedAt:   now,
		})
	}
	return events
}

// unlockChanges builds unlock rows and bonus ledger rows. It returns nil when nothing unlocked.
func (s *Service) unlockChanges(before, after leveling.Stats, unlocked []leveling.Achievement) *repository.Changes {
	if len(unlocked) == 0 {
		return nil
	}

	now := s.now().UTC()
	changes := &repository.Changes{}
	for _, a := range unlocked {
		changes.Unlocks = append(changes.Unlocks, models.UserAchievement{
			UserID:        before.UserID,
			AchievementID: a.ID,
			XP:            a.XP,
			UnlockedAt:    now,
		})
		if a.XP > 0 {
			changes.Events = append(changes.Events, models.XPEvent{
				ID:          uuid.NewString(),
				UserID:      before.UserID,
				Action:      achievementAction,
				Amount:      a.XP,
				Source:      models.XPSourceAchievement,
				Reference:   a.ID,
				LevelBefore: before.Level,
				LevelAfter:  after.Level,
				CreatedAt:   now,
			})
		}
	}
	return changes
}

func (s *Service) afterAward(ctx context.Context, userID string, action leveling.Action, res leveling.AwardResult) {
	prommetrics.RecordXPAwarded(action.String(), res.XPAwarded)
	if s.feed != nil {
		s.feed.XPAwarded(userID, action, res.XPAwarded)
	}

	s.log.Info().
		Str("user_id", userID).
		Str("action", action.String()).
		Int("xp", res.XPAwarded).
		Int("bonus", res.Bonus).
		Int("level", res.NewLevel).
		Msg("Awarded XP")

	if res.LeveledUp {
		s.levelUp(ctx, userID, res.NewLevel)
	}
}

func (s *Service) afterUnlocks(ctx context.Context, userID string, stats leveling.Stats, unlocked []leveling.Achievement, leveledUp bool) {
	for _, a := range unlocked {
		prommetrics.RecordAchievementUnlocked(a.ID)
		s.log.Info().
			Str("user_id", userID).
			Str("achievement", a.ID).
			Int("xp", a.XP).
			Msg("Unlocked achievement")

		if s.announce != nil {
			if err := s.announce.AnnounceAchievement(ctx, s.username(ctx, userID), a); err != nil {
				s.log.Warn().Err(err).Str("achievement", a.ID).Msg("Failed to announce achievement")
			}
		}
	}
	if leveledUp {
		s.levelUp(ctx, userID, stats.Level)
	}
}

func (s *Service) levelUp(ctx context.Context, userID string, level int) {
	prommetrics.RecordLevelUp(level)
	s.log.Info().Str("user_id", userID).Int("level", level).Msg("User leveled up")

	if s.announce == nil {
		return
	}
	if err := s.announce.AnnounceLevelUp(ctx, s.username(ctx, userID), level, s.engine.CurrentRank(level)); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("Failed to announce level up")
	}
}

// username falls back to the user id when the directory has no profile.
func (s *Service) username(ctx context.Context, userID string) string {
	if s.users == nil {
		return userID
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil || u.Username == "" {
		return userID
	}
	return u.Username
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// nextDay reports whether b falls on the calendar day after a in loc.
// Days are stepped by date, so DST transitions do not skip or repeat one.
func nextDay(a, b time.Time, loc *time.Location) bool {
	y, m, d := a.In(loc).Date()
	return sameDay(time.Date(y, m, d+1, 12, 0, 0, 0, loc), b, loc)
}
