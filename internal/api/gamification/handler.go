// Package gamification provides REST API handlers for XP, levels, ranks,
// achievements and leaderboards.
package gamification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/symposium-labs/engage/internal/leveling"
	"github.com/symposium-labs/engage/internal/models"
	"github.com/symposium-labs/engage/internal/notify"
	gamesvc "github.com/symposium-labs/engage/internal/service/gamification"
	"github.com/symposium-labs/engage/internal/service/leaderboard"
	"github.com/symposium-labs/engage/pkg/logger"
)

// GamificationService interface for XP and achievement operations.
type GamificationService interface {
	GetStats(ctx context.Context, userID string) (gamesvc.Profile, error)
	AwardXP(ctx context.Context, userID string, award leveling.Award) (leveling.AwardResult, error)
	IncrementStat(ctx context.Context, userID string, kind leveling.StatKind, delta int) (gamesvc.StatResult, error)
	RecordLogin(ctx context.Context, userID string) (gamesvc.LoginResult, error)
	Grant(ctx context.Context, userID, achievementID string) (leveling.Stats, bool, error)
	RecentNotifications(userID string) []notify.Notification
	RegisterUser(ctx context.Context, user models.User) (gamesvc.RegisterResult, error)
	Achievements(ctx context.Context, userID string) ([]gamesvc.Unlock, error)
	XPHistory(ctx context.Context, userID string, limit, days int) (gamesvc.History, error)
	Catalog() *leveling.Catalog
	Ranks() *leveling.RankTable
}

// LeaderboardService interface for leaderboard operations.
type LeaderboardService interface {
	GetGlobalLeaderboard(ctx context.Context, period string, limit int) ([]leaderboard.Entry, error)
	GetUserRank(ctx context.Context, userID, period string) (int, error)
}

// Handler handles gamification API requests.
type Handler struct {
	gamification GamificationService
	leaderboard  LeaderboardService
	defaultLimit int
	log          *logger.Logger
}

// NewHandler creates a new gamification handler.
func NewHandler(gamification GamificationService, leaderboard LeaderboardService, defaultLimit int, log *logger.Logger) *Handler {
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	return &Handler{
		gamification: gamification,
		leaderboard:  leaderboard,
		defaultLimit: defaultLimit,
		log:          log,
	}
}

// RegisterRoutes mounts the handlers on an /api/v1 group.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.PUT("/users/:id", h.RegisterUser)
	api.GET("/users/:id/stats", h.GetUserStats)
	api.POST("/users/:id/xp", h.AwardXP)
	api.POST("/users/:id/stats/:kind/increment", h.IncrementStat)
	api.POST("/users/:id/login", h.RecordLogin)
	api.GET("/users/:id/achievements", h.GetUserAchievements)
	api.POST("/users/:id/achievements/:achievement", h.GrantAchievement)
	api.GET("/users/:id/xp", h.GetXPHistory)
	api.GET("/users/:id/notifications", h.GetNotifications)
	api.GET("/users/:id/rank", h.GetUserRank)
	api.GET("/achievements", h.GetAchievementCatalog)
	api.GET("/ranks", h.GetRanks)
	api.GET("/actions", h.GetActions)
	api.GET("/leaderboard", h.GetLeaderboard)
}

type awardRequest struct {
	Action string `json:"action" binding:"required"`
	Amount *int   `json:"amount"`
}

type incrementRequest struct {
	Delta *int `json:"delta"`
}

type userRequest struct {
	Username    string `json:"username" binding:"required"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

const (
	defaultHistoryLimit = 50
	defaultHistoryDays  = 30
	maxHistoryDays      = 365
)

// RegisterUser creates or updates a user profile.
// PUT /api/v1/users/:id {"username": "alice", "display_name": "Alice"}.
func (h *Handler) RegisterUser(c *gin.Context) {
	userID := c.Param("id")

	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	res, err := h.gamification.RegisterUser(c.Request.Context(), models.User{
		ID:          userID,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Avatar:      req.Avatar,
	})
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to register user")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to save user")
		return
	}

	c.JSON(http.StatusOK, res)
}

// GetUserAchievements returns the user's unlocks, most recent first.
// GET /api/v1/users/:id/achievements.
func (h *Handler) GetUserAchievements(c *gin.Context) {
	userID := c.Param("id")

	unlocks, err := h.gamification.Achievements(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to get user achievements")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve achievements")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      userID,
		"achievements": unlocks,
		"total":        len(unlocks),
	})
}

// GetXPHistory returns recent XP ledger entries and daily totals.
// GET /api/v1/users/:id/xp?limit=50&days=30.
func (h *Handler) GetXPHistory(c *gin.Context) {
	userID := c.Param("id")

	limit, err := h.parseLimit(c, defaultHistoryLimit)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	days := defaultHistoryDays
	if daysStr := c.Query("days"); daysStr != "" {
		days, err = strconv.Atoi(daysStr)
		if err != nil || days < 1 || days > maxHistoryDays {
			h.errorResponse(c, http.StatusBadRequest, fmt.Sprintf("days must be between 1 and %d", maxHistoryDays))
			return
		}
	}

	history, err := h.gamification.XPHistory(c.Request.Context(), userID, limit, days)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to get XP history")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve XP history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      userID,
		"events":       history.Events,
		"daily":        history.Daily,
		"days":         days,
		"generated_at": time.Now().UTC(),
	})
}

// GetUserStats returns statistics, level progress and rank.
// GET /api/v1/users/:id/stats.
func (h *Handler) GetUserStats(c *gin.Context) {
	userID := c.Param("id")

	profile, err := h.gamification.GetStats(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to get user stats")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve user statistics")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// AwardXP grants XP for an action.
// POST /api/v1/users/:id/xp {"action": "CREATE_POST", "amount": 10}.
func (h *Handler) AwardXP(c *gin.Context) {
	userID := c.Param("id")

	var req awardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	action, err := leveling.ParseAction(req.Action)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.Amount != nil && *req.Amount > leveling.MaxAwardAmount {
		h.errorResponse(c, http.StatusBadRequest, fmt.Sprintf("amount cannot exceed %d", leveling.MaxAwardAmount))
		return
	}

	res, err := h.gamification.AwardXP(c.Request.Context(), userID, leveling.Award{Action: action, Amount: req.Amount})
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Str("action", req.Action).Msg("Failed to award XP")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to award XP")
		return
	}

	c.JSON(http.StatusOK, res)
}

// IncrementStat bumps an activity counter and evaluates achievements.
// POST /api/v1/users/:id/stats/:kind/increment {"delta": 1}.
func (h *Handler) IncrementStat(c *gin.Context) {
	userID := c.Param("id")

	kind, err := leveling.ParseStat(c.Param("kind"))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req incrementRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	delta := 1
	if req.Delta != nil {
		delta = *req.Delta
	}
	if delta < 1 {
		h.errorResponse(c, http.StatusBadRequest, "delta must be greater than 0")
		return
	}

	res, err := h.gamification.IncrementStat(c.Request.Context(), userID, kind, delta)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Str("stat", string(kind)).Msg("Failed to increment stat")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to update statistics")
		return
	}

	c.JSON(http.StatusOK, res)
}

// RecordLogin updates the login streak and awards the daily login XP.
// POST /api/v1/users/:id/login.
func (h *Handler) RecordLogin(c *gin.Context) {
	userID := c.Param("id")

	res, err := h.gamification.RecordLogin(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to record login")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to record login")
		return
	}

	c.JSON(http.StatusOK, res)
}

// GrantAchievement unlocks an achievement manually.
// POST /api/v1/users/:id/achievements/:achievement.
func (h *Handler) GrantAchievement(c *gin.Context) {
	userID := c.Param("id")
	achievementID := c.Param("achievement")

	if _, ok := h.gamification.Catalog().Get(achievementID); !ok {
		h.errorResponse(c, http.StatusNotFound, fmt.Sprintf("achievement not found: %s", achievementID))
		return
	}

	stats, granted, err := h.gamification.Grant(c.Request.Context(), userID, achievementID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Str("achievement", achievementID).Msg("Failed to grant achievement")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to grant achievement")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":   stats,
		"granted": granted,
	})
}

// GetNotifications returns the user's unexpired XP notifications.
// GET /api/v1/users/:id/notifications.
func (h *Handler) GetNotifications(c *gin.Context) {
	userID := c.Param("id")
	notes := h.gamification.RecentNotifications(userID)

	c.JSON(http.StatusOK, gin.H{
		"user_id":       userID,
		"notifications": notes,
	})
}

// GetUserRank returns the user's leaderboard position.
// GET /api/v1/users/:id/rank?period=week.
func (h *Handler) GetUserRank(c *gin.Context) {
	userID := c.Param("id")
	period := c.DefaultQuery("period", leaderboard.PeriodAllTime)

	if err := h.validatePeriod(period); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	position, err := h.leaderboard.GetUserRank(c.Request.Context(), userID, period)
	if errors.Is(err, leaderboard.ErrUserNotRanked) {
		h.errorResponse(c, http.StatusNotFound, "user has no XP in this period")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Str("period", period).Msg("Failed to get user rank")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve user rank")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":  userID,
		"period":   period,
		"position": position,
	})
}

// GetAchievementCatalog returns every achievement.
// GET /api/v1/achievements.
func (h *Handler) GetAchievementCatalog(c *gin.Context) {
	achievements := h.gamification.Catalog().All()

	c.JSON(http.StatusOK, gin.H{
		"achievements": achievements,
		"total":        len(achievements),
	})
}

// GetRanks returns the rank tiers.
// GET /api/v1/ranks.
func (h *Handler) GetRanks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ranks":      h.gamification.Ranks().Tiers(),
		"thresholds": leveling.Thresholds(),
	})
}

// GetActions returns the XP action table.
// GET /api/v1/actions.
func (h *Handler) GetActions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"actions": leveling.Actions(),
	})
}

// GetLeaderboard returns the XP leaderboard.
// GET /api/v1/leaderboard?period=month&limit=10.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	period := c.DefaultQuery("period", leaderboard.PeriodAllTime)
	limit, err := h.parseLimit(c, h.defaultLimit)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.validatePeriod(period); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.leaderboard.GetGlobalLeaderboard(c.Request.Context(), period, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}

	h.log.Debug().
		Str("period", period).
		Int("limit", limit).
		Int("entries", len(entries)).
		Msg("Retrieved leaderboard")

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":   entries,
		"period":        period,
		"total_entries": len(entries),
		"generated_at":  time.Now().UTC(),
	})
}

// Helper functions

// parseLimit extracts and validates the limit query parameter.
func (h *Handler) parseLimit(c *gin.Context, defaultLimit int) (int, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, fmt.Errorf("invalid limit parameter: %s", limitStr)
	}

	if limit < 1 {
		return 0, fmt.Errorf("limit must be greater than 0")
	}

	if limit > 1000 {
		return 0, fmt.Errorf("limit cannot exceed 1000")
	}

	return limit, nil
}

// validatePeriod validates the period parameter.
func (h *Handler) validatePeriod(period string) error {
	if !leaderboard.ValidPeriod(period) {
		return fmt.Errorf("invalid period: %s (valid: day, week, month, year, all_time)", period)
	}
	return nil
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
