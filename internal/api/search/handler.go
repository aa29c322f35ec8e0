// Package search provides REST API handlers for unified search and the
// recent and trending query lists.
package search

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/symposium-labs/engage/internal/search"
	"github.com/symposium-labs/engage/pkg/logger"
)

// Searcher interface for search operations.
type Searcher interface {
	GlobalSearch(ctx context.Context, query string, opts search.Options) (*search.Response, error)
	QuickSearch(ctx context.Context, query string, limit int) (*search.QuickResponse, error)
}

// RecentList interface for per-user recent queries.
type RecentList interface {
	Get(ctx context.Context, userID string) []string
	Save(ctx context.Context, userID, query string) []string
	Clear(ctx context.Context, userID string)
}

// Handler handles search API requests.
type Handler struct {
	searcher Searcher
	recent   RecentList
	trending search.TrendingProvider
	log      *logger.Logger
}

// NewHandler creates a new search handler.
func NewHandler(searcher Searcher, recent RecentList, trending search.TrendingProvider, log *logger.Logger) *Handler {
	return &Handler{
		searcher: searcher,
		recent:   recent,
		trending: trending,
		log:      log,
	}
}

// RegisterRoutes mounts the handlers on an /api/v1 group.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/search", h.Search)
	api.GET("/search/quick", h.QuickSearch)
	api.GET("/search/trending", h.Trending)
	api.GET("/users/:id/searches/recent", h.GetRecent)
	api.POST("/users/:id/searches/recent", h.SaveRecent)
	api.DELETE("/users/:id/searches/recent", h.ClearRecent)
}

type recentRequest struct {
	Query string `json:"query" binding:"required"`
}

// Search runs a grouped search over one or all content types.
// GET /api/v1/search?q=therapy&type=papers&limit=10.
func (h *Handler) Search(c *gin.Context) {
	contentType, err := search.ParseContentType(c.Query("type"))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	limit, err := h.parseLimit(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.searcher.GlobalSearch(c.Request.Context(), c.Query("q"), search.Options{Type: contentType, Limit: limit})
	if err != nil {
		h.log.Error().Err(err).Str("type", string(contentType)).Msg("Search failed")
		h.errorResponse(c, http.StatusInternalServerError, "Search failed")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// QuickSearch returns the top results across every type.
// GET /api/v1/search/quick?q=therapy&limit=5.
func (h *Handler) QuickSearch(c *gin.Context) {
	limit, err := h.parseLimit(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.searcher.QuickSearch(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Quick search failed")
		h.errorResponse(c, http.StatusInternalServerError, "Search failed")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Trending returns the trending queries.
// GET /api/v1/search/trending.
func (h *Handler) Trending(c *gin.Context) {
	queries, err := h.trending.Trending(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get trending searches")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve trending searches")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trending":     queries,
		"generated_at": time.Now().UTC(),
	})
}

// GetRecent returns the user's recent queries, most recent first.
// GET /api/v1/users/:id/searches/recent.
func (h *Handler) GetRecent(c *gin.Context) {
	userID := c.Param("id")

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"recent":  h.recent.Get(c.Request.Context(), userID),
	})
}

// SaveRecent records a query.
// POST /api/v1/users/:id/searches/recent {"query": "..."}.
func (h *Handler) SaveRecent(c *gin.Context) {
	userID := c.Param("id")

	var req recentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"recent":  h.recent.Save(c.Request.Context(), userID, req.Query),
	})
}

// ClearRecent removes the user's recent queries.
// DELETE /api/v1/users/:id/searches/recent.
func (h *Handler) ClearRecent(c *gin.Context) {
	h.recent.Clear(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}

// parseLimit reads the optional limit query parameter. Zero means the service default.
func (h *Handler) parseLimit(c *gin.Context) (int, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, fmt.Errorf("invalid limit parameter: %s", limitStr)
	}
	if limit < 1 {
		return 0, fmt.Errorf("limit must be greater than 0")
	}
	if limit > 100 {
		return 0, fmt.Errorf("limit cannot exceed 100")
	}
	return limit, nil
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
