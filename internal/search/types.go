// Package search implements unified search across every content type of the
// platform: per-type adapters, relevance scoring, merge/sort/limit, query
// suggestions, and recent/trending query lists.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/symposium-labs/engage/internal/models"
)

// ErrUnknownContentType is returned by ParseContentType for unrecognised names.
var ErrUnknownContentType = errors.New("unknown content type")

// ContentType identifies a searchable collection.
type ContentType string

// Content types. TypeEvents is accepted but has no adapter, so it always
// yields an empty result set.
const (
	TypeAll           ContentType = "all"
	TypePosts         ContentType = "posts"
	TypePapers        ContentType = "papers"
	TypeCourses       ContentType = "courses"
	TypeUsers         ContentType = "users"
	TypeVoiceRooms    ContentType = "voice_rooms"
	TypeVirtualSpaces ContentType = "virtual_spaces"
	TypeEvents        ContentType = "events"
)

// ParseContentType validates a content type name. Empty means TypeAll.
func ParseContentType(name string) (ContentType, error) {
	if name == "" {
		return TypeAll, nil
	}
	switch ct := ContentType(name); ct {
	case TypeAll, TypePosts, TypePapers, TypeCourses, TypeUsers,
		TypeVoiceRooms, TypeVirtualSpaces, TypeEvents:
		return ct, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownContentType, name)
}

// Result is one search hit.
type Result struct {
	Type           ContentType    `json:"type"`
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	URL            string         `json:"url"`
	Metadata       map[string]any `json:"metadata"`
	RelevanceScore float64        `json:"relevanceScore"`
}

// Response groups results by content type.
type Response struct {
	Query        string                   `json:"query"`
	TotalResults int                      `json:"totalResults"`
	Results      map[ContentType][]Result `json:"results"`
	Suggestions  []string                 `json:"suggestions"`
	Timestamp    *time.Time               `json:"timestamp,omitempty"`
}

// QuickResponse is a flat, globally ranked result list.
type QuickResponse struct {
	Query        string   `json:"query"`
	Results      []Result `json:"results"`
	TotalResults int      `json:"totalResults"`
}

// Options tune GlobalSearch. Zero values mean TypeAll and the configured default limit.
type Options struct {
	Type  ContentType
	Limit int
}

// Catalog is the source of searchable content. Each method returns records in
// stable source order.
type Catalog interface {
	Posts(ctx context.Context) ([]models.Post, error)
	Papers(ctx context.Context) ([]models.Paper, error)
	Courses(ctx context.Context) ([]models.Course, error)
	Professionals(ctx context.Context) ([]models.Professional, error)
	VoiceRooms(ctx context.Context) ([]models.VoiceRoom, error)
	VirtualSpaces(ctx context.Context) ([]models.VirtualSpace, error)
}

// TrendingQuery is a popular query with its hit count.
type TrendingQuery struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// TrendingProvider supplies trending queries.
type TrendingProvider interface {
	Trending(ctx context.Context) ([]TrendingQuery, error)
}
