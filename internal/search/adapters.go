package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/symposium-labs/engage/internal/models"
)

// adapter searches one content type. The query is already trimmed.
type adapter func(ctx context.Context, catalog Catalog, query string) ([]Result, error)

// adapterOrder fixes the iteration order for fan-out, suggestions and quick search.
var adapterOrder = []ContentType{
	TypePosts,
	TypePapers,
	TypeCourses,
	TypeUsers,
	TypeVoiceRooms,
	TypeVirtualSpaces,
}

var adapters = map[ContentType]adapter{
	TypePosts:         searchPosts,
	TypePapers:        searchPapers,
	TypeCourses:       searchCourses,
	TypeUsers:         searchUsers,
	TypeVoiceRooms:    searchVoiceRooms,
	TypeVirtualSpaces: searchVirtualSpaces,
}

func personName(p *models.Person) string {
	if p == nil {
		return ""
	}
	return p.Name
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func searchPosts(ctx context.Context, catalog Catalog, query string) ([]Result, error) {
	posts, err := catalog.Posts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}

	q := strings.ToLower(query)
	var out []Result
	for _, p := range posts {
		author := personName(p.Author)
		if !matches(q, p.Content, author, strings.Join(p.Tags, " ")) {
			continue
		}

		title := "Post"
		if author != "" {
			title = "Post by " + author
		}

		out = append(out, Result{
			Type:        TypePosts,
			ID:          p.ID,
			Title:       title,
			Description: excerpt(p.Content),
			URL:         "/feed#" + p.ID,
			Metadata: map[string]any{
				"author":    p.Author,
				"reactions": p.Reactions,
				"comments":  p.Comments,
				"createdAt": p.CreatedAt,
				"tags":      orEmpty(p.Tags),
			},
			RelevanceScore: RelevanceScore(p.Content, query),
		})
	}
	return out, nil
}

func searchPapers(ctx context.Context, catalog Catalog, query string) ([]Result, error) {
	papers, err := catalog.Papers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load papers: %w", err)
	}

	q := strings.ToLower(query)
	var out []Result
	for _, p := range papers {
		names := make([]string, 0, len(p.Authors))
		for _, a := range p.Authors {
			names = append(names, a.Name)
		}
		if !matches(q, p.Title, p.Abstract, strings.Join(names, " "), strings.Join(p.Keywords, " ")) {
			continue
		}

		authors := p.Authors
		if authors == nil {
			authors = []models.Person{}
		}

		out = append(out, Result{
			Type:        TypePapers,
			ID:          p.ID,
			Title:       p.Title,
			Description: excerpt(p.Abstract),
			URL:         "/library/" + p.ID,
			Metadata: map[string]any{
				"authors":   authors,
				"journal":   p.Journal,
				"year":      p.Year,
				"citations": p.Citations,
				"rating":    p.Rating,
			},
			RelevanceScore: RelevanceScore(p.Title, query) + RelevanceScore(p.Abstract, query)*0.5,
		})
	}
	return out, nil
}

func searchCourses(ctx context.Context, catalog Catalog, query string) ([]Result, error) {
	courses, err := catalog.Courses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load courses: %w", err)
	}

	q := strings.ToLower(query)
	var out []Result
	for _, c := range courses {
		if !matches(q, c.Title, c.Description, personName(c.Instructor), strings.Join(c.Topics, " ")) {
			continue
		}

		out = append(out, Result{
			Type:        TypeCourses,
			ID:          c.ID,
			Title:       c.Title,
			Description: excerpt(c.Description),
			URL:         "/courses/" + c.ID,
			Metadata: map[string]any{
				"instructor": c.Instructor,
				"duration":   c.Duration,
				"level":      c.Level,
				"enrolled":   c.Enrolled,
				"rating":     c.Rating,
			},
			RelevanceScore: RelevanceScore(c.Title, query),
		})
	}
	return out, nil
}

func searchUsers(ctx context.Context, catalog Catalog, query string) ([]Result, error) {
	people, err := catalog.Professionals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load professionals: %w", err)
	}

	q := strings.ToLower(query)
	var out []Result
	for _, u := range people {
		if !matches(q, u.Name, u.Title, u.Institution, strings.Join(u.Expertise, " "), u.Bio) {
			continue
		}

		out = append(out, Result{
			Type:        TypeUsers,
			ID:          u.ID,
			Title:       u.Name,
			Description: fmt.Sprintf("%s at %s", u.Title, u.Institution),
			URL:         "/profile/" + u.ID,
			Metadata: map[string]any{
				"avatar":          u.Avatar,
				"title":           u.Title,
				"institution":     u.Institution,
				"expertise":       orEmpty(u.Expertise),
				"experienceLevel": u.ExperienceLevel,
			},
			RelevanceScore: RelevanceScore(u.Name, query) + RelevanceScore(u.Title, query)*0.5,
		})
	}
	return out, nil
}

func searchVoiceRooms(ctx context.Context, catalog Catalog, query string) ([]Result, error) {
	rooms, err := catalog.VoiceRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load voice rooms: %w", err)
	}

	q := strings.ToLower(query)
	var out []Result
	for _, r := range rooms {
		if !matches(q, r.Title, r.Description, r.Category, strings.Join(r.Tags, " ")) {
			continue
		}

		speakers := r.Speakers
		if speakers == nil {
			speakers = []models.Person{}
		}

		out = append(out, Result{
			Type:        TypeVoiceRooms,
			ID:          r.ID,
			Title:       r.Title,
			Description: excerpt(r.Description),
			URL:         "/voice-rooms/" + r.ID,
			Metadata: map[string]any{
				"category":      r.Category,
				"status":        r.Status,
				"speakers":      speakers,
				"listenerCount": r.ListenerCount,
				"isLive":        r.Status == "live",
			},
			RelevanceScore: RelevanceScore(r.Title, query),
		})
	}
	return out, nil
}

func searchVirtualSpaces(ctx context.Context, catalog Catalog, query string) ([]Result, error) {
	spaces, err := catalog.VirtualSpaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load virtual spaces: %w", err)
	}

	q := strings.ToLower(query)
	var out []Result
	for _, s := range spaces {
		if !matches(q, s.Name, s.Description, s.Type, strings.Join(s.Features, " ")) {
			continue
		}

		out = append(out, Result{
			Type:        TypeVirtualSpaces,
			ID:          s.ID,
			Title:       s.Name,
			Description: excerpt(s.Description),
			URL:         "/virtual-space/" + s.ID,
			Metadata: map[string]any{
				"type":             s.Type,
				"capacity":         s.Capacity,
				"currentOccupancy": s.CurrentOccupancy,
				"thumbnail":        s.Thumbnail,
			},
			RelevanceScore: RelevanceScore(s.Name, query),
		})
	}
	return out, nil
}
