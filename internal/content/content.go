// Package content loads the searchable content seed and serves it from memory.
package content

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/symposium-labs/engage/internal/models"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the full set of searchable records, grouped by content type.
type Seed struct {
	Posts         []models.Post         `yaml:"posts"`
	Papers        []models.Paper        `yaml:"papers"`
	Courses       []models.Course       `yaml:"courses"`
	Professionals []models.Professional `yaml:"professionals"`
	VoiceRooms    []models.VoiceRoom    `yaml:"voice_rooms"`
	VirtualSpaces []models.VirtualSpace `yaml:"virtual_spaces"`
}

// Default returns the embedded seed.
func Default() (*Seed, error) {
	return Parse(defaultSeed)
}

// Load reads a seed file. An empty path returns the embedded seed.
func Load(path string) (*Seed, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content seed: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML seed and stamps each record with its source position.
func Parse(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse content seed: %w", err)
	}
	if err := seed.validate(); err != nil {
		return nil, err
	}

	for i := range seed.Posts {
		seed.Posts[i].Position = i
	}
	for i := range seed.Papers {
		seed.Papers[i].Position = i
	}
	for i := range seed.Courses {
		seed.Courses[i].Position = i
	}
	for i := range seed.Professionals {
		seed.Professionals[i].Position = i
	}
	for i := range seed.VoiceRooms {
		seed.VoiceRooms[i].Position = i
	}
	for i := range seed.VirtualSpaces {
		seed.VirtualSpaces[i].Position = i
	}

	return &seed, nil
}

// validate rejects records without ids and duplicate ids within a type.
func (s *Seed) validate() error {
	check := func(kind string, ids []string) error {
		seen := make(map[string]struct{}, len(ids))
		for i, id := range ids {
			if id == "" {
				return fmt.Errorf("%s[%d]: missing id", kind, i)
			}
			if _, dup := seen[id]; dup {
				return fmt.Errorf("%s: duplicate id %q", kind, id)
			}
			seen[id] = struct{}{}
		}
		return nil
	}

	groups := []struct {
		kind string
		ids  []string
	}{
		{"posts", collect(s.Posts, func(p models.Post) string { return p.ID })},
		{"papers", collect(s.Papers, func(p models.Paper) string { return p.ID })},
		{"courses", collect(s.Courses, func(c models.Course) string { return c.ID })},
		{"professionals", collect(s.Professionals, func(p models.Professional) string { return p.ID })},
		{"voice_rooms", collect(s.VoiceRooms, func(r models.VoiceRoom) string { return r.ID })},
		{"virtual_spaces", collect(s.VirtualSpaces, func(v models.VirtualSpace) string { return v.ID })},
	}
	for _, g := range groups {
		if err := check(g.kind, g.ids); err != nil {
			return err
		}
	}
	return nil
}

func collect[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = id(item)
	}
	return out
}

// MemoryCatalog serves a Seed from memory.
type MemoryCatalog struct {
	seed *Seed
}

// NewMemoryCatalog wraps a seed.
func NewMemoryCatalog(seed *Seed) *MemoryCatalog {
	return &MemoryCatalog{seed: seed}
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// Posts returns all posts in source order.
func (c *MemoryCatalog) Posts(context.Context) ([]models.Post, error) {
	return cloneSlice(c.seed.Posts), nil
}

// Papers returns all papers in source order.
func (c *MemoryCatalog) Papers(context.Context) ([]models.Paper, error) {
	return cloneSlice(c.seed.Papers), nil
}

// Courses returns all courses in source order.
func (c *MemoryCatalog) Courses(context.Context) ([]models.Course, error) {
	return cloneSlice(c.seed.Courses), nil
}

// Professionals returns all professionals in source order.
func (c *MemoryCatalog) Professionals(context.Context) ([]models.Professional, error) {
	return cloneSlice(c.seed.Professionals), nil
}

// VoiceRooms returns all voice rooms in source order.
func (c *MemoryCatalog) VoiceRooms(context.Context) ([]models.VoiceRoom, error) {
	return cloneSlice(c.seed.VoiceRooms), nil
}

// VirtualSpaces returns all virtual spaces in source order.
func (c *MemoryCatalog) VirtualSpaces(context.Context) ([]models.VirtualSpace, error) {
	return cloneSlice(c.seed.VirtualSpaces), nil
}
