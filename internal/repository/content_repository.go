package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/symposium-labs/engage/internal/content"
	"github.com/symposium-labs/engage/internal/models"
)

// ContentRepository serves the searchable content tables. Every list is
// returned in seed order.
type ContentRepository struct {
	db *DB
}

// NewContentRepository creates a new content repository.
func NewContentRepository(db *DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func listOrdered[T any](ctx context.Context, db *DB, kind string) ([]T, error) {
	var out []T
	if err := db.WithContext(ctx).Order("position ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	return out, nil
}

// Posts returns all posts.
func (r *ContentRepository) Posts(ctx context.Context) ([]models.Post, error) {
	return listOrdered[models.Post](ctx, r.db, "posts")
}

// Papers returns all papers.
func (r *ContentRepository) Papers(ctx context.Context) ([]models.Paper, error) {
	return listOrdered[models.Paper](ctx, r.db, "papers")
}

// Courses returns all courses.
func (r *ContentRepository) Courses(ctx context.Context) ([]models.Course, error) {
	return listOrdered[models.Course](ctx, r.db, "courses")
}

// Professionals returns all professional profiles.
func (r *ContentRepository) Professionals(ctx context.Context) ([]models.Professional, error) {
	return listOrdered[models.Professional](ctx, r.db, "professionals")
}

// VoiceRooms returns all voice rooms.
func (r *ContentRepository) VoiceRooms(ctx context.Context) ([]models.VoiceRoom, error) {
	return listOrdered[models.VoiceRoom](ctx, r.db, "voice rooms")
}

// VirtualSpaces returns all virtual spaces.
func (r *ContentRepository) VirtualSpaces(ctx context.Context) ([]models.VirtualSpace, error) {
	return listOrdered[models.VirtualSpace](ctx, r.db, "virtual spaces")
}

func upsertAll[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&rows).Error
}

// Seed upserts every record of the seed in one transaction. Existing rows
// with the same id are overwritten; rows absent from the seed are kept.
func (r *ContentRepository) Seed(ctx context.Context, seed *content.Seed) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertAll(tx, seed.Posts); err != nil {
			return fmt.Errorf("posts: %w", err)
		}
		if err := upsertAll(tx, seed.Papers); err != nil {
			return fmt.Errorf("papers: %w", err)
		}
		if err := upsertAll(tx, seed.Courses); err != nil {
			return fmt.Errorf("courses: %w", err)
		}
		if err := upsertAll(tx, seed.Professionals); err != nil {
			return fmt.Errorf("professionals: %w", err)
		}
		if err := upsertAll(tx, seed.VoiceRooms); err != nil {
			return fmt.Errorf("voice rooms: %w", err)
		}
		if err := upsertAll(tx, seed.VirtualSpaces); err != nil {
			return fmt.Errorf("virtual spaces: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed content: %w", err)
	}
	return nil
}

// Counts returns the number of rows per content table.
func (r *ContentRepository) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, m := range []interface {
		TableName() string
	}{
		models.Post{}, models.Paper{}, models.Course{},
		models.Professional{}, models.VoiceRoom{}, models.VirtualSpace{},
	} {
		var n int64
		if err := r.db.WithContext(ctx).Table(m.TableName()).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", m.TableName(), err)
		}
		counts[m.TableName()] = n
	}
	return counts, nil
}
