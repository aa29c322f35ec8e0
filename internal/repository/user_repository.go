package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/symposium-labs/engage/internal/models"
)

// UserRepository handles user-related database operations.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. A zero MemberNumber is assigned the next signup ordinal.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if user.MemberNumber == 0 {
			var maxNumber int
			if err := tx.Model(&models.User{}).
				Select("COALESCE(MAX(member_number), 0)").
				Scan(&maxNumber).Error; err != nil {
				return err
			}
			user.MemberNumber = maxNumber + 1
		}
		return tx.Create(user).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by id %s: %w", id, notFound(err))
	}
	return &user, nil
}

// GetByIDs retrieves users keyed by ID. Unknown IDs are absent from the map.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// Update updates a user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// CreateOrUpdate creates a user if it doesn't exist, or updates its profile fields if it does.
// The member number of an existing user never changes.
func (r *UserRepository) CreateOrUpdate(ctx context.Context, user *models.User) error {
	var existing models.User
	err := r.db.WithContext(ctx).Where("id = ?", user.ID).First(&existing).Error
	if err == nil {
		existing.Username = user.Username
		existing.DisplayName = user.DisplayName
		existing.Avatar = user.Avatar
		if err := r.Update(ctx, &existing); err != nil {
			return err
		}
		*user = existing
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up user %s: %w", user.ID, err)
	}

	return r.Create(ctx, user)
}
