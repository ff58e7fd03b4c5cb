package repository

import (
	"context"

	"gorm.io/gorm"

	"storysmith/internal/errors"
	"storysmith/internal/model"
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// SaveProgress overwrites the mutable fields (credits, last_refill,
	// stories) of the row matching the email. Immutable fields are left
	// untouched and no row is ever inserted.
	SaveProgress(ctx context.Context, user *model.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SaveProgress(ctx context.Context, user *model.User) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", user.Email).
		Updates(map[string]interface{}{
			"credits":     user.Credits,
			"last_refill": user.LastRefill,
			"stories":     user.Stories,
		})
	if res.Error != nil {
		return res.Error
	}
	// The row vanished between read and write; surface it instead of
	// discarding the update.
	if res.RowsAffected == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}
