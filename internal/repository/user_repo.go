package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/verdantlab/ecoquest-api/internal/models"
)

// UserRepository provides access to user accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	CountAbovePoints(ctx context.Context, schoolID uint, points int) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("School").First(&user, id).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("School").
		Where("email = ?", email).
		First(&user).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// CountAbovePoints counts schoolmates with a strictly higher point total.
// Rank within school is that count plus one.
func (r *userRepository) CountAbovePoints(ctx context.Context, schoolID uint, points int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("school_id = ?", schoolID).
		Where("role = ?", models.RoleStudent).
		Where("points > ?", points).
		Count(&count).Error
	return count, err
}
