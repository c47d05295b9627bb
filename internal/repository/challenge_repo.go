package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/verdantlab/ecoquest-api/internal/models"
)

// ChallengeRepository provides access to the challenge catalog.
type ChallengeRepository interface {
	List(ctx context.Context) ([]models.Challenge, error)
	GetByID(ctx context.Context, id uint) (models.Challenge, error)
	Create(ctx context.Context, challenge *models.Challenge) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Challenge, error)
	Delete(ctx context.Context, id uint) error
	UpsertBatch(ctx context.Context, challenges []models.Challenge) (int64, error)
}

type challengeRepository struct {
	db *gorm.DB
}

// NewChallengeRepository constructs a challenge repository.
func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) List(ctx context.Context) ([]models.Challenge, error) {
	var challenges []models.Challenge
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&challenges).Error; err != nil {
		return nil, err
	}

	return challenges, nil
}

func (r *challengeRepository) GetByID(ctx context.Context, id uint) (models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.WithContext(ctx).First(&challenge, id).Error; err != nil {
		return models.Challenge{}, err
	}

	return challenge, nil
}

func (r *challengeRepository) Create(ctx context.Context, challenge *models.Challenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *challengeRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Challenge, error) {
	result := r.db.WithContext(ctx).Model(&models.Challenge{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return models.Challenge{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Challenge{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *challengeRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Challenge{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *challengeRepository) UpsertBatch(ctx context.Context, challenges []models.Challenge) (int64, error) {
	if len(challenges) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "title"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "category", "points", "image_id", "tutorial_url"}),
	}).Create(&challenges)

	return result.RowsAffected, result.Error
}
