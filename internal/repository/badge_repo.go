package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/verdantlab/ecoquest-api/internal/models"
)

// BadgeRepository manages milestone badges and their awards.
type BadgeRepository interface {
	List(ctx context.Context) ([]models.Badge, error)
	ListEarned(ctx context.Context, userID uint) ([]models.UserBadge, error)
	AwardUpTo(ctx context.Context, userID uint, totalPoints int, at time.Time) ([]models.Badge, error)
	UpsertBatch(ctx context.Context, badges []models.Badge) (int64, error)
}

type badgeRepository struct {
	db *gorm.DB
}

// NewBadgeRepository constructs a badge repository.
func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) List(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	if err := r.db.WithContext(ctx).Order("points_required ASC").Find(&badges).Error; err != nil {
		return nil, err
	}

	return badges, nil
}

func (r *badgeRepository) ListEarned(ctx context.Context, userID uint) ([]models.UserBadge, error) {
	var earned []models.UserBadge
	if err := r.db.WithContext(ctx).Preload("Badge").
		Where("user_id = ?", userID).
		Order("awarded_at ASC").
		Find(&earned).Error; err != nil {
		return nil, err
	}

	return earned, nil
}

// AwardUpTo grants every badge whose threshold the user's total now meets and
// which has not been awarded before. Conflicting concurrent awards are
// absorbed by the unique (user, badge) index.
func (r *badgeRepository) AwardUpTo(ctx context.Context, userID uint, totalPoints int, at time.Time) ([]models.Badge, error) {
	var reachable []models.Badge
	err := r.db.WithContext(ctx).
		Where("points_required <= ?", totalPoints).
		Where("id NOT IN (?)", r.db.Model(&models.UserBadge{}).
			Select("badge_id").
			Where("user_id = ?", userID)).
		Order("points_required ASC").
		Find(&reachable).Error
	if err != nil {
		return nil, err
	}

	if len(reachable) == 0 {
		return nil, nil
	}

	awards := make([]models.UserBadge, 0, len(reachable))
	for _, badge := range reachable {
		awards = append(awards, models.UserBadge{
			UserID:    userID,
			BadgeID:   badge.ID,
			AwardedAt: at,
		})
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&awards).Error; err != nil {
		return nil, err
	}

	return reachable, nil
}

func (r *badgeRepository) UpsertBatch(ctx context.Context, badges []models.Badge) (int64, error) {
	if len(badges) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "icon_url", "points_required"}),
	}).Create(&badges)

	return result.RowsAffected, result.Error
}
