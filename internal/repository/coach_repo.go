package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/verdantlab/ecoquest-api/internal/models"
)

// CoachRepository persists coach conversation history.
type CoachRepository interface {
	Save(ctx context.Context, message *models.CoachMessage) error
	ListByRoom(ctx context.Context, roomID string, before time.Time, limit int) ([]models.CoachMessage, error)
}

type coachRepository struct {
	db *gorm.DB
}

// NewCoachRepository constructs a coach history repository.
func NewCoachRepository(db *gorm.DB) CoachRepository {
	return &coachRepository{db: db}
}

func (r *coachRepository) Save(ctx context.Context, message *models.CoachMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *coachRepository) ListByRoom(ctx context.Context, roomID string, before time.Time, limit int) ([]models.CoachMessage, error) {
	query := r.db.WithContext(ctx).Where("room_id = ?", roomID)

	if !before.IsZero() {
		query = query.Where("created_at < ?", before)
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var messages []models.CoachMessage
	if err := query.Order("created_at DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}

	// Oldest first for rendering.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
