package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/verdantlab/ecoquest-api/internal/models"
)

// LedgerRepository reads the append-only point ledger. Writes happen only
// inside the submission review transaction.
type LedgerRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.PointLedgerEntry, error)
	SumByUser(ctx context.Context, userID uint) (int, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository constructs a ledger repository.
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) ListByUser(ctx context.Context, userID uint) ([]models.PointLedgerEntry, error) {
	var entries []models.PointLedgerEntry
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *ledgerRepository) SumByUser(ctx context.Context, userID uint) (int, error) {
	var total struct{ Total int }
	err := r.db.WithContext(ctx).Model(&models.PointLedgerEntry{}).
		Select("COALESCE(SUM(points), 0) AS total").
		Where("user_id = ?", userID).
		Scan(&total).Error
	return total.Total, err
}
