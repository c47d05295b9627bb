package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/verdantlab/ecoquest-api/internal/models"
)

// SchoolTotal is one aggregated leaderboard row.
type SchoolTotal struct {
	SchoolID uint
	Name     string
	City     string
	State    string
	Points   int
}

// StudentRankFilter narrows the individual ranking query.
type StudentRankFilter struct {
	SchoolID  *uint
	ClassName string
	Limit     int
}

// LeaderboardRepository runs the read-side ranking projections. Both queries
// are recomputed on demand from current point totals, never maintained
// incrementally.
type LeaderboardRepository interface {
	SchoolTotals(ctx context.Context, limit int) ([]SchoolTotal, error)
	StudentRanking(ctx context.Context, filter StudentRankFilter) ([]models.User, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

// NewLeaderboardRepository constructs a leaderboard repository.
func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) SchoolTotals(ctx context.Context, limit int) ([]SchoolTotal, error) {
	query := r.db.WithContext(ctx).
		Table("users").
		Select("schools.id AS school_id, schools.name AS name, schools.city AS city, schools.state AS state, COALESCE(SUM(users.points), 0) AS points").
		Joins("JOIN schools ON schools.id = users.school_id").
		Where("users.role = ?", models.RoleStudent).
		Group("schools.id, schools.name, schools.city, schools.state").
		Order("points DESC").
		Order("schools.name ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	var totals []SchoolTotal
	if err := query.Scan(&totals).Error; err != nil {
		return nil, err
	}

	return totals, nil
}

func (r *leaderboardRepository) StudentRanking(ctx context.Context, filter StudentRankFilter) ([]models.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).
		Preload("School").
		Where("role = ?", models.RoleStudent)

	if filter.SchoolID != nil {
		query = query.Where("school_id = ?", *filter.SchoolID)
	}
	if filter.ClassName != "" {
		query = query.Where("class_name = ?", filter.ClassName)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var users []models.User
	if err := query.Order("points DESC").Order("name ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}
