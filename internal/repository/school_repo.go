package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/verdantlab/ecoquest-api/internal/models"
)

// SchoolFilter narrows directory queries.
type SchoolFilter struct {
	City   string
	State  string
	Search string
	Limit  int
}

// SchoolRepository provides access to the schools directory.
type SchoolRepository interface {
	List(ctx context.Context, filter SchoolFilter) ([]models.School, error)
	GetByID(ctx context.Context, id uint) (models.School, error)
	Create(ctx context.Context, school *models.School) error
	Cities(ctx context.Context) ([]string, error)
	States(ctx context.Context) ([]string, error)
	UpsertBatch(ctx context.Context, schools []models.School) (int64, error)
}

type schoolRepository struct {
	db *gorm.DB
}

// NewSchoolRepository constructs a school repository.
func NewSchoolRepository(db *gorm.DB) SchoolRepository {
	return &schoolRepository{db: db}
}

func (r *schoolRepository) List(ctx context.Context, filter SchoolFilter) ([]models.School, error) {
	query := r.db.WithContext(ctx).Model(&models.School{})

	if city := strings.TrimSpace(filter.City); city != "" {
		query = query.Where("city LIKE ?", "%"+city+"%")
	}
	if state := strings.TrimSpace(filter.State); state != "" {
		query = query.Where("state LIKE ?", "%"+state+"%")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR city LIKE ? OR state LIKE ?", pattern, pattern, pattern)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var schools []models.School
	if err := query.Order("state ASC").Order("city ASC").Order("name ASC").Find(&schools).Error; err != nil {
		return nil, err
	}

	return schools, nil
}

func (r *schoolRepository) GetByID(ctx context.Context, id uint) (models.School, error) {
	var school models.School
	if err := r.db.WithContext(ctx).First(&school, id).Error; err != nil {
		return models.School{}, err
	}

	return school, nil
}

func (r *schoolRepository) Create(ctx context.Context, school *models.School) error {
	return r.db.WithContext(ctx).Create(school).Error
}

func (r *schoolRepository) Cities(ctx context.Context) ([]string, error) {
	return r.distinctColumn(ctx, "city")
}

func (r *schoolRepository) States(ctx context.Context) ([]string, error) {
	return r.distinctColumn(ctx, "state")
}

func (r *schoolRepository) distinctColumn(ctx context.Context, column string) ([]string, error) {
	var values []string
	err := r.db.WithContext(ctx).Model(&models.School{}).
		Distinct(column).
		Where(column+" <> ''").
		Order(column + " ASC").
		Pluck(column, &values).Error
	if err != nil {
		return nil, err
	}

	return values, nil
}

func (r *schoolRepository) UpsertBatch(ctx context.Context, schools []models.School) (int64, error) {
	if len(schools) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"address", "city", "state", "country"}),
	}).Create(&schools)

	return result.RowsAffected, result.Error
}
