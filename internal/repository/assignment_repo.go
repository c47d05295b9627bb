package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/verdantlab/ecoquest-api/internal/models"
)

// AssignmentFilter narrows assignment queries.
type AssignmentFilter struct {
	TeacherID *uint
	SchoolID  *uint
}

// AssignmentRepository provides access to teacher assignments.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, error)
	ListForStudent(ctx context.Context, schoolID *uint, className string) ([]models.Assignment, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates the repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, error) {
	query := r.db.WithContext(ctx).Model(&models.Assignment{}).Preload("Challenge")

	if filter.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filter.TeacherID)
	}
	if filter.SchoolID != nil {
		query = query.Where("school_id = ?", *filter.SchoolID)
	}

	var assignments []models.Assignment
	if err := query.Order("created_at DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

// ListForStudent returns assignments targeting the student's school, either
// school-wide (empty class name) or aimed at the student's class.
func (r *assignmentRepository) ListForStudent(ctx context.Context, schoolID *uint, className string) ([]models.Assignment, error) {
	if schoolID == nil {
		return nil, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Preload("Challenge").
		Where("school_id = ?", *schoolID)

	if className != "" {
		query = query.Where("class_name = ? OR class_name = ''", className)
	}

	var assignments []models.Assignment
	if err := query.Order("due_date ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}
