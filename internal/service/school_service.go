package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/verdantlab/ecoquest-api/internal/dto"
	"github.com/verdantlab/ecoquest-api/internal/models"
	"github.com/verdantlab/ecoquest-api/internal/repository"
)

// ErrSchoolNotFound indicates a school lookup failed.
var ErrSchoolNotFound = errors.New("school not found")

// SchoolService exposes the school directory.
type SchoolService interface {
	List(ctx context.Context, filter dto.SchoolFilter) ([]dto.SchoolResponse, error)
	GetByID(ctx context.Context, id uint) (dto.SchoolResponse, error)
	Create(ctx context.Context, payload dto.SchoolCreateRequest) (dto.SchoolResponse, error)
	Cities(ctx context.Context) ([]string, error)
	States(ctx context.Context) ([]string, error)
}

type schoolService struct {
	schools   repository.SchoolRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSchoolService constructs a SchoolService instance.
func NewSchoolService(schools repository.SchoolRepository, validate *validator.Validate, logger zerolog.Logger) SchoolService {
	return &schoolService{
		schools:   schools,
		validator: validate,
		logger:    logger.With().Str("component", "school_service").Logger(),
	}
}

func (s *schoolService) List(ctx context.Context, filter dto.SchoolFilter) ([]dto.SchoolResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	schools, err := s.schools.List(ctx, repository.SchoolFilter{
		City:   filter.City,
		State:  filter.State,
		Search: filter.Search,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewSchoolResponseSlice(schools), nil
}

func (s *schoolService) GetByID(ctx context.Context, id uint) (dto.SchoolResponse, error) {
	school, err := s.schools.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SchoolResponse{}, ErrSchoolNotFound
		}
		return dto.SchoolResponse{}, err
	}

	return dto.NewSchoolResponse(school), nil
}

func (s *schoolService) Create(ctx context.Context, payload dto.SchoolCreateRequest) (dto.SchoolResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SchoolResponse{}, err
	}

	school := models.School{
		Name:    payload.Name,
		Address: payload.Address,
		City:    payload.City,
		State:   payload.State,
		Country: payload.Country,
	}

	if err := s.schools.Create(ctx, &school); err != nil {
		return dto.SchoolResponse{}, err
	}

	s.logger.Info().Uint("school_id", school.ID).Str("name", school.Name).Msg("school registered")

	return dto.NewSchoolResponse(school), nil
}

func (s *schoolService) Cities(ctx context.Context) ([]string, error) {
	return s.schools.Cities(ctx)
}

func (s *schoolService) States(ctx context.Context) ([]string, error) {
	return s.schools.States(ctx)
}
