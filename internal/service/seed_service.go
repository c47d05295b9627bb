package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/verdantlab/ecoquest-api/internal/models"
	"github.com/verdantlab/ecoquest-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService loads directory and catalog content in bulk.
type SeedService interface {
	SeedSchools(ctx context.Context, token string, items []models.School) (int64, error)
	SeedChallenges(ctx context.Context, token string, items []models.Challenge) (int64, error)
	SeedBadges(ctx context.Context, token string, items []models.Badge) (int64, error)
}

type seedService struct {
	schools    repository.SchoolRepository
	challenges repository.ChallengeRepository
	badges     repository.BadgeRepository
	enabled    bool
	token      string
	logger     zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(schools repository.SchoolRepository, challenges repository.ChallengeRepository, badges repository.BadgeRepository, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		schools:    schools,
		challenges: challenges,
		badges:     badges,
		enabled:    enabled,
		token:      token,
		logger:     logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedSchools(ctx context.Context, token string, items []models.School) (int64, error) {
	if err := s.authorize(token); err != nil {
		return 0, err
	}

	affected, err := s.schools.UpsertBatch(ctx, items)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("affected", affected).Msg("schools seeded")
	return affected, nil
}

func (s *seedService) SeedChallenges(ctx context.Context, token string, items []models.Challenge) (int64, error) {
	if err := s.authorize(token); err != nil {
		return 0, err
	}

	affected, err := s.challenges.UpsertBatch(ctx, items)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("affected", affected).Msg("challenges seeded")
	return affected, nil
}

func (s *seedService) SeedBadges(ctx context.Context, token string, items []models.Badge) (int64, error) {
	if err := s.authorize(token); err != nil {
		return 0, err
	}

	affected, err := s.badges.UpsertBatch(ctx, items)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("affected", affected).Msg("badges seeded")
	return affected, nil
}

func (s *seedService) authorize(token string) error {
	if !s.enabled {
		return ErrSeedDisabled
	}

	expected := strings.TrimSpace(s.token)
	provided := strings.TrimSpace(token)
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) != 1 {
		return ErrSeedUnauthorized
	}

	return nil
}
