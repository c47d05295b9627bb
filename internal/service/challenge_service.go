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

// ErrChallengeNotFound indicates a catalog lookup failed.
var ErrChallengeNotFound = errors.New("challenge not found")

// ChallengeService manages the eco-challenge catalog.
type ChallengeService interface {
	List(ctx context.Context) ([]dto.ChallengeResponse, error)
	GetByID(ctx context.Context, id uint) (dto.ChallengeResponse, error)
	Create(ctx context.Context, payload dto.ChallengeCreateRequest, actor ActivityActor) (dto.ChallengeResponse, error)
	Update(ctx context.Context, id uint, payload dto.ChallengeUpdateRequest, actor ActivityActor) (dto.ChallengeResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
}

type challengeService struct {
	challenges repository.ChallengeRepository
	validator  *validator.Validate
	activity   ActivityRecorder
	logger     zerolog.Logger
}

// NewChallengeService constructs a ChallengeService instance.
func NewChallengeService(challenges repository.ChallengeRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) ChallengeService {
	return &challengeService{
		challenges: challenges,
		validator:  validate,
		activity:   activity,
		logger:     logger.With().Str("component", "challenge_service").Logger(),
	}
}

func (s *challengeService) List(ctx context.Context) ([]dto.ChallengeResponse, error) {
	challenges, err := s.challenges.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewChallengeResponseSlice(challenges), nil
}

func (s *challengeService) GetByID(ctx context.Context, id uint) (dto.ChallengeResponse, error) {
	challenge, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeResponse{}, ErrChallengeNotFound
		}
		return dto.ChallengeResponse{}, err
	}

	return dto.NewChallengeResponse(challenge), nil
}

func (s *challengeService) Create(ctx context.Context, payload dto.ChallengeCreateRequest, actor ActivityActor) (dto.ChallengeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChallengeResponse{}, err
	}

	challenge := models.Challenge{
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
		Points:      payload.Points,
		ImageID:     payload.ImageID,
		TutorialURL: payload.TutorialURL,
	}

	if err := s.challenges.Create(ctx, &challenge); err != nil {
		return dto.ChallengeResponse{}, err
	}

	s.logger.Info().Uint("challenge_id", challenge.ID).Str("title", challenge.Title).Msg("challenge created")
	s.record(ctx, actor, "challenge.created", challenge.ID, map[string]interface{}{
		"title":  challenge.Title,
		"points": challenge.Points,
	})

	return dto.NewChallengeResponse(challenge), nil
}

// Update edits catalog fields. Point value changes only affect future
// approvals; credited ledger entries keep the value snapshotted at approval.
func (s *challengeService) Update(ctx context.Context, id uint, payload dto.ChallengeUpdateRequest, actor ActivityActor) (dto.ChallengeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChallengeResponse{}, err
	}

	updates := map[string]interface{}{}
	if payload.Title != nil {
		updates["title"] = *payload.Title
	}
	if payload.Description != nil {
		updates["description"] = *payload.Description
	}
	if payload.Category != nil {
		updates["category"] = *payload.Category
	}
	if payload.Points != nil {
		updates["points"] = *payload.Points
	}
	if payload.ImageID != nil {
		updates["image_id"] = *payload.ImageID
	}
	if payload.TutorialURL != nil {
		updates["tutorial_url"] = *payload.TutorialURL
	}

	challenge, err := s.challenges.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeResponse{}, ErrChallengeNotFound
		}
		return dto.ChallengeResponse{}, err
	}

	s.logger.Info().Uint("challenge_id", challenge.ID).Msg("challenge updated")
	s.record(ctx, actor, "challenge.updated", challenge.ID, map[string]interface{}{
		"fields": len(updates),
	})

	return dto.NewChallengeResponse(challenge), nil
}

func (s *challengeService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	if err := s.challenges.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChallengeNotFound
		}
		return err
	}

	s.logger.Info().Uint("challenge_id", id).Msg("challenge deleted")
	s.record(ctx, actor, "challenge.deleted", id, nil)

	return nil
}

func (s *challengeService) record(ctx context.Context, actor ActivityActor, action string, challengeID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}

	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     action,
		EntityType: "challenge",
		EntityID:   formatUint(challengeID),
		Metadata:   metadata,
	})
}
