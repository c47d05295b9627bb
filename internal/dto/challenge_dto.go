package dto

import (
	"time"

	"github.com/verdantlab/ecoquest-api/internal/models"
)

// ChallengeCreateRequest describes the payload for adding a catalog entry.
type ChallengeCreateRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"required,min=3"`
	Category    string `json:"category" validate:"required,min=2,max=64"`
	Points      int    `json:"points" validate:"required,gt=0"`
	ImageID     string `json:"image_id" validate:"omitempty,max=128"`
	TutorialURL string `json:"tutorial_url" validate:"omitempty,url,max=512"`
}

// ChallengeUpdateRequest describes a partial catalog edit.
type ChallengeUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string `json:"description" validate:"omitempty,min=3"`
	Category    *string `json:"category" validate:"omitempty,min=2,max=64"`
	Points      *int    `json:"points" validate:"omitempty,gt=0"`
	ImageID     *string `json:"image_id" validate:"omitempty,max=128"`
	TutorialURL *string `json:"tutorial_url" validate:"omitempty,url,max=512"`
}

// ChallengeResponse is the catalog entry returned to clients.
type ChallengeResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Points      int       `json:"points"`
	ImageID     string    `json:"image_id"`
	TutorialURL string    `json:"tutorial_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewChallengeResponse converts a Challenge model into a DTO.
func NewChallengeResponse(model models.Challenge) ChallengeResponse {
	return ChallengeResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Category:    model.Category,
		Points:      model.Points,
		ImageID:     model.ImageID,
		TutorialURL: model.TutorialURL,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewChallengeResponseSlice converts challenge models into DTOs.
func NewChallengeResponseSlice(challenges []models.Challenge) []ChallengeResponse {
	responses := make([]ChallengeResponse, 0, len(challenges))
	for _, challenge := range challenges {
		responses = append(responses, NewChallengeResponse(challenge))
	}

	return responses
}
