package dto

import (
	"time"

	"github.com/verdantlab/ecoquest-api/internal/models"
)

// AssignmentCreateRequest lets a teacher direct a class or school at a challenge.
type AssignmentCreateRequest struct {
	ChallengeID uint       `json:"challenge_id" validate:"required,gt=0"`
	SchoolID    *uint      `json:"school_id" validate:"omitempty,gt=0"`
	ClassName   string     `json:"class_name" validate:"omitempty,max=64"`
	DueDate     *time.Time `json:"due_date"`
}

// AssignmentFilter narrows assignment listings.
type AssignmentFilter struct {
	TeacherID *uint `query:"teacher_id"`
	SchoolID  *uint `query:"school_id"`
}

// AssignmentResponse is returned when viewing assignments.
type AssignmentResponse struct {
	ID          uint          `json:"id"`
	TeacherID   uint          `json:"teacher_id"`
	ChallengeID uint          `json:"challenge_id"`
	SchoolID    *uint         `json:"school_id"`
	ClassName   string        `json:"class_name"`
	DueDate     *time.Time    `json:"due_date"`
	CreatedAt   time.Time     `json:"created_at"`
	Challenge   ChallengeLite `json:"challenge"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	response := AssignmentResponse{
		ID:          model.ID,
		TeacherID:   model.TeacherID,
		ChallengeID: model.ChallengeID,
		SchoolID:    model.SchoolID,
		ClassName:   model.ClassName,
		DueDate:     model.DueDate,
		CreatedAt:   model.CreatedAt,
	}

	if model.Challenge.ID != 0 {
		response.Challenge = ChallengeLite{
			ID:       model.Challenge.ID,
			Title:    model.Challenge.Title,
			Category: model.Challenge.Category,
			Points:   model.Challenge.Points,
		}
	}

	return response
}

// NewAssignmentResponseSlice converts assignment models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
