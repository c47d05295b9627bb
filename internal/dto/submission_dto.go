package dto

import (
	"time"

	"github.com/verdantlab/ecoquest-api/internal/models"
)

// SubmissionCreateRequest describes the multipart payload for evidence upload.
type SubmissionCreateRequest struct {
	UserID       uint   `form:"user_id" validate:"required,gt=0"`
	ChallengeID  uint   `form:"challenge_id" validate:"required,gt=0"`
	AssignmentID *uint  `form:"assignment_id" validate:"omitempty,gt=0"`
	Description  string `form:"description" validate:"required,min=3"`
}

// SubmissionReviewRequest is the reviewer's verdict on a pending submission.
type SubmissionReviewRequest struct {
	Status string  `json:"status" validate:"required,oneof=approved rejected"`
	Notes  *string `json:"notes" validate:"omitempty,max=2000"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	UserID      *uint   `query:"user_id"`
	ChallengeID *uint   `query:"challenge_id"`
	SchoolID    *uint   `query:"school_id"`
	Status      *string `query:"status" validate:"omitempty,oneof=pending approved rejected"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           string        `json:"id"`
	UserID       uint          `json:"user_id"`
	ChallengeID  uint          `json:"challenge_id"`
	AssignmentID *uint         `json:"assignment_id"`
	Description  string        `json:"description"`
	ImageURL     string        `json:"image_url"`
	AIAnalysis   *string       `json:"ai_analysis"`
	Status       string        `json:"status"`
	ReviewedBy   *uint         `json:"reviewed_by"`
	Notes        string        `json:"notes"`
	ReviewedAt   *time.Time    `json:"reviewed_at"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Challenge    ChallengeLite `json:"challenge"`
	Student      StudentLite   `json:"student"`
}

// ReviewResult reports the outcome of a review call, including whether this
// call was the one that credited points.
type ReviewResult struct {
	Submission    SubmissionResponse `json:"submission"`
	Credited      bool               `json:"credited"`
	PointsAwarded int                `json:"points_awarded"`
}

// ChallengeLite summarizes a challenge in submission responses.
type ChallengeLite struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Points   int    `json:"points"`
}

// StudentLite summarizes a student without exposing full profile data.
type StudentLite struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	SchoolName string `json:"school_name"`
	ClassName  string `json:"class_name"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		UserID:       model.UserID,
		ChallengeID:  model.ChallengeID,
		AssignmentID: model.AssignmentID,
		Description:  model.Description,
		ImageURL:     model.ImageURL,
		AIAnalysis:   model.AIAnalysis,
		Status:       model.Status,
		ReviewedBy:   model.ReviewedBy,
		Notes:        model.Notes,
		ReviewedAt:   model.ReviewedAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	if model.Challenge.ID != 0 {
		response.Challenge = ChallengeLite{
			ID:       model.Challenge.ID,
			Title:    model.Challenge.Title,
			Category: model.Challenge.Category,
			Points:   model.Challenge.Points,
		}
	}

	if model.User.ID != 0 {
		response.Student = StudentLite{
			ID:        model.User.ID,
			Name:      model.User.Name,
			ClassName: model.User.ClassName,
		}
		if model.User.School != nil {
			response.Student.SchoolName = model.User.School.Name
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
