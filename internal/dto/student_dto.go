package dto

import (
	"time"

	"github.com/verdantlab/ecoquest-api/internal/models"
)

// StudentDashboardResponse aggregates everything the student home screen shows.
type StudentDashboardResponse struct {
	Points            int                  `json:"points"`
	SchoolRank        int                  `json:"school_rank"`
	Badges            []BadgeResponse      `json:"badges"`
	Summary           SubmissionSummary    `json:"summary"`
	RecentSubmissions []SubmissionResponse `json:"recent_submissions"`
}

// SubmissionSummary counts the student's submissions by status.
type SubmissionSummary struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// TaskFeedItem is one challenge the student can still attempt.
type TaskFeedItem struct {
	Challenge ChallengeResponse `json:"challenge"`
	Assigned  bool              `json:"assigned"`
	DueDate   *time.Time        `json:"due_date"`
}

// BadgeResponse is an earned badge shown on the dashboard.
type BadgeResponse struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	IconURL        string    `json:"icon_url"`
	PointsRequired int       `json:"points_required"`
	AwardedAt      time.Time `json:"awarded_at"`
}

// NewBadgeResponse converts an earned badge into a DTO.
func NewBadgeResponse(model models.UserBadge) BadgeResponse {
	return BadgeResponse{
		ID:             model.BadgeID,
		Name:           model.Badge.Name,
		Description:    model.Badge.Description,
		IconURL:        model.Badge.IconURL,
		PointsRequired: model.Badge.PointsRequired,
		AwardedAt:      model.AwardedAt,
	}
}
