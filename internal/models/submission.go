package models

import "time"

// Submission records one student's evidence for one challenge attempt.
// The composite unique index enforces the first-attempt-only intake policy.
type Submission struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;uniqueIndex:idx_submissions_user_challenge" json:"user_id"`
	ChallengeID  uint       `gorm:"not null;uniqueIndex:idx_submissions_user_challenge" json:"challenge_id"`
	AssignmentID *uint      `json:"assignment_id"`
	Description  string     `gorm:"type:text" json:"description"`
	ImageURL     string     `gorm:"size:512" json:"image_url"`
	AIAnalysis   *string    `gorm:"type:text" json:"ai_analysis"`
	Status       string     `gorm:"size:16;not null;default:pending" json:"status"`
	ReviewedBy   *uint      `json:"reviewed_by"`
	Notes        string     `gorm:"type:text" json:"notes"`
	ReviewedAt   *time.Time `json:"reviewed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	User         User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
	Challenge    Challenge  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"challenge"`
}

const (
	// SubmissionStatusPending is the initial state awaiting review.
	SubmissionStatusPending = "pending"
	// SubmissionStatusApproved is terminal; points have been credited.
	SubmissionStatusApproved = "approved"
	// SubmissionStatusRejected is terminal; no points are credited.
	SubmissionStatusRejected = "rejected"
)

// IsResolved reports whether the submission left the pending state.
func (s Submission) IsResolved() bool {
	return s.Status == SubmissionStatusApproved || s.Status == SubmissionStatusRejected
}

// IsReviewStatus reports whether status is a valid terminal review outcome.
func IsReviewStatus(status string) bool {
	return status == SubmissionStatusApproved || status == SubmissionStatusRejected
}
