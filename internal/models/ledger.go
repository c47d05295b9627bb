package models

import "time"

// PointLedgerEntry is the append-only record of one point credit. The unique
// submission index is the idempotency fence: a submission can be credited at
// most once, no matter how many review calls race on it. Points is a snapshot
// of the challenge value at approval time and never changes afterwards.
type PointLedgerEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID string    `gorm:"type:uuid;uniqueIndex;not null" json:"submission_id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	ChallengeID  uint      `gorm:"not null" json:"challenge_id"`
	Points       int       `gorm:"not null" json:"points"`
	AwardedBy    uint      `gorm:"not null" json:"awarded_by"`
	CreatedAt    time.Time `json:"created_at"`
}
