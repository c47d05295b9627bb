package models

import "time"

// Assignment is a teacher's instruction that a class or school should attempt
// a specific challenge, optionally before a due date.
type Assignment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	TeacherID   uint       `gorm:"not null" json:"teacher_id"`
	ChallengeID uint       `gorm:"not null" json:"challenge_id"`
	SchoolID    *uint      `json:"school_id"`
	ClassName   string     `gorm:"size:64" json:"class_name"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Challenge   Challenge  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"challenge"`
}

// IsPastDue returns true when the assignment has a deadline that already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return a.DueDate != nil && reference.After(*a.DueDate)
}
