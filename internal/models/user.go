package models

import "time"

// User represents a student, teacher, or administrator account.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:32;not null;default:student" json:"role"`
	SchoolID     *uint     `json:"school_id"`
	ClassName    string    `gorm:"size:64" json:"class_name"`
	Points       int       `gorm:"not null;default:0" json:"points"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	School       *School   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"school,omitempty"`
}

const (
	// RoleStudent identifies accounts that complete challenges and earn points.
	RoleStudent = "student"
	// RoleTeacher identifies accounts that review evidence and award points.
	RoleTeacher = "teacher"
	// RoleAdmin identifies accounts that manage the catalog and directory.
	RoleAdmin = "admin"
)

// CanReview reports whether the user is allowed to act as a reviewer.
func (u User) CanReview() bool {
	return u.Role == RoleTeacher || u.Role == RoleAdmin
}
