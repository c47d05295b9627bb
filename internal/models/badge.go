package models

import "time"

// Badge is a milestone awarded when a student's point total crosses a threshold.
type Badge struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:128;uniqueIndex;not null" json:"name"`
	Description    string    `gorm:"size:512" json:"description"`
	IconURL        string    `gorm:"size:512" json:"icon_url"`
	PointsRequired int       `gorm:"not null" json:"points_required"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserBadge links a badge to the student who earned it.
type UserBadge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_badges_user_badge" json:"user_id"`
	BadgeID   uint      `gorm:"not null;uniqueIndex:idx_user_badges_user_badge" json:"badge_id"`
	AwardedAt time.Time `gorm:"not null" json:"awarded_at"`
	Badge     Badge     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"badge"`
}
