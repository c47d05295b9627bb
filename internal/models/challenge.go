package models

import "time"

// Challenge is a catalog entry describing one eco-challenge and its point value.
// The value credited for an approved submission is snapshotted into the ledger,
// so later edits to Points never alter already-credited totals.
type Challenge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;uniqueIndex;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Category    string    `gorm:"size:64;not null" json:"category"`
	Points      int       `gorm:"not null" json:"points"`
	ImageID     string    `gorm:"size:128" json:"image_id"`
	TutorialURL string    `gorm:"size:512" json:"tutorial_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
