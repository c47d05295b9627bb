package models

import "time"

// CoachMessage is one line of an eco-coach or teacher-bot conversation.
type CoachMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    string    `gorm:"size:128;index;not null" json:"room_id"`
	SenderID  string    `gorm:"size:64;not null" json:"sender_id"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Persona   string    `gorm:"size:32" json:"persona"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	// CoachRoleStudent marks a message typed by the student.
	CoachRoleStudent = "student"
	// CoachRoleAssistant marks a generated reply.
	CoachRoleAssistant = "assistant"

	// PersonaEcoCoach answers environmental questions.
	PersonaEcoCoach = "eco-coach"
	// PersonaTeacherBot helps with general academic questions.
	PersonaTeacherBot = "teacher-bot"
)
