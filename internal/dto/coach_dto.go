package dto

import (
	"time"

	"github.com/verdantlab/ecoquest-api/internal/models"
)

// CoachSendRequest is an inbound websocket frame from the student.
type CoachSendRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
	Persona string `json:"persona" validate:"omitempty,oneof=eco-coach teacher-bot"`
}

// CoachHistoryQuery selects a slice of a room's conversation.
type CoachHistoryQuery struct {
	RoomID string     `query:"room_id" validate:"required"`
	Before *time.Time `query:"before"`
	Limit  int        `query:"limit" validate:"omitempty,gte=0,lte=200"`
}

// CoachMessageResponse is one chat line pushed over the socket or listed via history.
type CoachMessageResponse struct {
	ID        uint      `json:"id"`
	RoomID    string    `json:"room_id"`
	SenderID  string    `json:"sender_id"`
	Role      string    `json:"role"`
	Persona   string    `json:"persona"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCoachMessageResponse converts a CoachMessage model into a DTO.
func NewCoachMessageResponse(model models.CoachMessage) CoachMessageResponse {
	return CoachMessageResponse{
		ID:        model.ID,
		RoomID:    model.RoomID,
		SenderID:  model.SenderID,
		Role:      model.Role,
		Persona:   model.Persona,
		Content:   model.Content,
		CreatedAt: model.CreatedAt,
	}
}

// NewCoachMessageResponseSlice converts coach message models into DTOs.
func NewCoachMessageResponseSlice(messages []models.CoachMessage) []CoachMessageResponse {
	responses := make([]CoachMessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, NewCoachMessageResponse(message))
	}

	return responses
}
