package dto

import "github.com/verdantlab/ecoquest-api/internal/models"

// RegisterRequest creates a new student or teacher account.
type RegisterRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=255"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	Role      string `json:"role" validate:"required,oneof=student teacher"`
	SchoolID  *uint  `json:"school_id" validate:"omitempty,gt=0"`
	ClassName string `json:"class_name" validate:"omitempty,max=64"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the signed token and the account profile.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	SchoolID  *uint  `json:"school_id"`
	ClassName string `json:"class_name"`
	Points    int    `json:"points"`
}

// NewUserResponse converts a User model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Role:      model.Role,
		SchoolID:  model.SchoolID,
		ClassName: model.ClassName,
		Points:    model.Points,
	}
}
