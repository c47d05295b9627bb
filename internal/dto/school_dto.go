package dto

import "github.com/verdantlab/ecoquest-api/internal/models"

// SchoolCreateRequest describes the payload for adding a directory entry.
type SchoolCreateRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=255"`
	Address string `json:"address" validate:"omitempty,max=512"`
	City    string `json:"city" validate:"omitempty,max=128"`
	State   string `json:"state" validate:"omitempty,max=128"`
	Country string `json:"country" validate:"omitempty,max=128"`
}

// SchoolFilter narrows directory listings.
type SchoolFilter struct {
	City   string `query:"city"`
	State  string `query:"state"`
	Search string `query:"search"`
	Limit  int    `query:"limit" validate:"omitempty,gte=0,lte=500"`
}

// SchoolResponse is a directory entry returned to clients.
type SchoolResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// NewSchoolResponse converts a School model into a DTO.
func NewSchoolResponse(model models.School) SchoolResponse {
	return SchoolResponse{
		ID:      model.ID,
		Name:    model.Name,
		Address: model.Address,
		City:    model.City,
		State:   model.State,
		Country: model.Country,
	}
}

// NewSchoolResponseSlice converts school models into DTOs.
func NewSchoolResponseSlice(schools []models.School) []SchoolResponse {
	responses := make([]SchoolResponse, 0, len(schools))
	for _, school := range schools {
		responses = append(responses, NewSchoolResponse(school))
	}

	return responses
}
