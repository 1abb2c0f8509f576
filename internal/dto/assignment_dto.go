package dto

import (
	"time"

	"github.com/noah-isme/classwork-go/internal/models"
)

// AssignmentCreateRequest describes the payload for creating an
// assignment. The due date is an RFC3339 timestamp.
type AssignmentCreateRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=1000"`
	DueDate     string `json:"dueDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// UserLite summarizes an account inside other responses.
type UserLite struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// AssignmentResponse is the serialized representation returned to API
// clients.
type AssignmentResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	Status      string    `json:"status"`
	Teacher     UserLite  `json:"teacher"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	response := AssignmentResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		DueDate:     model.DueDate,
		Status:      model.Status,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}

	if model.Teacher.ID != 0 {
		response.Teacher = UserLite{ID: model.Teacher.ID, Name: model.Teacher.Name}
	} else {
		response.Teacher = UserLite{ID: model.TeacherID}
	}

	return response
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
