package dto

import (
	"time"

	"github.com/noah-isme/classwork-go/internal/models"
)

// SubmissionCreateRequest describes the payload for submitting an answer.
type SubmissionCreateRequest struct {
	AssignmentID uint   `json:"assignmentId" validate:"required,gt=0"`
	Answer       string `json:"answer" validate:"required,max=2000"`
}

// AssignmentLite summarizes an assignment inside submission responses.
type AssignmentLite struct {
	ID      uint      `json:"id"`
	Title   string    `json:"title"`
	DueDate time.Time `json:"dueDate"`
	Status  string    `json:"status"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint           `json:"id"`
	AssignmentID uint           `json:"assignmentId"`
	StudentID    uint           `json:"studentId"`
	Answer       string         `json:"answer"`
	IsReviewed   bool           `json:"isReviewed"`
	ReviewedAt   *time.Time     `json:"reviewedAt"`
	SubmittedAt  time.Time      `json:"submittedAt"`
	Assignment   AssignmentLite `json:"assignment"`
	Student      UserLite       `json:"student"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		Answer:       model.Answer,
		IsReviewed:   model.IsReviewed,
		ReviewedAt:   model.ReviewedAt,
		SubmittedAt:  model.CreatedAt,
	}

	if model.Assignment.ID != 0 {
		response.Assignment = AssignmentLite{
			ID:      model.Assignment.ID,
			Title:   model.Assignment.Title,
			DueDate: model.Assignment.DueDate,
			Status:  model.Assignment.Status,
		}
	}

	if model.Student.ID != 0 {
		response.Student = UserLite{ID: model.Student.ID, Name: model.Student.Name}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
