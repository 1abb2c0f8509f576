package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/classwork-go/internal/dto"
	"github.com/noah-isme/classwork-go/internal/lifecycle"
	"github.com/noah-isme/classwork-go/internal/models"
	"github.com/noah-isme/classwork-go/pkg/apiclient"
)

// TeacherStats summarizes a teacher's board by lifecycle status.
type TeacherStats struct {
	Total     int
	Draft     int
	Published int
	Completed int
}

// TeacherBoard is the teacher's working set over their own assignments.
type TeacherBoard struct {
	api *apiclient.Client
	now func() time.Time

	mu          sync.Mutex
	assignments []dto.AssignmentResponse
}

// NewTeacherBoard creates an empty board over the given API client.
func NewTeacherBoard(api *apiclient.Client) *TeacherBoard {
	return &TeacherBoard{api: api, now: time.Now}
}

// Refresh reloads the teacher's assignment list.
func (b *TeacherBoard) Refresh(ctx context.Context) error {
	assignments, err := b.api.Assignments(ctx)
	if err != nil {
		return fmt.Errorf("refresh teacher board: %w", err)
	}

	b.mu.Lock()
	b.assignments = assignments
	b.mu.Unlock()

	return nil
}

// Assignments returns a snapshot of the cached list.
func (b *TeacherBoard) Assignments() []dto.AssignmentResponse {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]dto.AssignmentResponse(nil), b.assignments...)
}

// Filter returns the cached assignments in the given status.
func (b *TeacherBoard) Filter(status string) []dto.AssignmentResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	filtered := make([]dto.AssignmentResponse, 0, len(b.assignments))
	for _, assignment := range b.assignments {
		if assignment.Status == status {
			filtered = append(filtered, assignment)
		}
	}
	return filtered
}

// Create validates the inputs locally, creates the draft on the server,
// and folds it into the working set. Validation failures never reach
// the network.
func (b *TeacherBoard) Create(ctx context.Context, title, description string, dueDate time.Time) (dto.AssignmentResponse, error) {
	if err := lifecycle.ValidateNewAssignment(title, description, dueDate, b.now()); err != nil {
		return dto.AssignmentResponse{}, err
	}

	created, err := b.api.CreateAssignment(ctx, dto.AssignmentCreateRequest{
		Title:       title,
		Description: description,
		DueDate:     dueDate.Format(time.RFC3339),
	})
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	b.mu.Lock()
	b.assignments = append([]dto.AssignmentResponse{created}, b.assignments...)
	b.mu.Unlock()

	return created, nil
}

// Publish moves a draft assignment to published and patches the cached
// entry with the server's record.
func (b *TeacherBoard) Publish(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	return b.transition(ctx, id, lifecycle.CanPublish, b.api.PublishAssignment)
}

// Complete moves a published assignment to completed and patches the
// cached entry with the server's record.
func (b *TeacherBoard) Complete(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	return b.transition(ctx, id, lifecycle.CanComplete, b.api.CompleteAssignment)
}

func (b *TeacherBoard) transition(ctx context.Context, id uint, allowed func(string) bool, call func(context.Context, uint) (dto.AssignmentResponse, error)) (dto.AssignmentResponse, error) {
	b.mu.Lock()
	current, ok := b.assignmentForLocked(id)
	b.mu.Unlock()
	if !ok {
		return dto.AssignmentResponse{}, ErrUnknownAssignment
	}
	if !allowed(current.Status) {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: %s", lifecycle.ErrInvalidTransition, current.Status)
	}

	updated, err := call(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	b.mu.Lock()
	for i := range b.assignments {
		if b.assignments[i].ID == id {
			b.assignments[i] = updated
			break
		}
	}
	b.mu.Unlock()

	return updated, nil
}

// SubmissionsFor fetches the submissions for one of the teacher's
// assignments.
func (b *TeacherBoard) SubmissionsFor(ctx context.Context, id uint) ([]dto.SubmissionResponse, error) {
	return b.api.AssignmentSubmissions(ctx, id)
}

// Review marks a submission as reviewed.
func (b *TeacherBoard) Review(ctx context.Context, submissionID uint) (dto.SubmissionResponse, error) {
	return b.api.ReviewSubmission(ctx, submissionID)
}

// Stats summarizes the cached assignments by status.
func (b *TeacherBoard) Stats() TeacherStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := TeacherStats{Total: len(b.assignments)}
	for _, assignment := range b.assignments {
		switch assignment.Status {
		case models.AssignmentStatusDraft:
			stats.Draft++
		case models.AssignmentStatusPublished:
			stats.Published++
		case models.AssignmentStatusCompleted:
			stats.Completed++
		}
	}
	return stats
}

func (b *TeacherBoard) assignmentForLocked(id uint) (dto.AssignmentResponse, bool) {
	for _, assignment := range b.assignments {
		if assignment.ID == id {
			return assignment, true
		}
	}
	return dto.AssignmentResponse{}, false
}
