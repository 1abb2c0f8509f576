// Package dashboard builds the two client-side working sets of the
// platform: the student's view over published assignments and their own
// submissions, and the teacher's view over their assignments. Boards
// cache server responses and derive every display state locally from
// the shared lifecycle rules.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/classwork-go/internal/dto"
	"github.com/noah-isme/classwork-go/internal/lifecycle"
	"github.com/noah-isme/classwork-go/pkg/apiclient"
)

// ErrSubmissionInFlight indicates a submit for the same assignment has
// not finished yet.
var ErrSubmissionInFlight = errors.New("submission already in progress")

// ErrCannotSubmit indicates the assignment does not accept a submission
// from this student: it is overdue or already submitted.
var ErrCannotSubmit = errors.New("assignment cannot be submitted")

// ErrUnknownAssignment indicates the assignment is not in the board's
// working set.
var ErrUnknownAssignment = errors.New("unknown assignment")

// StudentStats summarizes a student's board.
type StudentStats struct {
	Total     int
	Submitted int
	Pending   int
}

// StudentBoard is the student's working set. Refresh loads assignments
// and submissions together; a failure of either leaves the previous
// state untouched.
type StudentBoard struct {
	api *apiclient.Client
	now func() time.Time

	mu          sync.Mutex
	assignments []dto.AssignmentResponse
	submissions []dto.SubmissionResponse
	inFlight    map[uint]bool
}

// NewStudentBoard creates an empty board over the given API client.
func NewStudentBoard(api *apiclient.Client) *StudentBoard {
	return &StudentBoard{
		api:      api,
		now:      time.Now,
		inFlight: make(map[uint]bool),
	}
}

// Refresh reloads both halves of the board. The fetches run
// concurrently and apply only when both succeed.
func (b *StudentBoard) Refresh(ctx context.Context) error {
	var (
		assignments []dto.AssignmentResponse
		submissions []dto.SubmissionResponse
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		assignments, err = b.api.Assignments(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		submissions, err = b.api.MySubmissions(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return fmt.Errorf("refresh student board: %w", err)
	}

	b.mu.Lock()
	b.assignments = assignments
	b.submissions = submissions
	b.mu.Unlock()

	return nil
}

// Assignments returns a snapshot of the cached assignment list.
func (b *StudentBoard) Assignments() []dto.AssignmentResponse {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]dto.AssignmentResponse(nil), b.assignments...)
}

// Submissions returns a snapshot of the student's cached submissions.
func (b *StudentBoard) Submissions() []dto.SubmissionResponse {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]dto.SubmissionResponse(nil), b.submissions...)
}

// SubmissionFor returns the student's submission for an assignment, if
// one exists.
func (b *StudentBoard) SubmissionFor(assignmentID uint) (dto.SubmissionResponse, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.submissionForLocked(assignmentID)
}

func (b *StudentBoard) submissionForLocked(assignmentID uint) (dto.SubmissionResponse, bool) {
	for _, submission := range b.submissions {
		if submission.AssignmentID == assignmentID {
			return submission, true
		}
	}
	return dto.SubmissionResponse{}, false
}

// StateFor derives the display state of an assignment for this student:
// submitted, overdue, or available. A submission always wins over the
// deadline.
func (b *StudentBoard) StateFor(assignmentID uint) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	assignment, ok := b.assignmentForLocked(assignmentID)
	if !ok {
		return "", ErrUnknownAssignment
	}

	_, hasSubmission := b.submissionForLocked(assignmentID)
	return lifecycle.SubmissionStateFor(assignment.DueDate, hasSubmission, b.now()), nil
}

// CanSubmit reports whether Submit would be accepted right now.
func (b *StudentBoard) CanSubmit(assignmentID uint) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	assignment, ok := b.assignmentForLocked(assignmentID)
	if !ok {
		return false
	}

	_, hasSubmission := b.submissionForLocked(assignmentID)
	return lifecycle.CanSubmit(assignment.DueDate, hasSubmission, b.now())
}

// Submit validates locally, posts the answer, and folds the created
// submission into the working set. Concurrent submits for the same
// assignment are rejected rather than queued.
func (b *StudentBoard) Submit(ctx context.Context, assignmentID uint, answer string) (dto.SubmissionResponse, error) {
	if err := lifecycle.ValidateAnswer(answer); err != nil {
		return dto.SubmissionResponse{}, err
	}

	b.mu.Lock()
	assignment, ok := b.assignmentForLocked(assignmentID)
	if !ok {
		b.mu.Unlock()
		return dto.SubmissionResponse{}, ErrUnknownAssignment
	}
	_, hasSubmission := b.submissionForLocked(assignmentID)
	if !lifecycle.CanSubmit(assignment.DueDate, hasSubmission, b.now()) {
		b.mu.Unlock()
		return dto.SubmissionResponse{}, ErrCannotSubmit
	}
	if b.inFlight[assignmentID] {
		b.mu.Unlock()
		return dto.SubmissionResponse{}, ErrSubmissionInFlight
	}
	b.inFlight[assignmentID] = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.inFlight, assignmentID)
		b.mu.Unlock()
	}()

	created, err := b.api.CreateSubmission(ctx, dto.SubmissionCreateRequest{
		AssignmentID: assignmentID,
		Answer:       answer,
	})
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	// The server-returned record is the source of truth for the cache.
	b.mu.Lock()
	b.submissions = append([]dto.SubmissionResponse{created}, b.submissions...)
	b.mu.Unlock()

	return created, nil
}

// Stats summarizes the board: how many assignments are visible, how
// many the student has submitted, and how many remain open.
func (b *StudentBoard) Stats() StudentStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := StudentStats{Total: len(b.assignments)}
	for _, assignment := range b.assignments {
		if _, ok := b.submissionForLocked(assignment.ID); ok {
			stats.Submitted++
		} else if !lifecycle.IsOverdue(assignment.DueDate, b.now()) {
			stats.Pending++
		}
	}

	return stats
}

func (b *StudentBoard) assignmentForLocked(assignmentID uint) (dto.AssignmentResponse, bool) {
	for _, assignment := range b.assignments {
		if assignment.ID == assignmentID {
			return assignment, true
		}
	}
	return dto.AssignmentResponse{}, false
}
