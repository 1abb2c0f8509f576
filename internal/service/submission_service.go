package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/classwork-go/internal/dto"
	"github.com/noah-isme/classwork-go/internal/lifecycle"
	"github.com/noah-isme/classwork-go/internal/models"
	"github.com/noah-isme/classwork-go/internal/repository"
)

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrDuplicateSubmission indicates a submission already exists for the
// (assignment, student) pair.
var ErrDuplicateSubmission = errors.New("you have already submitted this assignment")

// ErrAssignmentOverdue indicates the deadline has passed.
var ErrAssignmentOverdue = errors.New("assignment is past due")

// ErrAssignmentNotOpen indicates the assignment is not accepting
// submissions in its current status.
var ErrAssignmentNotOpen = errors.New("assignment is not accepting submissions")

// SubmissionService orchestrates the student submission workflow and the
// teacher review workflow.
type SubmissionService interface {
	Create(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	ListMine(ctx context.Context, actor Actor) ([]dto.SubmissionResponse, error)
	ListForAssignment(ctx context.Context, actor Actor, assignmentID uint) ([]dto.SubmissionResponse, error)
	MarkReviewed(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	activity    ActivityRecorder
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(subRepo repository.SubmissionRepository, assignmentRepo repository.AssignmentRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		assignments: assignmentRepo,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		activity:    activity,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Create(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	answer := strings.TrimSpace(s.sanitizer.Sanitize(payload.Answer))
	if err := lifecycle.ValidateAnswer(answer); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if assignment.Status != models.AssignmentStatusPublished {
		return dto.SubmissionResponse{}, ErrAssignmentNotOpen
	}

	if lifecycle.IsOverdue(assignment.DueDate, s.now()) {
		return dto.SubmissionResponse{}, ErrAssignmentOverdue
	}

	if _, err := s.submissions.GetByAssignmentAndStudent(ctx, assignment.ID, actor.ID); err == nil {
		return dto.SubmissionResponse{}, ErrDuplicateSubmission
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    actor.ID,
		Answer:       answer,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		// The unique pair index closes the race between the lookup above
		// and this insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubmissionResponse{}, ErrDuplicateSubmission
		}
		return dto.SubmissionResponse{}, err
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", created.ID).Uint("assignment_id", assignment.ID).Uint("student_id", actor.ID).Msg("submission created")

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) ListMine(ctx context.Context, actor Actor) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) ListForAssignment(ctx context.Context, actor Actor, assignmentID uint) ([]dto.SubmissionResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	if assignment.TeacherID != actor.ID {
		return nil, ErrNotOwner
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) MarkReviewed(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/classwork-go/internal/service/submission")
	ctx, span := tracer.Start(ctx, "submission.review")
	span.SetAttributes(
		attribute.Int64("review.submission_id", int64(id)),
		attribute.Int64("review.actor_id", int64(actor.ID)),
	)
	defer span.End()

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	if submission.Assignment.TeacherID != actor.ID {
		span.SetStatus(codes.Error, "not_owner")
		return dto.SubmissionResponse{}, ErrNotOwner
	}

	// Reviewing is one-way and idempotent: a second call returns the
	// stored record without touching the timestamp.
	if submission.IsReviewed {
		span.SetAttributes(attribute.Bool("review.idempotent", true))
		return dto.NewSubmissionResponse(submission), nil
	}

	reviewedAt := s.now()
	submission.IsReviewed = true
	submission.ReviewedAt = &reviewedAt

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	if s.activity != nil {
		submissionID := submission.ID
		if err := s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "submission.reviewed",
			EntityType: "submission",
			EntityID:   &submissionID,
			Metadata: map[string]interface{}{
				"assignment_id": submission.AssignmentID,
				"student_id":    submission.StudentID,
			},
		}); err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to record activity")
		}
	}

	s.logger.Info().Uint("submission_id", submission.ID).Msg("submission reviewed")

	return dto.NewSubmissionResponse(submission), nil
}
