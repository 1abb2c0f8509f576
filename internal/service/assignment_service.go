package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/classwork-go/internal/dto"
	"github.com/noah-isme/classwork-go/internal/lifecycle"
	"github.com/noah-isme/classwork-go/internal/models"
	"github.com/noah-isme/classwork-go/internal/repository"
)

// ErrAssignmentNotFound indicates the requested assignment does not exist.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrNotOwner indicates the caller does not own the targeted assignment.
var ErrNotOwner = errors.New("assignment belongs to another teacher")

// ErrTeacherOnly indicates the operation is restricted to teachers.
var ErrTeacherOnly = errors.New("only teachers may perform this action")

const publishedListCacheKey = "assignments:published"

func teacherListCacheKey(teacherID uint) string {
	return fmt.Sprintf("assignments:teacher:%d", teacherID)
}

// AssignmentService exposes the teacher assignment workflow: role-scoped
// listing, creation in draft, and the publish/complete transitions.
type AssignmentService interface {
	ListFor(ctx context.Context, actor Actor) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Publish(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error)
	Complete(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error)
}

type assignmentService struct {
	repo      repository.AssignmentRepository
	validator *validator.Validate
	cache     *redis.Client
	cacheTTL  time.Duration
	activity  ActivityRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAssignmentService builds a new assignment service. The cache client
// may be nil, in which case listings always hit the database.
func NewAssignmentService(repo repository.AssignmentRepository, validate *validator.Validate, cache *redis.Client, cacheTTL time.Duration, activity ActivityRecorder, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		repo:      repo,
		validator: validate,
		cache:     cache,
		cacheTTL:  cacheTTL,
		activity:  activity,
		logger:    logger.With().Str("component", "assignment_service").Logger(),
		now:       time.Now,
	}
}

func (s *assignmentService) ListFor(ctx context.Context, actor Actor) ([]dto.AssignmentResponse, error) {
	cacheKey := publishedListCacheKey
	if actor.Role == models.RoleTeacher {
		cacheKey = teacherListCacheKey(actor.ID)
	}

	if cached, ok := s.readCache(ctx, cacheKey); ok {
		return cached, nil
	}

	var (
		assignments []models.Assignment
		err         error
	)
	if actor.Role == models.RoleTeacher {
		assignments, err = s.repo.ListByTeacher(ctx, actor.ID)
	} else {
		assignments, err = s.repo.ListByStatus(ctx, models.AssignmentStatusPublished)
	}
	if err != nil {
		return nil, err
	}

	responses := dto.NewAssignmentResponseSlice(assignments)
	s.writeCache(ctx, cacheKey, responses)

	return responses, nil
}

// Get applies the same visibility rules as ListFor: teachers see their
// own assignments, students see published ones. Anything outside the
// caller's scope reads as not found.
func (s *assignmentService) Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if actor.Role == models.RoleTeacher {
		if assignment.TeacherID != actor.ID {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
	} else if assignment.Status != models.AssignmentStatusPublished {
		return dto.AssignmentResponse{}, ErrAssignmentNotFound
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if actor.Role != models.RoleTeacher {
		return dto.AssignmentResponse{}, ErrTeacherOnly
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, &lifecycle.FieldError{Field: "dueDate", Message: "invalid due date"}
	}

	if err := lifecycle.ValidateNewAssignment(payload.Title, payload.Description, dueDate, s.now()); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		Title:       payload.Title,
		Description: payload.Description,
		DueDate:     dueDate,
		Status:      models.AssignmentStatusDraft,
		TeacherID:   actor.ID,
	}

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	created, err := s.repo.GetByID(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.invalidateCaches(ctx, actor.ID)
	s.recordActivity(ctx, actor, "assignment.created", created.ID, map[string]interface{}{"title": created.Title})
	s.logger.Info().Uint("assignment_id", created.ID).Uint("teacher_id", actor.ID).Msg("assignment created")

	return dto.NewAssignmentResponse(created), nil
}

func (s *assignmentService) Publish(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error) {
	return s.transition(ctx, actor, id, models.AssignmentStatusPublished, "assignment.published")
}

func (s *assignmentService) Complete(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error) {
	return s.transition(ctx, actor, id, models.AssignmentStatusCompleted, "assignment.completed")
}

func (s *assignmentService) transition(ctx context.Context, actor Actor, id uint, target, action string) (dto.AssignmentResponse, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if assignment.TeacherID != actor.ID {
		return dto.AssignmentResponse{}, ErrNotOwner
	}

	if err := lifecycle.Transition(assignment.Status, target); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment.Status = target
	if err := s.repo.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.invalidateCaches(ctx, actor.ID)
	s.recordActivity(ctx, actor, action, assignment.ID, map[string]interface{}{"status": target})
	s.logger.Info().Uint("assignment_id", assignment.ID).Str("status", target).Msg("assignment status changed")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) readCache(ctx context.Context, key string) ([]dto.AssignmentResponse, bool) {
	if s.cache == nil {
		return nil, false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read assignment list cache")
		}
		return nil, false
	}

	var responses []dto.AssignmentResponse
	if err := json.Unmarshal([]byte(cached), &responses); err != nil {
		return nil, false
	}

	s.logger.Debug().Str("key", key).Msg("assignment list cache hit")
	return responses, true
}

func (s *assignmentService) writeCache(ctx context.Context, key string, responses []dto.AssignmentResponse) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(responses)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store assignment list cache")
	}
}

func (s *assignmentService) invalidateCaches(ctx context.Context, teacherID uint) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Del(ctx, teacherListCacheKey(teacherID), publishedListCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate assignment list cache")
	}
}

func (s *assignmentService) recordActivity(ctx context.Context, actor Actor, action string, assignmentID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}

	id := assignmentID
	if err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "assignment",
		EntityID:   &id,
		Metadata:   metadata,
	}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}
