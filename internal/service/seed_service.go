package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/classwork-go/internal/models"
	"github.com/noah-isme/classwork-go/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedAccount describes a demo account to create.
type SeedAccount struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// SeedService provisions demo accounts and assignments for environments
// that allow it.
type SeedService interface {
	SeedAccounts(ctx context.Context, token string, accounts []SeedAccount) (int64, error)
	SeedAssignments(ctx context.Context, token string, teacherEmail string, items []models.Assignment) (int64, error)
}

type seedService struct {
	users       repository.UserRepository
	assignments repository.AssignmentRepository
	enabled     bool
	token       string
	logger      zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(users repository.UserRepository, assignments repository.AssignmentRepository, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		users:       users,
		assignments: assignments,
		enabled:     enabled,
		token:       token,
		logger:      logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedAccounts(ctx context.Context, token string, accounts []SeedAccount) (int64, error) {
	if !s.enabled {
		return 0, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return 0, ErrSeedUnauthorized
	}

	var created int64
	for _, account := range accounts {
		email := strings.ToLower(strings.TrimSpace(account.Email))
		if email == "" || account.Password == "" {
			continue
		}

		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
		if err != nil {
			return created, err
		}

		role := strings.ToLower(strings.TrimSpace(account.Role))
		if role != models.RoleTeacher {
			role = models.RoleStudent
		}

		user := models.User{
			Name:         strings.TrimSpace(account.Name),
			Email:        email,
			PasswordHash: string(hash),
			Role:         role,
		}
		if err := s.users.Create(ctx, &user); err != nil {
			return created, err
		}
		created++
	}

	s.logger.Info().Int64("created", created).Msg("accounts seeded")
	return created, nil
}

func (s *seedService) SeedAssignments(ctx context.Context, token string, teacherEmail string, items []models.Assignment) (int64, error) {
	if !s.enabled {
		return 0, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return 0, ErrSeedUnauthorized
	}

	teacher, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(teacherEmail)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	if !teacher.IsTeacher() {
		return 0, ErrTeacherOnly
	}

	normalized := normalizeSeedAssignments(items, teacher.ID)
	var created int64
	for i := range normalized {
		if err := s.assignments.Create(ctx, &normalized[i]); err != nil {
			return created, err
		}
		created++
	}

	s.logger.Info().Int64("created", created).Uint("teacher_id", teacher.ID).Msg("assignments seeded")
	return created, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return constantTimeEqual(expected, strings.TrimSpace(token))
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	mismatch := byte(0)
	for i := 0; i < len(a); i++ {
		mismatch |= a[i] ^ b[i]
	}
	return mismatch == 0
}

func normalizeSeedAssignments(items []models.Assignment, teacherID uint) []models.Assignment {
	now := time.Now()
	for i := range items {
		items[i].ID = 0
		items[i].TeacherID = teacherID
		if items[i].DueDate.IsZero() {
			items[i].DueDate = now.AddDate(0, 0, 7)
		}
		switch items[i].Status {
		case models.AssignmentStatusPublished, models.AssignmentStatusCompleted:
		default:
			items[i].Status = models.AssignmentStatusDraft
		}
	}
	return items
}
