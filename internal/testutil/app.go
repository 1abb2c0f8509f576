// Package testutil builds a fully wired in-memory application for
// integration-style tests: sqlite storage, real JWT middleware, and the
// complete route table.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/classwork-go/internal/config"
	"github.com/noah-isme/classwork-go/internal/handler"
	"github.com/noah-isme/classwork-go/internal/middleware"
	"github.com/noah-isme/classwork-go/internal/models"
	"github.com/noah-isme/classwork-go/internal/repository"
	"github.com/noah-isme/classwork-go/internal/router"
	"github.com/noah-isme/classwork-go/internal/service"
)

// JWTSecret signs tokens for test applications.
const JWTSecret = "test-secret"

// SeedToken guards the seed endpoints of test applications.
const SeedToken = "seed-secret"

// NewApp builds an application with every route registered against an
// isolated in-memory database.
func NewApp(t *testing.T, name string) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	// TranslateError matches the production connection, so duplicate
	// inserts surface as gorm.ErrDuplicatedKey here too.
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Assignment{}, &models.Submission{}, &models.ActivityLog{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	authService := service.NewAuthService(userRepo, validate, JWTSecret, time.Hour, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, validate, nil, time.Minute, activityService, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, activityService, logger)
	seedService := service.NewSeedService(userRepo, assignmentRepo, true, SeedToken, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", AppEnv: "test", JWTSecret: JWTSecret}, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, submissionService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		SeedHandler:       handler.NewSeedHandler(seedService, logger),
		JWTMiddleware:     middleware.JWTProtected(JWTSecret),
	})

	return app, db
}

// CreateUser inserts an account with a bcrypt password.
func CreateUser(t *testing.T, db *gorm.DB, name, email, password, role string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{Name: name, Email: email, PasswordHash: string(hash), Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// CreateAssignment inserts an assignment owned by the given teacher.
func CreateAssignment(t *testing.T, db *gorm.DB, teacherID uint, status string, due time.Time) models.Assignment {
	t.Helper()

	assignment := models.Assignment{
		Title:       "Lab Report",
		Description: "Submit the lab write-up",
		DueDate:     due,
		Status:      status,
		TeacherID:   teacherID,
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}

// SignToken issues a token for the user, signed with JWTSecret.
func SignToken(t *testing.T, user models.User) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  int64(user.ID),
		"role": user.Role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(JWTSecret))
	require.NoError(t, err)
	return token
}

// AppDoer routes client requests into an in-process application, so API
// clients can be exercised without a listening socket.
type AppDoer struct {
	App *fiber.App
}

// Do implements the client's transport against app.Test.
func (d *AppDoer) Do(req *http.Request) (*http.Response, error) {
	return d.App.Test(req, -1)
}
