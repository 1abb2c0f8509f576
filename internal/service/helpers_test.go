package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/classwork-go/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Assignment{}, &models.Submission{}, &models.ActivityLog{}))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name, email, role string) models.User {
	t.Helper()

	user := models.User{Name: name, Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestAssignment(t *testing.T, db *gorm.DB, teacherID uint, status string, dueDate time.Time) models.Assignment {
	t.Helper()

	assignment := models.Assignment{
		Title:       "Linear Algebra Problem Set",
		Description: "Solve exercises 1 through 10",
		DueDate:     dueDate,
		Status:      status,
		TeacherID:   teacherID,
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}
