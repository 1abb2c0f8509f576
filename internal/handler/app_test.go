package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/classwork-go/internal/models"
	"github.com/noah-isme/classwork-go/internal/testutil"
)

func setupTestApp(t *testing.T, name string) (*fiber.App, *gorm.DB) {
	return testutil.NewApp(t, name)
}

func createAppUser(t *testing.T, db *gorm.DB, name, email, password, role string) models.User {
	return testutil.CreateUser(t, db, name, email, password, role)
}

func createAppAssignment(t *testing.T, db *gorm.DB, teacherID uint, status string, due time.Time) models.Assignment {
	return testutil.CreateAssignment(t, db, teacherID, status, due)
}

func signTestToken(t *testing.T, user models.User) string {
	return testutil.SignToken(t, user)
}

func authorize(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()

	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
