package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classwork-go/internal/dto"
	"github.com/noah-isme/classwork-go/internal/models"
)

func TestAssignmentHandlerCreateAndTransitions(t *testing.T) {
	app, db := setupTestApp(t, "assignment_lifecycle")
	teacher := createAppUser(t, db, "Grace", "grace@example.com", "pw", models.RoleTeacher)
	token := signTestToken(t, teacher)

	payload, err := json.Marshal(map[string]string{
		"title":       "Essay",
		"description": "Write 500 words",
		"dueDate":     time.Now().AddDate(0, 0, 7).UTC().Format(time.RFC3339),
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/assignments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	authorize(req, token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var created struct {
		Success bool                   `json:"success"`
		Data    dto.AssignmentResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &created)
	require.Equal(t, "assignment created", created.Message)
	require.Equal(t, models.AssignmentStatusDraft, created.Data.Status)
	require.Equal(t, "Grace", created.Data.Teacher.Name)

	publishURL := fmt.Sprintf("/api/v1/assignments/%d/publish", created.Data.ID)
	req = httptest.NewRequest("PUT", publishURL, nil)
	authorize(req, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var published struct {
		Data dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &published)
	require.Equal(t, models.AssignmentStatusPublished, published.Data.Status)

	// A second publish is an invalid transition.
	req = httptest.NewRequest("PUT", publishURL, nil)
	authorize(req, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	completeURL := fmt.Sprintf("/api/v1/assignments/%d/complete", created.Data.ID)
	req = httptest.NewRequest("PUT", completeURL, nil)
	authorize(req, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var completed struct {
		Data dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &completed)
	require.Equal(t, models.AssignmentStatusCompleted, completed.Data.Status)
}

func TestAssignmentHandlerCreateValidation(t *testing.T) {
	app, db := setupTestApp(t, "assignment_validation")
	teacher := createAppUser(t, db, "Grace", "grace@example.com", "pw", models.RoleTeacher)
	token := signTestToken(t, teacher)

	// Yesterday fails the due date rule.
	payload, err := json.Marshal(map[string]string{
		"title":       "Essay",
		"description": "Write 500 words",
		"dueDate":     time.Now().AddDate(0, 0, -1).UTC().Format(time.RFC3339),
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/assignments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	authorize(req, token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var errBody struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &errBody)
	require.False(t, errBody.Success)
	require.Contains(t, errBody.Message, "dueDate")
}

func TestAssignmentHandlerStudentCannotMutate(t *testing.T) {
	app, db := setupTestApp(t, "assignment_roles")
	teacher := createAppUser(t, db, "Grace", "grace@example.com", "pw", models.RoleTeacher)
	student := createAppUser(t, db, "Sam", "sam@example.com", "pw", models.RoleStudent)
	assignment := createAppAssignment(t, db, teacher.ID, models.AssignmentStatusDraft, time.Now().AddDate(0, 0, 7))
	studentToken := signTestToken(t, student)

	payload, err := json.Marshal(map[string]string{
		"title":       "Essay",
		"description": "Write 500 words",
		"dueDate":     time.Now().AddDate(0, 0, 7).UTC().Format(time.RFC3339),
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/assignments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	authorize(req, studentToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("PUT", fmt.Sprintf("/api/v1/assignments/%d/publish", assignment.ID), nil)
	authorize(req, studentToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAssignmentHandlerTransitionOwnership(t *testing.T) {
	app, db := setupTestApp(t, "assignment_ownership")
	owner := createAppUser(t, db, "Grace", "grace@example.com", "pw", models.RoleTeacher)
	other := createAppUser(t, db, "Mallory", "mallory@example.com", "pw", models.RoleTeacher)
	assignment := createAppAssignment(t, db, owner.ID, models.AssignmentStatusDraft, time.Now().AddDate(0, 0, 7))

	req := httptest.NewRequest("PUT", fmt.Sprintf("/api/v1/assignments/%d/publish", assignment.ID), nil)
	authorize(req, signTestToken(t, other))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("PUT", "/api/v1/assignments/9999/publish", nil)
	authorize(req, signTestToken(t, owner))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAssignmentHandlerGetIsRoleScoped(t *testing.T) {
	app, db := setupTestApp(t, "assignment_get_scoping")
	owner := createAppUser(t, db, "Grace", "grace@example.com", "pw", models.RoleTeacher)
	other := createAppUser(t, db, "Mallory", "mallory@example.com", "pw", models.RoleTeacher)
	student := createAppUser(t, db, "Sam", "sam@example.com", "pw", models.RoleStudent)

	due := time.Now().AddDate(0, 0, 7)
	draft := createAppAssignment(t, db, owner.ID, models.AssignmentStatusDraft, due)
	published := createAppAssignment(t, db, owner.ID, models.AssignmentStatusPublished, due)

	get := func(id uint, token string) *http.Response {
		req := httptest.NewRequest("GET", fmt.Sprintf("/api/v1/assignments/%d", id), nil)
		authorize(req, token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	// A student never sees another teacher's draft.
	resp := get(draft.ID, signTestToken(t, student))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Published assignments are visible to students.
	resp = get(published.ID, signTestToken(t, student))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var fetched struct {
		Data dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &fetched)
	require.Equal(t, published.ID, fetched.Data.ID)

	// The owner sees their draft; other teachers do not.
	resp = get(draft.ID, signTestToken(t, owner))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = get(published.ID, signTestToken(t, other))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAssignmentHandlerListIsRoleScoped(t *testing.T) {
	app, db := setupTestApp(t, "assignment_listing")
	teacher := createAppUser(t, db, "Grace", "grace@example.com", "pw", models.RoleTeacher)
	student := createAppUser(t, db, "Sam", "sam@example.com", "pw", models.RoleStudent)

	due := time.Now().AddDate(0, 0, 7)
	createAppAssignment(t, db, teacher.ID, models.AssignmentStatusDraft, due)
	createAppAssignment(t, db, teacher.ID, models.AssignmentStatusPublished, due)

	req := httptest.NewRequest("GET", "/api/v1/assignments", nil)
	authorize(req, signTestToken(t, teacher))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var teacherList struct {
		Data []dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &teacherList)
	require.Len(t, teacherList.Data, 2)

	req = httptest.NewRequest("GET", "/api/v1/assignments", nil)
	authorize(req, signTestToken(t, student))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var studentList struct {
		Data []dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &studentList)
	require.Len(t, studentList.Data, 1)
	require.Equal(t, models.AssignmentStatusPublished, studentList.Data[0].Status)
}
