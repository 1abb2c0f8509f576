package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classwork-go/internal/dto"
	"github.com/noah-isme/classwork-go/internal/models"
)

func TestSubmissionHandlerSubmitAndReview(t *testing.T) {
	app, db := setupTestApp(t, "submission_flow")
	teacher := createAppUser(t, db, "Grace", "grace@example.com", "pw", models.RoleTeacher)
	student := createAppUser(t, db, "Sam", "sam@example.com", "pw", models.RoleStudent)
	assignment := createAppAssignment(t, db, teacher.ID, models.AssignmentStatusPublished, time.Now().AddDate(0, 0, 7))

	studentToken := signTestToken(t, student)
	teacherToken := signTestToken(t, teacher)

	payload, err := json.Marshal(map[string]interface{}{
		"assignmentId": assignment.ID,
		"answer":       "The answer is 42.",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/submissions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	authorize(req, studentToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var created struct {
		Success bool                   `json:"success"`
		Data    dto.SubmissionResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &created)
	require.Equal(t, "submission created", created.Message)
	require.Equal(t, assignment.ID, created.Data.Assignment.ID)
	require.False(t, created.Data.IsReviewed)

	// The student sees it in their own listing.
	req = httptest.NewRequest("GET", "/api/v1/submissions", nil)
	authorize(req, studentToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var mine struct {
		Data []dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &mine)
	require.Len(t, mine.Data, 1)

	// The teacher sees it under the assignment.
	req = httptest.NewRequest("GET", fmt.Sprintf("/api/v1/assignments/%d/submissions", assignment.ID), nil)
	authorize(req, teacherToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var forAssignment struct {
		Data []dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &forAssignment)
	require.Len(t, forAssignment.Data, 1)
	require.Equal(t, "Sam", forAssignment.Data[0].Student.Name)

	reviewURL := fmt.Sprintf("/api/v1/submissions/%d/review", created.Data.ID)
	req = httptest.NewRequest("PUT", reviewURL, nil)
	authorize(req, teacherToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var reviewed struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &reviewed)
	require.True(t, reviewed.Data.IsReviewed)
	require.NotNil(t, reviewed.Data.ReviewedAt)

	// Reviewing again succeeds without changing the stored timestamp.
	req = httptest.NewRequest("PUT", reviewURL, nil)
	authorize(req, teacherToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var again struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &again)
	require.True(t, again.Data.IsReviewed)
	require.Equal(t, reviewed.Data.ReviewedAt.UTC(), again.Data.ReviewedAt.UTC())
}

func TestSubmissionHandlerDuplicateConflicts(t *testing.T) {
	app, db := setupTestApp(t, "submission_duplicate")
	teacher := createAppUser(t, db, "Grace", "grace@example.com", "pw", models.RoleTeacher)
	student := createAppUser(t, db, "Sam", "sam@example.com", "pw", models.RoleStudent)
	assignment := createAppAssignment(t, db, teacher.ID, models.AssignmentStatusPublished, time.Now().AddDate(0, 0, 7))
	token := signTestToken(t, student)

	payload, err := json.Marshal(map[string]interface{}{
		"assignmentId": assignment.ID,
		"answer":       "first try",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/submissions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	authorize(req, token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("POST", "/api/v1/submissions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	authorize(req, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var errBody struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &errBody)
	require.False(t, errBody.Success)
	require.Equal(t, "you have already submitted this assignment", errBody.Message)
}

func TestSubmissionHandlerRejectsClosedAssignments(t *testing.T) {
	app, db := setupTestApp(t, "submission_closed")
	teacher := createAppUser(t, db, "Grace", "grace@example.com", "pw", models.RoleTeacher)
	student := createAppUser(t, db, "Sam", "sam@example.com", "pw", models.RoleStudent)
	token := signTestToken(t, student)

	draft := createAppAssignment(t, db, teacher.ID, models.AssignmentStatusDraft, time.Now().AddDate(0, 0, 7))
	overdue := createAppAssignment(t, db, teacher.ID, models.AssignmentStatusPublished, time.Now().Add(-time.Hour))

	for _, tc := range []struct {
		name         string
		assignmentID uint
		wantMessage  string
	}{
		{"draft assignment", draft.ID, "assignment is not accepting submissions"},
		{"overdue assignment", overdue.ID, "assignment is past due"},
	} {
		payload, err := json.Marshal(map[string]interface{}{
			"assignmentId": tc.assignmentID,
			"answer":       "too late or too early",
		})
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/api/v1/submissions", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		authorize(req, token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err, tc.name)
		require.Equal(t, fiber.StatusConflict, resp.StatusCode, tc.name)

		var errBody struct {
			Message string `json:"message"`
		}
		decodeResponse(t, resp, &errBody)
		require.Equal(t, tc.wantMessage, errBody.Message, tc.name)
	}
}

func TestSubmissionHandlerRoleGuards(t *testing.T) {
	app, db := setupTestApp(t, "submission_roles")
	teacher := createAppUser(t, db, "Grace", "grace@example.com", "pw", models.RoleTeacher)
	student := createAppUser(t, db, "Sam", "sam@example.com", "pw", models.RoleStudent)
	assignment := createAppAssignment(t, db, teacher.ID, models.AssignmentStatusPublished, time.Now().AddDate(0, 0, 7))

	submission := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, Answer: "done"}
	require.NoError(t, db.Create(&submission).Error)

	// Students cannot review.
	req := httptest.NewRequest("PUT", fmt.Sprintf("/api/v1/submissions/%d/review", submission.ID), nil)
	authorize(req, signTestToken(t, student))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Teachers cannot submit answers.
	payload, err := json.Marshal(map[string]interface{}{"assignmentId": assignment.ID, "answer": "cheating"})
	require.NoError(t, err)
	req = httptest.NewRequest("POST", "/api/v1/submissions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	authorize(req, signTestToken(t, teacher))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// A different teacher cannot list or review another teacher's submissions.
	other := createAppUser(t, db, "Mallory", "mallory@example.com", "pw", models.RoleTeacher)
	req = httptest.NewRequest("GET", fmt.Sprintf("/api/v1/assignments/%d/submissions", assignment.ID), nil)
	authorize(req, signTestToken(t, other))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
