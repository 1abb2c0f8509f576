package lifecycle_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classwork-go/internal/lifecycle"
	"github.com/noah-isme/classwork-go/internal/models"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		name    string
		current string
		target  string
		allowed bool
	}{
		{"draft to published", models.AssignmentStatusDraft, models.AssignmentStatusPublished, true},
		{"published to completed", models.AssignmentStatusPublished, models.AssignmentStatusCompleted, true},
		{"draft to completed skips", models.AssignmentStatusDraft, models.AssignmentStatusCompleted, false},
		{"published back to draft", models.AssignmentStatusPublished, models.AssignmentStatusDraft, false},
		{"completed is terminal", models.AssignmentStatusCompleted, models.AssignmentStatusPublished, false},
		{"completed to draft", models.AssignmentStatusCompleted, models.AssignmentStatusDraft, false},
		{"publish twice", models.AssignmentStatusPublished, models.AssignmentStatusPublished, false},
		{"unknown status", "archived", models.AssignmentStatusPublished, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.allowed, lifecycle.CanTransition(tc.current, tc.target))

			err := lifecycle.Transition(tc.current, tc.target)
			if tc.allowed {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
			}
		})
	}
}

func TestNextStatus(t *testing.T) {
	next, ok := lifecycle.NextStatus(models.AssignmentStatusDraft)
	require.True(t, ok)
	require.Equal(t, models.AssignmentStatusPublished, next)

	next, ok = lifecycle.NextStatus(models.AssignmentStatusPublished)
	require.True(t, ok)
	require.Equal(t, models.AssignmentStatusCompleted, next)

	_, ok = lifecycle.NextStatus(models.AssignmentStatusCompleted)
	require.False(t, ok)
}

func TestCanPublishAndComplete(t *testing.T) {
	require.True(t, lifecycle.CanPublish(models.AssignmentStatusDraft))
	require.False(t, lifecycle.CanPublish(models.AssignmentStatusPublished))
	require.False(t, lifecycle.CanPublish(models.AssignmentStatusCompleted))

	require.True(t, lifecycle.CanComplete(models.AssignmentStatusPublished))
	require.False(t, lifecycle.CanComplete(models.AssignmentStatusDraft))
	require.False(t, lifecycle.CanComplete(models.AssignmentStatusCompleted))
}

func TestIsOverdueMonotonic(t *testing.T) {
	due := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	require.False(t, lifecycle.IsOverdue(due, due.Add(-time.Minute)))
	require.False(t, lifecycle.IsOverdue(due, due))
	require.True(t, lifecycle.IsOverdue(due, due.Add(time.Second)))
	require.True(t, lifecycle.IsOverdue(due, due.Add(24*time.Hour)))
}

func TestValidateNewAssignment(t *testing.T) {
	now := time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)
	tomorrow := now.Add(24 * time.Hour)

	require.NoError(t, lifecycle.ValidateNewAssignment("HW1", "desc", tomorrow, now))

	// Later the same day is still allowed; the rule is "after start of
	// the current day", not "after now".
	require.NoError(t, lifecycle.ValidateNewAssignment("HW1", "desc", now.Add(time.Hour), now))

	cases := []struct {
		name        string
		title       string
		description string
		due         time.Time
		field       string
	}{
		{"empty title", "", "desc", tomorrow, "title"},
		{"blank title", "   ", "desc", tomorrow, "title"},
		{"title too long", strings.Repeat("a", 101), "desc", tomorrow, "title"},
		{"empty description", "HW1", "", tomorrow, "description"},
		{"description too long", "HW1", strings.Repeat("b", 1001), tomorrow, "description"},
		{"due yesterday", "HW1", "desc", now.Add(-24 * time.Hour), "dueDate"},
		{"due at start of today", "HW1", "desc", time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), "dueDate"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := lifecycle.ValidateNewAssignment(tc.title, tc.description, tc.due, now)
			require.Error(t, err)

			var fieldErr *lifecycle.FieldError
			require.True(t, errors.As(err, &fieldErr))
			require.Equal(t, tc.field, fieldErr.Field)
		})
	}

	// Ceiling boundaries are inclusive.
	require.NoError(t, lifecycle.ValidateNewAssignment(strings.Repeat("a", 100), strings.Repeat("b", 1000), tomorrow, now))
}
