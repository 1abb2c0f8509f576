package lifecycle_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classwork-go/internal/lifecycle"
)

func TestCanSubmit(t *testing.T) {
	due := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	before := due.Add(-time.Hour)
	after := due.Add(time.Hour)

	cases := []struct {
		name          string
		hasSubmission bool
		now           time.Time
		want          bool
	}{
		{"open and unsubmitted", false, before, true},
		{"already submitted", true, before, false},
		{"overdue", false, after, false},
		{"submitted and overdue", true, after, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, lifecycle.CanSubmit(due, tc.hasSubmission, tc.now))
		})
	}
}

func TestSubmissionStateFor(t *testing.T) {
	due := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	before := due.Add(-time.Hour)
	after := due.Add(time.Hour)

	// A submission wins over overdue.
	require.Equal(t, lifecycle.SubmissionSubmitted, lifecycle.SubmissionStateFor(due, true, before))
	require.Equal(t, lifecycle.SubmissionSubmitted, lifecycle.SubmissionStateFor(due, true, after))
	require.Equal(t, lifecycle.SubmissionOverdue, lifecycle.SubmissionStateFor(due, false, after))
	require.Equal(t, lifecycle.SubmissionAvailable, lifecycle.SubmissionStateFor(due, false, before))
}

func TestValidateAnswer(t *testing.T) {
	require.NoError(t, lifecycle.ValidateAnswer("42"))
	require.NoError(t, lifecycle.ValidateAnswer(strings.Repeat("a", 2000)))

	for name, answer := range map[string]string{
		"empty":    "",
		"blank":    "  \n ",
		"too long": strings.Repeat("a", 2001),
	} {
		t.Run(name, func(t *testing.T) {
			err := lifecycle.ValidateAnswer(answer)
			require.Error(t, err)

			var fieldErr *lifecycle.FieldError
			require.True(t, errors.As(err, &fieldErr))
			require.Equal(t, "answer", fieldErr.Field)
		})
	}
}
