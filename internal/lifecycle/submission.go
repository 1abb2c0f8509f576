package lifecycle

import (
	"fmt"
	"strings"
	"time"
)

// Submission states derived for display from an assignment and the
// presence of the student's submission.
const (
	SubmissionSubmitted = "submitted"
	SubmissionOverdue   = "overdue"
	SubmissionAvailable = "available"
)

// CanSubmit reports whether a student may create a submission for an
// assignment: no submission exists for the pair and the deadline has not
// passed. Once either condition flips, submission is permanently blocked.
func CanSubmit(dueDate time.Time, hasSubmission bool, now time.Time) bool {
	return !hasSubmission && !IsOverdue(dueDate, now)
}

// SubmissionStateFor derives the display status for an assignment from
// the student's perspective. An existing submission wins over overdue.
func SubmissionStateFor(dueDate time.Time, hasSubmission bool, now time.Time) string {
	switch {
	case hasSubmission:
		return SubmissionSubmitted
	case IsOverdue(dueDate, now):
		return SubmissionOverdue
	default:
		return SubmissionAvailable
	}
}

// ValidateAnswer checks a submission answer at creation time: non-empty
// and within the answer ceiling. Existing answers are displayed as-is.
func ValidateAnswer(answer string) error {
	if strings.TrimSpace(answer) == "" {
		return &FieldError{Field: "answer", Message: "answer is required"}
	}
	if len(answer) > MaxAnswerLen {
		return &FieldError{Field: "answer", Message: fmt.Sprintf("answer must be at most %d characters", MaxAnswerLen)}
	}
	return nil
}
