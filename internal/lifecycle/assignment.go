// Package lifecycle implements the two workflow state machines of the
// platform: the teacher-driven assignment lifecycle and the student
// submission lifecycle. Everything here is a pure function of its inputs
// so both the API service and the client-side boards share one rule set.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/classwork-go/internal/models"
)

// Field ceilings applied when creating assignments and submissions.
const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 1000
	MaxAnswerLen      = 2000
)

// ErrInvalidTransition indicates a status change that the assignment
// state machine does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// FieldError reports a creation-time validation failure tied to a single
// input field, so callers can surface it inline next to that field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// NextStatus returns the only status reachable from current. The second
// return value is false for terminal or unknown states.
func NextStatus(current string) (string, bool) {
	switch current {
	case models.AssignmentStatusDraft:
		return models.AssignmentStatusPublished, true
	case models.AssignmentStatusPublished:
		return models.AssignmentStatusCompleted, true
	default:
		return "", false
	}
}

// CanTransition reports whether current may move to target. Transitions
// are monotonic and never skip a state.
func CanTransition(current, target string) bool {
	next, ok := NextStatus(current)
	return ok && next == target
}

// Transition validates a status change, returning ErrInvalidTransition
// (wrapped with both states) when the move is not allowed.
func Transition(current, target string) error {
	if !CanTransition(current, target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target)
	}
	return nil
}

// CanPublish reports whether an assignment in the given status may be
// published.
func CanPublish(status string) bool {
	return CanTransition(status, models.AssignmentStatusPublished)
}

// CanComplete reports whether an assignment in the given status may be
// marked completed.
func CanComplete(status string) bool {
	return CanTransition(status, models.AssignmentStatusCompleted)
}

// IsOverdue reports whether now is strictly past the due date. Overdue is
// derived on every read and is monotonic in time.
func IsOverdue(dueDate, now time.Time) bool {
	return now.After(dueDate)
}

// ValidateNewAssignment checks the creation inputs: non-empty title and
// description within their ceilings, and a due date strictly later than
// the start of the current day.
func ValidateNewAssignment(title, description string, dueDate, now time.Time) error {
	if strings.TrimSpace(title) == "" {
		return &FieldError{Field: "title", Message: "title is required"}
	}
	if len(title) > MaxTitleLen {
		return &FieldError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", MaxTitleLen)}
	}
	if strings.TrimSpace(description) == "" {
		return &FieldError{Field: "description", Message: "description is required"}
	}
	if len(description) > MaxDescriptionLen {
		return &FieldError{Field: "description", Message: fmt.Sprintf("description must be at most %d characters", MaxDescriptionLen)}
	}
	if !dueDate.After(startOfDay(now)) {
		return &FieldError{Field: "dueDate", Message: "due date must be in the future"}
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
