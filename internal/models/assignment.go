package models

import "time"

// Assignment lifecycle states. Transitions are one-directional:
// draft -> published -> completed.
const (
	AssignmentStatusDraft     = "draft"
	AssignmentStatusPublished = "published"
	AssignmentStatusCompleted = "completed"
)

// Assignment represents a unit of work published by a teacher with a deadline.
type Assignment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	DueDate     time.Time `gorm:"not null" json:"due_date"`
	Status      string    `gorm:"size:16;not null;default:draft" json:"status"`
	TeacherID   uint      `gorm:"not null;index" json:"teacher_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Teacher     User      `gorm:"foreignKey:TeacherID" json:"teacher"`
	Submissions []Submission
}

// IsPastDue returns true when the assignment deadline has already passed.
// Derived from the clock on every call, never stored.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}
