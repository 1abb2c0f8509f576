package models

import "time"

// Submission represents a student's single immutable answer to one
// assignment. The composite unique index enforces at most one submission
// per (assignment, student) pair; the answer has no update path.
type Submission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;uniqueIndex:idx_submission_pair" json:"assignment_id"`
	StudentID    uint       `gorm:"not null;uniqueIndex:idx_submission_pair" json:"student_id"`
	Answer       string     `gorm:"size:2000;not null" json:"answer"`
	IsReviewed   bool       `gorm:"not null;default:false" json:"is_reviewed"`
	ReviewedAt   *time.Time `json:"reviewed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Assignment   Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student      User       `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}
