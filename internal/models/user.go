package models

import "time"

// Roles a user account can hold.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User represents a platform account, either a teacher or a student.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:16;not null" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsTeacher reports whether the account may manage assignments.
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}
