// Package models contains data models for the job board service.
package models

import "time"

// User types recognised by the service. The column is free text; these are
// the values the frontend offers at registration.
const (
	UserTypeEmployer  = "employer"
	UserTypeJobSeeker = "job-seeker"
)

// User represents a registered account.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Phone        string    `json:"phone" gorm:"not null"`
	Type         string    `json:"type" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for the User model.
func (User) TableName() string {
	return "users"
}
