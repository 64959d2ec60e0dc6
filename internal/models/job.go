package models

import "time"

// JobStatusActive is the status every job is created with.
const JobStatusActive = "Active"

// Job represents a posting owned by one employer.
type Job struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	Location    *string   `json:"location"`
	WorkType    *string   `json:"work_type" gorm:"column:work_type"`
	Salary      *string   `json:"salary"`
	ContactInfo *string   `json:"contact_info" gorm:"column:contact_info"`
	EmployerID  int64     `json:"employer_id" gorm:"not null;index"`
	Status      string    `json:"status" gorm:"not null"`
	DatePosted  time.Time `json:"date_posted" gorm:"not null"`
}

// TableName returns the database table name for the Job model.
func (Job) TableName() string {
	return "jobs"
}

// JobListing is a Job joined with its employer's public contact fields.
type JobListing struct {
	Job
	EmployerName  string `json:"employer_name"`
	EmployerEmail string `json:"employer_email"`
}
