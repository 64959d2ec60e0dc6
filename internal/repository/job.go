package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kaojob/jobboard-service/internal/models"
)

// ErrNotOwner is returned by DeleteOwned when the requester does not own the job.
var ErrNotOwner = errors.New("job owned by another user")

const listingSelect = "jobs.*, COALESCE(users.name, '') AS employer_name, COALESCE(users.email, '') AS employer_email"

// JobRepository defines the interface for job data operations.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	ListRecent(ctx context.Context, limit int) ([]models.JobListing, error)
	FindByID(ctx context.Context, id int64) (*models.JobListing, error)
	DeleteOwned(ctx context.Context, id, employerID int64) error
}

type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository instance.
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", translate(err))
	}
	return nil
}

func (r *jobRepository) ListRecent(ctx context.Context, limit int) ([]models.JobListing, error) {
	jobs := make([]models.JobListing, 0, limit)
	err := r.listings(ctx).
		Order("jobs.date_posted DESC").
		Order("jobs.id DESC").
		Limit(limit).
		Scan(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	for i := range jobs {
		jobs[i].DatePosted = jobs[i].DatePosted.UTC()
	}
	return jobs, nil
}

func (r *jobRepository) FindByID(ctx context.Context, id int64) (*models.JobListing, error) {
	var job models.JobListing
	result := r.listings(ctx).Where("jobs.id = ?", id).Limit(1).Scan(&job)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find job %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("failed to find job %d: %w", id, ErrNotFound)
	}
	job.DatePosted = job.DatePosted.UTC()
	return &job, nil
}

// DeleteOwned locks the job row, checks ownership and deletes it in one
// transaction. Returns ErrNotFound or ErrNotOwner without deleting anything.
func (r *jobRepository) DeleteOwned(ctx context.Context, id, employerID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.Job
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "employer_id").
			Where("id = ?", id).
			Take(&job).Error
		if err != nil {
			return translate(err)
		}
		if job.EmployerID != employerID {
			return ErrNotOwner
		}
		return tx.Delete(&models.Job{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete job %d: %w", id, err)
	}
	return nil
}

func (r *jobRepository) listings(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("jobs").
		Select(listingSelect).
		Joins("LEFT JOIN users ON users.id = jobs.employer_id")
}
