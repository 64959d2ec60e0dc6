package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kaojob/jobboard-service/internal/cache"
	"github.com/kaojob/jobboard-service/internal/metrics"
	"github.com/kaojob/jobboard-service/internal/models"
	"github.com/kaojob/jobboard-service/internal/repository"
)

// RecentJobsLimit caps the public job list.
const RecentJobsLimit = 100

// CreateJobInput carries the fields of a new posting. The owner is never part
// of the input; it comes from the verified token.
type CreateJobInput struct {
	Title       string
	Description string
	Location    *string
	WorkType    *string
	Salary      *string
	ContactInfo *string
}

// JobService manages job postings.
type JobService interface {
	Create(ctx context.Context, employerID int64, in CreateJobInput) (*models.Job, error)
	List(ctx context.Context) ([]models.JobListing, error)
	Get(ctx context.Context, id int64) (*models.JobListing, error)
	Delete(ctx context.Context, id, requesterID int64) error
}

type jobService struct {
	jobRepo repository.JobRepository
	cache   cache.JobListCache
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewJobService creates a new JobService instance. A nil cache disables
// caching of the job list.
func NewJobService(jobRepo repository.JobRepository, jobCache cache.JobListCache, recorder metrics.Recorder, logger *slog.Logger) JobService {
	if jobCache == nil {
		jobCache = cache.Noop{}
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &jobService{
		jobRepo: jobRepo,
		cache:   jobCache,
		metrics: recorder,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *jobService) Create(ctx context.Context, employerID int64, in CreateJobInput) (*models.Job, error) {
	if blank(in.Title) || blank(in.Description) {
		return nil, ErrMissingFields
	}

	// Postgres keeps microseconds; truncate so the response matches later reads.
	job := &models.Job{
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		WorkType:    in.WorkType,
		Salary:      in.Salary,
		ContactInfo: in.ContactInfo,
		EmployerID:  employerID,
		Status:      models.JobStatusActive,
		DatePosted:  s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	s.metrics.JobCreated()
	s.invalidate(ctx)

	return job, nil
}

// List serves the newest jobs from the cache when possible. Cache errors are
// logged and never fail the request.
func (s *jobService) List(ctx context.Context) ([]models.JobListing, error) {
	jobs, gen, err := s.cache.Get(ctx)
	switch {
	case err == nil:
		s.metrics.CacheLookup(true)
		return jobs, nil
	case errors.Is(err, cache.ErrMiss):
		s.metrics.CacheLookup(false)
	default:
		s.metrics.CacheLookup(false)
		s.logger.WarnContext(ctx, "job list cache read failed", "error", err)
		gen = -1
	}

	jobs, err = s.jobRepo.ListRecent(ctx, RecentJobsLimit)
	if err != nil {
		return nil, err
	}

	if gen >= 0 {
		if err := s.cache.Set(ctx, gen, jobs); err != nil {
			s.logger.WarnContext(ctx, "job list cache write failed", "error", err)
		}
	}
	return jobs, nil
}

func (s *jobService) Get(ctx context.Context, id int64) (*models.JobListing, error) {
	job, err := s.jobRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return nil, err
	}
	return job, nil
}

// Delete removes a job only when requesterID owns it. The ownership check and
// the delete run in one locked transaction in the repository.
func (s *jobService) Delete(ctx context.Context, id, requesterID int64) error {
	err := s.jobRepo.DeleteOwned(ctx, id, requesterID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repository.ErrNotOwner):
		return fmt.Errorf("%w: %v", ErrForbidden, err)
	default:
		return err
	}
	s.metrics.JobDeleted()
	s.invalidate(ctx)
	return nil
}

func (s *jobService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "job list cache invalidation failed", "error", err)
	}
}
