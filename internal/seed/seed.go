// Package seed loads demo accounts and jobs into an empty installation.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kaojob/jobboard-service/internal/models"
	"github.com/kaojob/jobboard-service/internal/service"
)

// DemoPassword is shared by every demo account.
const DemoPassword = "demo123"

// EmployerEmail owns the demo jobs.
const EmployerEmail = "employer@kaojob.com"

var demoUsers = []service.RegisterInput{
	{Name: "Demo Employer", Email: EmployerEmail, Password: DemoPassword, Type: models.UserTypeEmployer},
	{Name: "Demo Jobseeker", Email: "jobseeker@kaojob.com", Password: DemoPassword, Type: models.UserTypeJobSeeker},
}

func strPtr(s string) *string { return &s }

var demoJobs = []service.CreateJobInput{
	{
		Title:       "Barista",
		Description: "Part-time coffee shop position for experienced staff",
		Location:    strPtr("Bangkok"),
		WorkType:    strPtr("Part-time"),
		Salary:      strPtr("฿15,000 - ฿18,000/month"),
		ContactInfo: strPtr("contact@greencafe.com"),
	},
	{
		Title:       "Office Assistant",
		Description: "Full-time administrative support position",
		Location:    strPtr("Bangkok"),
		WorkType:    strPtr("Full-time"),
		Salary:      strPtr("฿20,000/month"),
		ContactInfo: strPtr("hr@bangkokoffice.com"),
	},
}

// Run creates the demo users that do not exist yet and, when there are no
// jobs at all, the demo jobs. Running it again changes nothing.
func Run(ctx context.Context, auth service.AuthService, jobs service.JobService, logger *slog.Logger) error {
	var (
		employerID int64
		skipJobs   bool
	)

	for _, u := range demoUsers {
		resp, err := auth.Register(ctx, u)
		switch {
		case err == nil:
			logger.InfoContext(ctx, "seeded user", "email", u.Email)
		case errors.Is(err, service.ErrEmailExists):
			if u.Email != EmployerEmail {
				continue
			}
			resp, err = auth.Login(ctx, u.Email, u.Password)
			if err != nil {
				logger.WarnContext(ctx, "demo employer exists with another password, skipping demo jobs", "error", err)
				skipJobs = true
				continue
			}
		default:
			return fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}

		if u.Email == EmployerEmail {
			employerID = resp.User.ID
		}
	}

	if skipJobs {
		return nil
	}

	existing, err := jobs.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing jobs: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, j := range demoJobs {
		if _, err := jobs.Create(ctx, employerID, j); err != nil {
			return fmt.Errorf("failed to seed job %q: %w", j.Title, err)
		}
	}
	logger.InfoContext(ctx, "seeded demo jobs", "count", len(demoJobs))
	return nil
}
