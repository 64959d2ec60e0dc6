package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kaojob/jobboard-service/internal/httputil"
	"github.com/kaojob/jobboard-service/internal/middleware"
	"github.com/kaojob/jobboard-service/internal/models"
	"github.com/kaojob/jobboard-service/internal/service"
)

// JobHandler handles job posting HTTP requests.
type JobHandler struct {
	jobService service.JobService
	responder  *httputil.Responder
}

// NewJobHandler creates a new JobHandler instance.
func NewJobHandler(jobService service.JobService, responder *httputil.Responder) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		responder:  responder,
	}
}

// CreateJobRequest represents the job posting payload. There is no owner
// field: the employer is always the authenticated caller.
type CreateJobRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Location    *string `json:"location"`
	WorkType    *string `json:"workType"`
	Salary      *string `json:"salary"`
	ContactInfo *string `json:"contactInfo"`
}

// JobListResponse wraps the public job list.
type JobListResponse struct {
	Jobs []models.JobListing `json:"jobs"`
}

// JobListingResponse wraps a single listing.
type JobListingResponse struct {
	Job *models.JobListing `json:"job"`
}

// JobResponse wraps a freshly created job.
type JobResponse struct {
	Job *models.Job `json:"job"`
}

// OKResponse is returned by endpoints with no payload.
type OKResponse struct {
	OK bool `json:"ok"`
}

// List godoc
// @Summary List jobs
// @Description Newest 100 job postings with employer name and email
// @Tags jobs
// @Produce json
// @Success 200 {object} JobListResponse
// @Failure 500 {object} httputil.ErrorResponse
// @Router /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.jobService.List(c.Request.Context())
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, JobListResponse{Jobs: jobs})
}

// Get godoc
// @Summary Get a job
// @Tags jobs
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} JobListingResponse
// @Failure 404 {object} httputil.ErrorResponse
// @Failure 500 {object} httputil.ErrorResponse
// @Router /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	id, ok := h.jobID(c)
	if !ok {
		return
	}

	job, err := h.jobService.Get(c.Request.Context(), id)
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, JobListingResponse{Job: job})
}

// Create godoc
// @Summary Post a job
// @Description Create a job owned by the caller
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateJobRequest true "Job posting"
// @Success 200 {object} JobResponse
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 401 {object} httputil.ErrorResponse
// @Failure 500 {object} httputil.ErrorResponse
// @Router /jobs [post]
func (h *JobHandler) Create(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		h.responder.Error(c, service.ErrUnauthorized)
		return
	}

	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.Error(c, bindError(err))
		return
	}

	job, err := h.jobService.Create(c.Request.Context(), identity.UserID, service.CreateJobInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		WorkType:    req.WorkType,
		Salary:      req.Salary,
		ContactInfo: req.ContactInfo,
	})
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, JobResponse{Job: job})
}

// Delete godoc
// @Summary Delete a job
// @Description Delete a job; only its owner may do so
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} OKResponse
// @Failure 401 {object} httputil.ErrorResponse
// @Failure 403 {object} httputil.ErrorResponse
// @Failure 404 {object} httputil.ErrorResponse
// @Failure 500 {object} httputil.ErrorResponse
// @Router /jobs/{id} [delete]
func (h *JobHandler) Delete(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		h.responder.Error(c, service.ErrUnauthorized)
		return
	}

	id, ok := h.jobID(c)
	if !ok {
		return
	}

	if err := h.jobService.Delete(c.Request.Context(), id, identity.UserID); err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, OKResponse{OK: true})
}

// jobID parses the :id path parameter. An id that is not a positive integer
// cannot name a job, so it is reported as not found.
func (h *JobHandler) jobID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.responder.Error(c, service.ErrNotFound)
		return 0, false
	}
	return id, true
}
