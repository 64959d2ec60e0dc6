package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaojob/jobboard-service/internal/config"
	"github.com/kaojob/jobboard-service/internal/handlers"
	"github.com/kaojob/jobboard-service/internal/httputil"
	"github.com/kaojob/jobboard-service/internal/metrics"
	"github.com/kaojob/jobboard-service/internal/models"
	"github.com/kaojob/jobboard-service/internal/repository"
	"github.com/kaojob/jobboard-service/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// =============================================================================
// In-memory repositories
// =============================================================================

type memStore struct {
	mu     sync.Mutex
	users  map[int64]*models.User
	jobs   map[int64]*models.Job
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{users: map[int64]*models.User{}, jobs: map[int64]*models.Job{}}
}

type memUsers struct{ s *memStore }

func (r memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateKey
		}
	}
	r.s.nextID++
	user.ID = r.s.nextID
	user.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

type memJobs struct{ s *memStore }

func (r memJobs) Create(_ context.Context, job *models.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	job.ID = r.s.nextID
	cp := *job
	r.s.jobs[job.ID] = &cp
	return nil
}

func (r memJobs) listing(j *models.Job) models.JobListing {
	l := models.JobListing{Job: *j}
	if u, ok := r.s.users[j.EmployerID]; ok {
		l.EmployerName = u.Name
		l.EmployerEmail = u.Email
	}
	return l
}

func (r memJobs) ListRecent(_ context.Context, limit int) ([]models.JobListing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.JobListing, 0, len(r.s.jobs))
	for _, j := range r.s.jobs {
		out = append(out, r.listing(j))
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].DatePosted.Equal(out[b].DatePosted) {
			return out[a].DatePosted.After(out[b].DatePosted)
		}
		return out[a].ID > out[b].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memJobs) FindByID(_ context.Context, id int64) (*models.JobListing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	l := r.listing(j)
	return &l, nil
}

func (r memJobs) DeleteOwned(_ context.Context, id, employerID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return repository.ErrNotFound
	}
	if j.EmployerID != employerID {
		return repository.ErrNotOwner
	}
	delete(r.s.jobs, id)
	return nil
}

// =============================================================================
// Test Helpers
// =============================================================================

type testApp struct {
	router *gin.Engine
	store  *memStore
	tokens service.JWTService
}

func newTestApp(t *testing.T, mutate func(cfg *config.Config)) *testApp {
	t.Helper()

	cfg := &config.Config{
		Environment:    "development",
		JWTSecret:      "routes-test-secret-that-is-32-bytes!",
		JWTExpiry:      time.Hour,
		AllowedOrigins: []string{"*"},
	}
	if mutate != nil {
		mutate(cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemStore()
	tokens, err := service.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)
	require.NoError(t, err)

	m := metrics.New()
	responder := httputil.NewResponder(logger, !cfg.IsProduction())
	authService := service.NewAuthService(memUsers{store}, tokens, m)
	jobService := service.NewJobService(memJobs{store}, nil, m, logger)

	router := gin.New()
	router.Use(m.Middleware())
	Setup(router, Dependencies{
		Auth:      handlers.NewAuthHandler(authService, responder),
		Jobs:      handlers.NewJobHandler(jobService, responder),
		Health:    handlers.NewHealthHandler(),
		Tokens:    tokens,
		Responder: responder,
		Metrics:   m,
	}, cfg)

	return &testApp{router: router, store: store, tokens: tokens}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) register(t *testing.T, name, email, userType string) service.AuthResponse {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"name": name, "email": email, "password": "demo123", "type": userType,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp service.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (a *testApp) postJob(t *testing.T, token string, body map[string]any) models.Job {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/jobs", token, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Job models.Job `json:"job"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Job
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Error
}

// =============================================================================
// Accounts
// =============================================================================

func TestHealth(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	app := newTestApp(t, nil)
	app.register(t, "Cafe", "cafe@kaojob.com", models.UserTypeEmployer)

	w := app.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"name": "Other", "email": "cafe@kaojob.com", "password": "x", "type": models.UserTypeJobSeeker,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, httputil.CodeEmailExists, errorCode(t, w))
	assert.Len(t, app.store.users, 1)
}

func TestRegister_ThenLoginAndMe(t *testing.T) {
	app := newTestApp(t, nil)
	reg := app.register(t, "Somchai", "somchai@kaojob.com", models.UserTypeJobSeeker)

	claims, err := app.tokens.ValidateToken(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)
	assert.Equal(t, models.UserTypeJobSeeker, claims.UserType)

	w := app.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email": "somchai@kaojob.com", "password": "demo123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var login service.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(t, reg.User, login.User)

	w = app.do(t, http.MethodGet, "/api/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		User service.Profile `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "somchai@kaojob.com", me.User.Email)
	assert.False(t, me.User.CreatedAt.IsZero())
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegister_LongPasswordThenLogin(t *testing.T) {
	app := newTestApp(t, nil)
	password := strings.Repeat("p", service.MaxPasswordBytes+1)

	w := app.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"name": "Long", "email": "long@kaojob.com", "password": password, "type": models.UserTypeJobSeeker,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email": "long@kaojob.com", "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login service.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(t, "long@kaojob.com", login.User.Email)
	assert.NotEmpty(t, login.Token)
}

func TestLogin_FailuresAreIdentical(t *testing.T) {
	app := newTestApp(t, nil)
	app.register(t, "Ann", "ann@kaojob.com", models.UserTypeEmployer)

	wrongPassword := app.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email": "ann@kaojob.com", "password": "nope",
	})
	unknownEmail := app.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email": "ghost@kaojob.com", "password": "nope",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Equal(t, httputil.CodeInvalidCredentials, errorCode(t, wrongPassword))
}

// =============================================================================
// Access gate
// =============================================================================

func TestGate(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do(t, http.MethodPost, "/api/jobs", "", map[string]string{"title": "t", "description": "d"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, httputil.CodeUnauthorized, errorCode(t, w))

	w = app.do(t, http.MethodPost, "/api/jobs", "not-a-token", map[string]string{"title": "t", "description": "d"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, httputil.CodeInvalidToken, errorCode(t, w))

	w = app.do(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, httputil.CodeUnauthorized, errorCode(t, w))

	w = app.do(t, http.MethodDelete, "/api/jobs/1", "", nil)
	assert.Equal(t, httputil.CodeUnauthorized, errorCode(t, w))

	assert.Empty(t, app.store.jobs)
}

func TestGate_ExpiredToken(t *testing.T) {
	app := newTestApp(t, nil)
	shortLived, err := service.NewJWTService("routes-test-secret-that-is-32-bytes!", time.Nanosecond)
	require.NoError(t, err)
	token, err := shortLived.GenerateToken(1, models.UserTypeEmployer)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	w := app.do(t, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, httputil.CodeInvalidToken, errorCode(t, w))
}

// =============================================================================
// Jobs
// =============================================================================

func TestCreateJob_OwnerFromToken(t *testing.T) {
	app := newTestApp(t, nil)
	employer := app.register(t, "Green Cafe", "cafe@kaojob.com", models.UserTypeEmployer)
	other := app.register(t, "Other", "other@kaojob.com", models.UserTypeEmployer)

	job := app.postJob(t, employer.Token, map[string]any{
		"title":       "Barista",
		"description": "Make coffee",
		"employer_id": other.User.ID,
		"employerId":  other.User.ID,
	})

	assert.Equal(t, employer.User.ID, job.EmployerID)
	assert.Equal(t, models.JobStatusActive, job.Status)
}

func TestCreateJob_MatchesRead(t *testing.T) {
	app := newTestApp(t, nil)
	employer := app.register(t, "Bangkok Office", "hr@kaojob.com", models.UserTypeEmployer)

	created := app.postJob(t, employer.Token, map[string]any{
		"title":       "Office Assistant",
		"description": "Filing and phones",
		"location":    "Bangkok",
		"workType":    "Full-time",
		"salary":      "฿15,000/month",
		"contactInfo": "hr@kaojob.com",
	})

	w := app.do(t, http.MethodGet, fmt.Sprintf("/api/jobs/%d", created.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Job models.JobListing `json:"job"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))

	assert.Equal(t, created, got.Job.Job)
	assert.Equal(t, "Bangkok Office", got.Job.EmployerName)
	assert.Equal(t, "hr@kaojob.com", got.Job.EmployerEmail)
}

func TestCreateJob_MissingFields(t *testing.T) {
	app := newTestApp(t, nil)
	employer := app.register(t, "E", "e@kaojob.com", models.UserTypeEmployer)

	w := app.do(t, http.MethodPost, "/api/jobs", employer.Token, map[string]string{"title": "no description"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, httputil.CodeMissingFields, errorCode(t, w))
}

func TestListJobs_NewestHundred(t *testing.T) {
	app := newTestApp(t, nil)
	employer := app.register(t, "Busy", "busy@kaojob.com", models.UserTypeEmployer)

	var last models.Job
	for i := 0; i < 101; i++ {
		last = app.postJob(t, employer.Token, map[string]any{
			"title":       fmt.Sprintf("Job %d", i),
			"description": "d",
		})
	}

	w := app.do(t, http.MethodGet, "/api/jobs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Jobs []models.JobListing `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Jobs, 100)
	assert.Equal(t, last.ID, resp.Jobs[0].ID)
	assert.Equal(t, "Busy", resp.Jobs[0].EmployerName)
	for i := 1; i < len(resp.Jobs); i++ {
		assert.False(t, resp.Jobs[i].DatePosted.After(resp.Jobs[i-1].DatePosted), "jobs out of order at %d", i)
	}
	for _, j := range resp.Jobs {
		assert.NotEqual(t, "Job 0", j.Title, "oldest job should be cut")
	}
}

func TestListJobs_Empty(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do(t, http.MethodGet, "/api/jobs", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"jobs":[]}`, w.Body.String())
}

func TestDeleteJob_Ownership(t *testing.T) {
	app := newTestApp(t, nil)
	owner := app.register(t, "Owner", "owner@kaojob.com", models.UserTypeEmployer)
	intruder := app.register(t, "Intruder", "intruder@kaojob.com", models.UserTypeEmployer)
	job := app.postJob(t, owner.Token, map[string]any{"title": "t", "description": "d"})
	path := fmt.Sprintf("/api/jobs/%d", job.ID)

	w := app.do(t, http.MethodDelete, path, intruder.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, httputil.CodeForbidden, errorCode(t, w))
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, path, "", nil).Code)

	w = app.do(t, http.MethodDelete, path, owner.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, path, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodDelete, path, owner.Token, nil).Code)
}

func TestJobNotFound(t *testing.T) {
	app := newTestApp(t, nil)
	user := app.register(t, "U", "u@kaojob.com", models.UserTypeEmployer)

	for _, path := range []string{"/api/jobs/9999", "/api/jobs/abc"} {
		w := app.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, httputil.CodeNotFound, errorCode(t, w))

		w = app.do(t, http.MethodDelete, path, user.Token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

// =============================================================================
// Error details
// =============================================================================

func TestErrorDetails_HiddenInProduction(t *testing.T) {
	dev := newTestApp(t, nil)
	prod := newTestApp(t, func(cfg *config.Config) { cfg.Environment = config.EnvProduction })

	devResp := dev.do(t, http.MethodGet, "/api/me", "garbage", nil)
	prodResp := prod.do(t, http.MethodGet, "/api/me", "garbage", nil)

	var devBody, prodBody httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(devResp.Body.Bytes(), &devBody))
	require.NoError(t, json.Unmarshal(prodResp.Body.Bytes(), &prodBody))

	assert.Equal(t, httputil.CodeInvalidToken, devBody.Error)
	assert.NotEmpty(t, devBody.Details)
	assert.Equal(t, httputil.CodeInvalidToken, prodBody.Error)
	assert.Empty(t, prodBody.Details)
}

// =============================================================================
// Operational routes
// =============================================================================

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, nil)
	app.do(t, http.MethodGet, "/api/health", "", nil)

	w := app.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `jobboard_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}

func TestSwagger_OnlyWhenConfigured(t *testing.T) {
	without := newTestApp(t, nil)
	assert.Equal(t, http.StatusNotFound, without.do(t, http.MethodGet, "/swagger/doc.json", "", nil).Code)

	with := newTestApp(t, func(cfg *config.Config) { cfg.SwaggerHost = "localhost:3000" })
	w := with.do(t, http.MethodGet, "/swagger/doc.json", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"/jobs/{id}"`)
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600))

	app := newTestApp(t, func(cfg *config.Config) { cfg.StaticDir = dir })

	w := app.do(t, http.MethodGet, "/app.js", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log(1)", w.Body.String())

	w = app.do(t, http.MethodGet, "/jobs/42", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "app")

	w = app.do(t, http.MethodGet, "/../../etc/passwd", "", nil)
	assert.NotContains(t, w.Body.String(), "root:")

	w = app.do(t, http.MethodGet, "/api/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, httputil.CodeNotFound, errorCode(t, w))
}

func TestCORS_Preflight(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/jobs", nil)
	req.Header.Set("Origin", "https://kaojob.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
