package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/marsone/crew-api/internal/core/domain"
	"github.com/marsone/crew-api/internal/core/ports"
	"github.com/marsone/crew-api/internal/core/validation"
)

type stubJobService struct {
	listFn    func(ctx context.Context) ([]ports.JobView, error)
	getFn     func(ctx context.Context, id int64) (*ports.JobView, error)
	createFn  func(ctx context.Context, in ports.CreateJobInput) (*ports.CreateJobResult, error)
	replaceFn func(ctx context.Context, id int64, patch ports.JobPatch) (*ports.JobView, error)
	deleteFn  func(ctx context.Context, id int64) error
}

func (s *stubJobService) List(ctx context.Context) ([]ports.JobView, error) { return s.listFn(ctx) }
func (s *stubJobService) Get(ctx context.Context, id int64) (*ports.JobView, error) {
	return s.getFn(ctx, id)
}
func (s *stubJobService) Create(ctx context.Context, in ports.CreateJobInput) (*ports.CreateJobResult, error) {
	return s.createFn(ctx, in)
}
func (s *stubJobService) Replace(ctx context.Context, id int64, patch ports.JobPatch) (*ports.JobView, error) {
	return s.replaceFn(ctx, id, patch)
}
func (s *stubJobService) Delete(ctx context.Context, id int64) error { return s.deleteFn(ctx, id) }

type stubUserService struct {
	createFn  func(ctx context.Context, in ports.CreateUserInput) (*ports.CreateUserResult, error)
	replaceFn func(ctx context.Context, id int64, patch ports.UserPatch) (*ports.UserView, error)
	deleteFn  func(ctx context.Context, id int64) error
}

func (s *stubUserService) List(ctx context.Context) ([]ports.UserView, error) { return nil, nil }
func (s *stubUserService) Get(ctx context.Context, id int64) (*ports.UserView, error) {
	return nil, domain.NotFound("user", id)
}
func (s *stubUserService) Create(ctx context.Context, in ports.CreateUserInput) (*ports.CreateUserResult, error) {
	return s.createFn(ctx, in)
}
func (s *stubUserService) Replace(ctx context.Context, id int64, patch ports.UserPatch) (*ports.UserView, error) {
	return s.replaceFn(ctx, id, patch)
}
func (s *stubUserService) Delete(ctx context.Context, id int64) error { return s.deleteFn(ctx, id) }

type stubCategoryService struct {
	createFn func(ctx context.Context, name string) (*ports.CategorySummary, error)
}

func (s *stubCategoryService) List(ctx context.Context) ([]ports.CategorySummary, error) {
	return []ports.CategorySummary{{ID: 1, Name: "drilling"}}, nil
}
func (s *stubCategoryService) Get(ctx context.Context, id int64) (*ports.CategorySummary, error) {
	return nil, domain.NotFound("category", id)
}
func (s *stubCategoryService) Create(ctx context.Context, name string) (*ports.CategorySummary, error) {
	return s.createFn(ctx, name)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubAuditReader struct {
	entries []domain.AuditEntry
}

func (r stubAuditReader) History(ctx context.Context, resource string, id int64) ([]domain.AuditEntry, error) {
	var out []domain.AuditEntry
	for _, e := range r.entries {
		if e.Resource == resource && e.EntityID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func newContext(method, target, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) == 2 {
		c.SetParamNames(params[0])
		c.SetParamValues(params[1])
	}
	return c, rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return out
}

func sampleJob(id int64) ports.JobView {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return ports.JobView{
		ID:           id,
		TeamLeaderID: 1,
		Job:          "deploy rover",
		StartDate:    &start,
		Categories:   []ports.CategorySummary{{ID: 2, Name: "logistics"}},
	}
}

func TestJobHandler_Create_Success(t *testing.T) {
	stub := &stubJobService{
		createFn: func(ctx context.Context, in ports.CreateJobInput) (*ports.CreateJobResult, error) {
			if in.Job != "deploy rover" || in.TeamLeaderID != 1 || len(in.CategoryIDs) != 1 {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.IdempotencyKey != "k-1" {
				t.Fatalf("idempotency key not forwarded: %q", in.IdempotencyKey)
			}
			return &ports.CreateJobResult{Job: sampleJob(7)}, nil
		},
	}
	h := NewJobHandler(stub, validation.New())

	c, rec := newContext(http.MethodPost, "/api/jobs", `{"job":"deploy rover","team_leader_id":1,"category_ids":[2]}`)
	c.Request().Header.Set(idempotencyHeader, "k-1")
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decodeJSON(t, rec)
	if resp["id"] != float64(7) {
		t.Fatalf("unexpected id: %v", resp["id"])
	}
	job := resp["job"].(map[string]any)
	if job["start_date"] != "2024-03-01T09:00:00Z" || job["end_date"] != nil || job["work_size"] != nil {
		t.Fatalf("unexpected job payload: %+v", job)
	}
	if cats := job["categories"].([]any); len(cats) != 1 {
		t.Fatalf("expected one category, got %v", cats)
	}
}

func TestJobHandler_Create_Replay(t *testing.T) {
	stub := &stubJobService{
		createFn: func(ctx context.Context, in ports.CreateJobInput) (*ports.CreateJobResult, error) {
			return &ports.CreateJobResult{Job: sampleJob(7), AlreadyExisted: true}, nil
		},
	}
	h := NewJobHandler(stub, validation.New())

	c, rec := newContext(http.MethodPost, "/api/jobs", `{"job":"deploy rover","team_leader_id":1}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", rec.Code)
	}
}

func TestJobHandler_Create_InvalidBody(t *testing.T) {
	stub := &stubJobService{
		createFn: func(ctx context.Context, in ports.CreateJobInput) (*ports.CreateJobResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewJobHandler(stub, validation.New())

	c, _ := newContext(http.MethodPost, "/api/jobs", `{"team_leader_id":"x"}`)
	err := h.Create(c)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	c, _ = newContext(http.MethodPost, "/api/jobs", `not-json`)
	var he *echo.HTTPError
	if err := h.Create(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected bind error, got %v", err)
	}
}

func TestJobHandler_Get_NonNumericID(t *testing.T) {
	stub := &stubJobService{
		getFn: func(ctx context.Context, id int64) (*ports.JobView, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewJobHandler(stub, validation.New())

	c, _ := newContext(http.MethodGet, "/api/jobs/abc", "", "id", "abc")
	err := h.Get(c)
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.ErrValidation || de.Fields[0].Field != "id" {
		t.Fatalf("expected validation error on id, got %v", err)
	}
}

func TestJobHandler_Get_NotFound(t *testing.T) {
	stub := &stubJobService{
		getFn: func(ctx context.Context, id int64) (*ports.JobView, error) {
			return nil, domain.NotFound("job", id)
		},
	}
	h := NewJobHandler(stub, validation.New())

	c, _ := newContext(http.MethodGet, "/api/jobs/9", "", "id", "9")
	if err := h.Get(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestJobHandler_Replace_PassesPatch(t *testing.T) {
	stub := &stubJobService{
		replaceFn: func(ctx context.Context, id int64, patch ports.JobPatch) (*ports.JobView, error) {
			if id != 7 {
				t.Fatalf("unexpected id %d", id)
			}
			if !patch.EndDate.IsNull() || patch.Job.Present() {
				t.Fatalf("unexpected patch: %+v", patch)
			}
			v := sampleJob(7)
			return &v, nil
		},
	}
	h := NewJobHandler(stub, validation.New())

	c, rec := newContext(http.MethodPut, "/api/jobs/7", `{"end_date":null,"id":99}`, "id", "7")
	if err := h.Replace(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if _, ok := decodeJSON(t, rec)["job"]; !ok {
		t.Fatalf("expected job envelope")
	}
}

func TestJobHandler_Delete(t *testing.T) {
	stub := &stubJobService{
		deleteFn: func(ctx context.Context, id int64) error {
			if id != 3 {
				t.Fatalf("unexpected id %d", id)
			}
			return nil
		},
	}
	h := NewJobHandler(stub, validation.New())

	c, rec := newContext(http.MethodDelete, "/api/jobs/3", "", "id", "3")
	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestUserHandler_Create_NeverEchoesPassword(t *testing.T) {
	stub := &stubUserService{
		createFn: func(ctx context.Context, in ports.CreateUserInput) (*ports.CreateUserResult, error) {
			if in.Password != "s3cret" {
				t.Fatalf("password not forwarded")
			}
			return &ports.CreateUserResult{User: ports.UserView{
				ID: 4, Name: in.Name, Email: in.Email,
				ModifiedDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			}}, nil
		},
	}
	h := NewUserHandler(stub, validation.New())

	c, rec := newContext(http.MethodPost, "/api/users", `{"name":"Ann","email":"ann@mars.org","password":"s3cret"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "s3cret") || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("credential leaked: %s", rec.Body.String())
	}
	user := decodeJSON(t, rec)["user"].(map[string]any)
	if user["modified_date"] != "2024-01-01T00:00:00Z" || user["surname"] != nil {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestUserHandler_Delete_Blocked(t *testing.T) {
	stub := &stubUserService{
		deleteFn: func(ctx context.Context, id int64) error {
			return domain.IntegrityViolation("user_leads_jobs", "user leads jobs")
		},
	}
	h := NewUserHandler(stub, validation.New())

	c, _ := newContext(http.MethodDelete, "/api/users/1", "", "id", "1")
	if err := h.Delete(c); !errors.Is(err, domain.ErrIntegrityViolation) {
		t.Fatalf("expected integrity violation, got %v", err)
	}
}

func TestCategoryHandler_Create(t *testing.T) {
	stub := &stubCategoryService{
		createFn: func(ctx context.Context, name string) (*ports.CategorySummary, error) {
			if name != "mining" {
				t.Fatalf("expected trimmed name, got %q", name)
			}
			return &ports.CategorySummary{ID: 5, Name: name}, nil
		},
	}
	h := NewCategoryHandler(stub)

	c, rec := newContext(http.MethodPost, "/api/categories", `{"name":"  mining "}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestCategoryHandler_Create_BlankName(t *testing.T) {
	stub := &stubCategoryService{
		createFn: func(ctx context.Context, name string) (*ports.CategorySummary, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewCategoryHandler(stub)

	c, _ := newContext(http.MethodPost, "/api/categories", `{"name":"   "}`)
	err := h.Create(c)
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.ErrValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if de.Fields[0].Field != "name" || de.Fields[0].Message != "is required" {
		t.Fatalf("unexpected violation: %+v", de.Fields)
	}
}

func TestCategoryHandler_List(t *testing.T) {
	h := NewCategoryHandler(&stubCategoryService{})

	c, rec := newContext(http.MethodGet, "/api/categories", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	cats := decodeJSON(t, rec)["categories"].([]any)
	if len(cats) != 1 {
		t.Fatalf("expected one category, got %v", cats)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{"sql": stubPinger{}, "redis": stubPinger{}})
	c, rec := newContext(http.MethodGet, "/health/ready", "")
	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	h = NewHealthHandler(map[string]Pinger{"sql": stubPinger{}, "mongo": stubPinger{err: errors.New("down")}})
	c, rec = newContext(http.MethodGet, "/health/ready", "")
	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	deps := decodeJSON(t, rec)["dependencies"].(map[string]any)
	if deps["mongo"].(map[string]any)["status"] != "unhealthy" {
		t.Fatalf("unexpected dependencies: %+v", deps)
	}
}

func TestAuditHandler_JobHistory(t *testing.T) {
	at := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)
	h := NewAuditHandler(stubAuditReader{entries: []domain.AuditEntry{
		{Resource: "jobs", EntityID: 7, Action: domain.AuditCreate, At: at},
	}})

	c, rec := newContext(http.MethodGet, "/api/jobs/7/history", "", "id", "7")
	if err := h.JobHistory(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeJSON(t, rec)
	history := resp["history"].([]any)
	if len(history) != 1 {
		t.Fatalf("expected one entry, got %v", history)
	}
	entry := history[0].(map[string]any)
	if entry["action"] != string(domain.AuditCreate) || len(entry["fields"].([]any)) != 0 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestAuditHandler_CategoryHistory(t *testing.T) {
	at := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)
	h := NewAuditHandler(stubAuditReader{entries: []domain.AuditEntry{
		{Resource: "jobs", EntityID: 3, Action: domain.AuditDelete, At: at},
		{Resource: "categories", EntityID: 3, Action: domain.AuditCreate, At: at},
	}})

	c, rec := newContext(http.MethodGet, "/api/categories/3/history", "", "id", "3")
	if err := h.CategoryHistory(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeJSON(t, rec)
	if resp["resource"] != "categories" {
		t.Fatalf("unexpected resource %v", resp["resource"])
	}
	history := resp["history"].([]any)
	if len(history) != 1 || history[0].(map[string]any)["action"] != string(domain.AuditCreate) {
		t.Fatalf("expected only the category create entry, got %v", history)
	}
}
