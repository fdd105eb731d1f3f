package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patelvedant312/team-matching/internal/http/middleware"
	"github.com/patelvedant312/team-matching/internal/matching"
	"github.com/patelvedant312/team-matching/internal/models"
	"github.com/patelvedant312/team-matching/internal/pkg/apperror"
	"github.com/patelvedant312/team-matching/internal/service"
)

type mockResourceService struct {
	mock.Mock
}

func (m *mockResourceService) List(ctx context.Context, orgID uuid.UUID, filter models.ResourceFilter) ([]models.Resource, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).([]models.Resource), args.Error(1)
}

func (m *mockResourceService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Resource, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Resource), args.Error(1)
}

func (m *mockResourceService) Create(ctx context.Context, orgID uuid.UUID, in service.ResourceInput) (*models.Resource, error) {
	args := m.Called(ctx, orgID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Resource), args.Error(1)
}

func (m *mockResourceService) Update(ctx context.Context, orgID, id uuid.UUID, in service.ResourceInput) (*models.Resource, error) {
	args := m.Called(ctx, orgID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Resource), args.Error(1)
}

func (m *mockResourceService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return m.Called(ctx, orgID, id).Error(0)
}

func (m *mockResourceService) Import(ctx context.Context, orgID uuid.UUID, data []byte) ([]models.Resource, error) {
	args := m.Called(ctx, orgID, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Resource), args.Error(1)
}

type mockTeamService struct {
	mock.Mock
}

func (m *mockTeamService) FormTeam(ctx context.Context, orgID, projectID uuid.UUID, ov *service.MatchOverrides) (*service.FormationResult, error) {
	args := m.Called(ctx, orgID, projectID, ov)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FormationResult), args.Error(1)
}

func (m *mockTeamService) ReleaseTeam(ctx context.Context, orgID, projectID uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, orgID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *mockTeamService) Preview(ctx context.Context, orgID uuid.UUID, projectIDs []uuid.UUID, ov *service.MatchOverrides) (*matching.Result, error) {
	args := m.Called(ctx, orgID, projectIDs, ov)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*matching.Result), args.Error(1)
}

func (m *mockTeamService) Run(in matching.Input, ov *service.MatchOverrides) (*matching.Result, error) {
	args := m.Called(in, ov)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*matching.Result), args.Error(1)
}

func (m *mockTeamService) ListTeams(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]models.Team, error) {
	args := m.Called(ctx, orgID, limit, offset)
	return args.Get(0).([]models.Team), args.Error(1)
}

func (m *mockTeamService) GetTeam(ctx context.Context, orgID, id uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, name string) (*service.RegisteredOrganization, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegisteredOrganization), args.Error(1)
}

func (m *mockAuthService) IssueToken(ctx context.Context, orgID uuid.UUID, apiKey string) (*service.AccessToken, error) {
	args := m.Called(ctx, orgID, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AccessToken), args.Error(1)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

// newTestRouter собирает gin с ErrorHandler; если orgID не Nil, запросы
// считаются авторизованными этой организацией.
func newTestRouter(orgID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	if orgID != uuid.Nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextOrgIDKey, orgID)
			c.Next()
		})
	}
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCodeOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error.Code
}

func TestResourceHandler_Unauthorized(t *testing.T) {
	r := newTestRouter(uuid.Nil)
	h := NewResourceHandler(nil, 1024)
	r.GET("/resources", h.List)

	w := doJSON(r, http.MethodGet, "/resources", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCodeOf(t, w))
}

func TestResourceHandler_ListFilter(t *testing.T) {
	orgID := uuid.New()
	svc := new(mockResourceService)
	r := newTestRouter(orgID)
	h := NewResourceHandler(svc, 1024)
	r.GET("/resources", h.List)

	onBench := true
	svc.On("List", mock.Anything, orgID, models.ResourceFilter{OnBench: &onBench, Limit: 10, Offset: 0}).
		Return([]models.Resource{{ID: uuid.New(), Name: "Anna"}}, nil)

	w := doJSON(r, http.MethodGet, "/resources?on_bench=true&limit=10", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"has_more":false`)

	w = doJSON(r, http.MethodGet, "/resources?on_bench=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestResourceHandler_CreateValidationError(t *testing.T) {
	orgID := uuid.New()
	svc := new(mockResourceService)
	r := newTestRouter(orgID)
	h := NewResourceHandler(svc, 1024)
	r.POST("/resources", h.Create)

	svc.On("Create", mock.Anything, orgID, mock.AnythingOfType("service.ResourceInput")).
		Return(nil, apperror.New(apperror.ErrCodeValidation, "ставка вне диапазона"))

	w := doJSON(r, http.MethodPost, "/resources", map[string]interface{}{"name": "Anna", "rate": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCodeOf(t, w))
}

func TestResourceHandler_UpdateRequiresVersion(t *testing.T) {
	svc := new(mockResourceService)
	r := newTestRouter(uuid.New())
	h := NewResourceHandler(svc, 1024)
	r.PUT("/resources/:id", h.Update)

	w := doJSON(r, http.MethodPut, "/resources/"+uuid.NewString(), map[string]interface{}{"name": "Anna"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResourceHandler_GetInvalidID(t *testing.T) {
	r := newTestRouter(uuid.New())
	h := NewResourceHandler(nil, 1024)
	r.GET("/resources/:id", h.Get)

	w := doJSON(r, http.MethodGet, "/resources/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", errorCodeOf(t, w))
}

func TestResourceHandler_ImportRawBody(t *testing.T) {
	orgID := uuid.New()
	svc := new(mockResourceService)
	r := newTestRouter(orgID)
	h := NewResourceHandler(svc, 1024)
	r.POST("/resources/import", h.Import)

	payload := []byte(`[{"name": "Anna", "rate": 40}]`)
	svc.On("Import", mock.Anything, orgID, payload).Return([]models.Resource{{Name: "Anna"}}, nil)

	req, _ := http.NewRequest(http.MethodPost, "/resources/import", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"imported":1`)
}

func TestResourceHandler_ImportMultipart(t *testing.T) {
	orgID := uuid.New()
	svc := new(mockResourceService)
	r := newTestRouter(orgID)
	h := NewResourceHandler(svc, 4096)
	r.POST("/resources/import", h.Import)

	payload := []byte(`[{"name": "Boris", "rate": 25}]`)
	svc.On("Import", mock.Anything, orgID, payload).Return([]models.Resource{{Name: "Boris"}}, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "resources.json")
	require.NoError(t, err)
	_, _ = part.Write(payload)
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest(http.MethodPost, "/resources/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestResourceHandler_ImportTooLarge(t *testing.T) {
	svc := new(mockResourceService)
	r := newTestRouter(uuid.New())
	h := NewResourceHandler(svc, 16)
	r.POST("/resources/import", h.Import)

	req, _ := http.NewRequest(http.MethodPost, "/resources/import",
		bytes.NewReader([]byte(`[{"name": "Anna", "rate": 40}, {"name": "Boris", "rate": 25}]`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCodeOf(t, w))
	svc.AssertNotCalled(t, "Import", mock.Anything, mock.Anything, mock.Anything)
}

func TestTeamHandler_FormWithoutBody(t *testing.T) {
	orgID, projectID := uuid.New(), uuid.New()
	svc := new(mockTeamService)
	r := newTestRouter(orgID)
	h := NewTeamHandler(svc)
	r.POST("/projects/:id/team", h.Form)

	out := &service.FormationResult{
		Team:   &models.Team{ID: uuid.New(), ProjectID: projectID},
		Result: &matching.Result{Unfilled: map[string]int{}},
	}
	svc.On("FormTeam", mock.Anything, orgID, projectID, (*service.MatchOverrides)(nil)).Return(out, nil)

	req, _ := http.NewRequest(http.MethodPost, "/projects/"+projectID.String()+"/team", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestTeamHandler_FormWithOverridesConflict(t *testing.T) {
	orgID, projectID := uuid.New(), uuid.New()
	svc := new(mockTeamService)
	r := newTestRouter(orgID)
	h := NewTeamHandler(svc)
	r.POST("/projects/:id/team", h.Form)

	svc.On("FormTeam", mock.Anything, orgID, projectID, mock.MatchedBy(func(ov *service.MatchOverrides) bool {
		return ov != nil && ov.Weights != nil && ov.Weights.Skill == 2
	})).Return(nil, apperror.New(apperror.ErrCodeConflict, "повторите запрос"))

	body := map[string]interface{}{
		"overrides": map[string]interface{}{
			"weights": map[string]float64{"rate": 0.5, "experience": 1, "skill": 2, "rate_ceiling": 100},
		},
	}
	w := doJSON(r, http.MethodPost, "/projects/"+projectID.String()+"/team", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", errorCodeOf(t, w))
}

func TestTeamHandler_PreviewRequiresProjects(t *testing.T) {
	svc := new(mockTeamService)
	r := newTestRouter(uuid.New())
	h := NewTeamHandler(svc)
	r.POST("/match/preview", h.Preview)

	w := doJSON(r, http.MethodPost, "/match/preview", map[string]interface{}{"project_ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Preview", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTeamHandler_RunStateless(t *testing.T) {
	svc := new(mockTeamService)
	r := newTestRouter(uuid.New())
	h := NewTeamHandler(svc)
	r.POST("/match/run", h.Run)

	result := &matching.Result{
		Assignments: []matching.Assignment{{Role: "Backend", ResourceName: "Anna", Score: 33}},
		Unfilled:    map[string]int{"Backend": 1},
		TotalSlots:  2,
	}
	svc.On("Run", mock.MatchedBy(func(in matching.Input) bool {
		return len(in.Projects) == 1 && len(in.Resources) == 1 && in.Projects[0].Roles[0].Quantity == 2
	}), (*service.MatchOverrides)(nil)).Return(result, nil)

	body := []byte(`{
		"projects": [{"id": "` + uuid.NewString() + `", "name": "Billing", "start_date": "2024-06-01",
			"roles": [{"role": "Backend", "skills": ["go: intermediate"], "quantity": 2}]}],
		"resources": [{"id": "` + uuid.NewString() + `", "name": "Anna", "rate": 40, "skills": ["go: expert"]}]
	}`)
	req, _ := http.NewRequest(http.MethodPost, "/match/run", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unfilled_roles":{"Backend":1}`)
	svc.AssertExpectations(t)
}

func TestTeamHandler_RunMatchingError(t *testing.T) {
	svc := new(mockTeamService)
	r := newTestRouter(uuid.New())
	h := NewTeamHandler(svc)
	r.POST("/match/run", h.Run)

	svc.On("Run", mock.Anything, mock.Anything).
		Return(nil, apperror.Wrap(errors.New("matrix"), apperror.ErrCodeMatching, "не удалось построить назначение"))

	w := doJSON(r, http.MethodPost, "/match/run", map[string]interface{}{"projects": []interface{}{}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "MATCHING_ERROR", errorCodeOf(t, w))
}

func TestAuthHandler_Token(t *testing.T) {
	svc := new(mockAuthService)
	r := newTestRouter(uuid.Nil)
	h := NewAuthHandler(svc)
	r.POST("/auth/token", h.Token)

	orgID := uuid.New()
	svc.On("IssueToken", mock.Anything, orgID, "tm_good").Return(&service.AccessToken{AccessToken: "jwt", TokenType: "Bearer"}, nil)
	svc.On("IssueToken", mock.Anything, orgID, "tm_bad").Return(nil, apperror.ErrInvalidCredentials)

	w := doJSON(r, http.MethodPost, "/auth/token", map[string]string{"org_id": orgID.String(), "api_key": "tm_good"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"jwt"`)

	w = doJSON(r, http.MethodPost, "/auth/token", map[string]string{"org_id": orgID.String(), "api_key": "tm_bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/token", map[string]string{"org_id": orgID.String()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/ok", NewHealthHandler(pingerFunc(func(context.Context) error { return nil })).Health)
	r.GET("/down", NewHealthHandler(pingerFunc(func(context.Context) error { return errors.New("refused") })).Health)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/ok", nil).Code)
	w := doJSON(r, http.MethodGet, "/down", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "refused")
}
