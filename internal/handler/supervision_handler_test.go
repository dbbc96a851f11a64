package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siwes-hub/logbook-api/internal/dto"
	"github.com/siwes-hub/logbook-api/internal/middleware"
	"github.com/siwes-hub/logbook-api/internal/models"
	"github.com/siwes-hub/logbook-api/internal/service"
	"github.com/siwes-hub/logbook-api/pkg/response"
)

type stubSupervisionRepo struct {
	current  *models.Supervision
	upserted *models.Supervision
}

func (s *stubSupervisionRepo) FindByStudent(ctx context.Context, studentID string) (*models.Supervision, error) {
	return s.current, nil
}

func (s *stubSupervisionRepo) Upsert(ctx context.Context, sup *models.Supervision) error {
	s.upserted = sup
	return nil
}

func (s *stubSupervisionRepo) DecideIfPending(ctx context.Context, studentID, supervisorID string, status models.SupervisionStatus) (bool, error) {
	return true, nil
}

func (s *stubSupervisionRepo) ListPendingForSupervisor(ctx context.Context, supervisorID string) ([]dto.PendingSupervisionItem, error) {
	return nil, nil
}

func (s *stubSupervisionRepo) ListApprovedStudents(ctx context.Context, supervisorID string) ([]dto.PendingSupervisionItem, error) {
	return nil, nil
}

type stubUserReader struct {
	user *models.User
}

func (s *stubUserReader) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.user, nil
}

func (s *stubUserReader) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return nil
}

func withClaims(claims *models.JWTClaims) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.ContextUserKey, claims)
		}
		c.Next()
	}
}

func newSupervisionTestRouter(t *testing.T, repo *stubSupervisionRepo, claims *models.JWTClaims) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := service.NewSupervisionService(repo, &stubUserReader{
		user: &models.User{ID: "sup-1", FullName: "Dr. Bello", Role: models.RoleSupervisor, Active: true},
	}, nil, nil, zap.NewNop())
	metrics := service.NewMetricsService()
	h := NewSupervisionHandler(svc, metrics)

	r := gin.New()
	r.Use(withClaims(claims))
	r.GET("/supervision", h.Status)
	r.POST("/supervision/request", h.Request)
	return r
}

func TestSupervisionStatusEndpoint(t *testing.T) {
	supID := "sup-1"
	repo := &stubSupervisionRepo{current: &models.Supervision{
		StudentID: "student-1", SupervisorID: &supID, SupervisorName: "Dr. Bello", Status: models.SupervisionApproved,
	}}
	router := newSupervisionTestRouter(t, repo, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/supervision", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Nil(t, env.Error)
	data, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var resp dto.SupervisionResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, models.SupervisionApproved, resp.Status)
	assert.Equal(t, "Dr. Bello", resp.SupervisorName)
}

func TestSupervisionRequestEndpointConflict(t *testing.T) {
	supID := "sup-1"
	repo := &stubSupervisionRepo{current: &models.Supervision{
		StudentID: "student-1", SupervisorID: &supID, Status: models.SupervisionPending,
	}}
	router := newSupervisionTestRouter(t, repo, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})

	body, _ := json.Marshal(dto.RequestSupervisionRequest{SupervisorID: "sup-1"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/supervision/request", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_TRANSITION", env.Error.Code)
}

func TestSupervisionStatusUnauthenticated(t *testing.T) {
	router := newSupervisionTestRouter(t, &stubSupervisionRepo{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/supervision", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
