package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-portal/internal/email"
	"github.com/jwalitptl/hospital-portal/internal/handler/auth"
	"github.com/jwalitptl/hospital-portal/internal/handler/health"
	"github.com/jwalitptl/hospital-portal/internal/handler/patient"
	"github.com/jwalitptl/hospital-portal/internal/handler/staff"
	"github.com/jwalitptl/hospital-portal/internal/handler/visit"
	"github.com/jwalitptl/hospital-portal/internal/middleware"
	"github.com/jwalitptl/hospital-portal/internal/repository/memory"
	"github.com/jwalitptl/hospital-portal/internal/service/records"
	"github.com/jwalitptl/hospital-portal/internal/service/session"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
	"github.com/jwalitptl/hospital-portal/pkg/metrics"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	require.NoError(t, middleware.SetupValidation(middleware.DefaultValidationConfig()))

	kv := memory.NewKeyValueStore()
	store, err := records.New(context.Background(), kv)
	require.NoError(t, err)
	sessions := session.NewService(kv)
	reg := prometheus.NewRegistry()

	r := NewRouter(
		sessions,
		health.NewHandler(kv),
		metrics.NewMetrics("portal", reg),
		reg,
		RouterConfig{Mode: gin.TestMode, AllowedOrigins: []string{"*"}},
		auth.NewHandler(store, sessions),
		patient.NewHandler(store, email.NewNopService(), logger.Nop()),
		visit.NewHandler(store),
		staff.NewHandler(store, logger.Nop()),
	)
	r.Setup()
	return r.Engine()
}

func call(r *gin.Engine, method, path, portal, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if portal != "" {
		req.Header.Set(middleware.HeaderXPortal, portal)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPortalAccess(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/v1/me", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/v1/visits/today", "doctor", "").Code)

	require.Equal(t, http.StatusOK, call(r, http.MethodPost, "/api/v1/auth/patient/login", "", `{"id":"P001","password":"patient123"}`).Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/me", "", "").Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/v1/visits/today", "patient", "").Code)

	require.Equal(t, http.StatusOK, call(r, http.MethodPost, "/api/v1/auth/staff/login", "", `{"id":"D001","password":"doctor123","portal":"doctor"}`).Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/visits/today", "doctor", "").Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/patients/P002", "doctor", "").Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/v1/staff", "doctor", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/v1/staff", "", "").Code, "no admin session yet")

	require.Equal(t, http.StatusOK, call(r, http.MethodPost, "/api/v1/auth/staff/login", "", `{"id":"A001","password":"admin123","portal":"admin"}`).Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/staff", "admin", "").Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/patients", "admin", "").Code)
}

func TestPublicRoutes(t *testing.T) {
	r := newTestRouter(t)

	w := call(r, http.MethodGet, "/api/v1/health/ready", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.0", w.Header().Get("X-API-Version"))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))

	body := `{"name":"Meena","dob":"1999-02-01","gender":"Female","contactNumber":"1","password":"secret99"}`
	assert.Equal(t, http.StatusCreated, call(r, http.MethodPost, "/api/v1/patients/register", "", body).Code)

	w = call(r, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "portal_http_requests_total")

	assert.Equal(t, http.StatusNotFound, call(r, http.MethodGet, "/api/v1/nowhere", "", "").Code)
}
