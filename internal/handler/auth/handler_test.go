package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-portal/internal/handler"
	"github.com/jwalitptl/hospital-portal/internal/middleware"
	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/internal/repository/memory"
	"github.com/jwalitptl/hospital-portal/internal/service/records"
	"github.com/jwalitptl/hospital-portal/internal/service/session"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*gin.Engine, *session.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	kv := memory.NewKeyValueStore()
	store, err := records.New(context.Background(), kv)
	require.NoError(t, err)
	sessions := session.NewService(kv)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	NewHandler(store, sessions).RegisterRoutes(handler.Groups{Public: r.Group("")})
	return r, sessions
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPatientLogin(t *testing.T) {
	r, sessions := setup(t)

	w := post(r, "/auth/patient/login", `{"id":"p001","password":"patient123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.NotContains(t, string(env.Data), "patient123")

	sess, err := sessions.Get(context.Background(), model.SessionPatient)
	require.NoError(t, err)
	assert.Equal(t, "P001", sess.ID)
	assert.Equal(t, "Vaseekar", sess.Name)

	w = post(r, "/auth/patient/login", `{"id":"P001","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStaffLogin(t *testing.T) {
	r, sessions := setup(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "doctor portal", body: `{"id":"D001","password":"doctor123","portal":"doctor"}`, status: http.StatusOK},
		{name: "wrong portal for role", body: `{"id":"D001","password":"doctor123","portal":"admin"}`, status: http.StatusForbidden},
		{name: "bad password", body: `{"id":"D001","password":"nope","portal":"doctor"}`, status: http.StatusUnauthorized},
		{name: "unknown portal", body: `{"id":"D001","password":"doctor123","portal":"reception"}`, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(r, "/auth/staff/login", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	sess, err := sessions.Get(ctx, model.SessionDoctor)
	require.NoError(t, err)
	assert.Equal(t, "D001", sess.StaffID)
	assert.Equal(t, "doctor", sess.Role)

	_, err = sessions.Get(ctx, model.SessionAdmin)
	assert.Error(t, err, "a refused login leaves no session")
}

func TestSessionLifecycle(t *testing.T) {
	r, _ := setup(t)

	require.Equal(t, http.StatusOK, post(r, "/auth/staff/login", `{"id":"N001","password":"nurse123","portal":"nurse"}`).Code)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/nurse/session", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"staffId":"N001"`)

	assert.Equal(t, http.StatusOK, post(r, "/auth/nurse/logout", "").Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/nurse/session", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, http.StatusBadRequest, post(r, "/auth/janitor/logout", "").Code)
}
