package visit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-portal/internal/handler"
	"github.com/jwalitptl/hospital-portal/internal/middleware"
	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/internal/repository/memory"
	"github.com/jwalitptl/hospital-portal/internal/service/records"
)

type envelope struct {
	Data json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*gin.Engine, *records.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := func() time.Time { return time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC) }
	store, err := records.New(context.Background(), memory.NewKeyValueStore(), records.WithClock(now))
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	NewHandler(store).RegisterRoutes(handler.Groups{Clinical: r.Group("")})
	return r, store
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func data(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestQueue(t *testing.T) {
	r, store := setup(t)
	ctx := context.Background()

	_, err := store.GenerateVisitToken(ctx, "P002", "General Medicine", "Dr. Pragadish")
	require.NoError(t, err)
	_, err = store.GenerateVisitToken(ctx, "P003", "Cardiology", "Dr. Kaviya")
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/visits/today", "")
	require.Equal(t, http.StatusOK, w.Code)
	var today []model.ActiveVisit
	data(t, w, &today)
	require.Len(t, today, 2)
	assert.Equal(t, "001", today[0].TokenNumber)

	w = do(r, http.MethodGet, "/visits/002", "")
	require.Equal(t, http.StatusOK, w.Code)
	var row model.ActiveVisit
	data(t, w, &row)
	assert.Equal(t, "P003", row.PatientID)

	w = do(r, http.MethodPut, "/visits/002/status", `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, w.Code)
	data(t, w, &row)
	assert.Equal(t, model.ActiveVisitCompleted, row.Status)

	p3, err := store.GetPatient(ctx, "P003")
	require.NoError(t, err)
	assert.Equal(t, model.VisitStatusCompleted, p3.CurrentVisit().VisitStatus)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPut, "/visits/002/status", `{"status":"done"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPut, "/visits/042/status", `{"status":"waiting"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/visits/042", "").Code)
}

func TestSearch(t *testing.T) {
	r, store := setup(t)

	_, err := store.GenerateVisitToken(context.Background(), "P003", "Cardiology", "Dr. Kaviya")
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/visits/search?token=001", "")
	require.Equal(t, http.StatusOK, w.Code)
	var p handler.PatientResponse
	data(t, w, &p)
	assert.Equal(t, "P003", p.PatientID)
	assert.Empty(t, p.Password)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/visits/search", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/visits/search?token=777", "").Code)
}

func TestLookup(t *testing.T) {
	r, store := setup(t)

	p1, err := store.GetPatient(context.Background(), "P001")
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/visits/lookup?token=P001&dob="+p1.DOB, "")
	require.Equal(t, http.StatusOK, w.Code)
	var p handler.PatientResponse
	data(t, w, &p)
	assert.Equal(t, "P001", p.PatientID)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/visits/lookup?token=P001&dob=1900-01-01", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/visits/lookup?token=P001", "").Code)
}
