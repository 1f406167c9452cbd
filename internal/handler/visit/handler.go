package visit

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-portal/internal/handler"
	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/pkg/errors"
	"github.com/jwalitptl/hospital-portal/pkg/httputil"
)

type Queue interface {
	ListActiveVisitsForToday(ctx context.Context) ([]*model.ActiveVisit, error)
	GetActiveVisit(ctx context.Context, token string) (*model.ActiveVisit, error)
	UpdateVisitStatus(ctx context.Context, token string, status model.ActiveVisitStatus) (*model.ActiveVisit, error)
	SearchPatientByToken(ctx context.Context, token string) (*model.PatientRecord, error)
	FindPatientByTokenAndDOB(ctx context.Context, value, dob string) (*model.PatientRecord, error)
}

type Handler struct {
	queue Queue
}

func NewHandler(queue Queue) *Handler {
	return &Handler{queue: queue}
}

func (h *Handler) RegisterRoutes(g handler.Groups) {
	visits := g.Clinical.Group("/visits")
	{
		visits.GET("/today", h.ListToday)
		visits.GET("/search", h.Search)
		visits.GET("/lookup", h.Lookup)
		visits.GET("/:token", h.Get)
		visits.PUT("/:token/status", h.UpdateStatus)
	}
}

func (h *Handler) ListToday(c *gin.Context) {
	visits, err := h.queue.ListActiveVisitsForToday(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, visits)
}

func (h *Handler) Get(c *gin.Context) {
	visit, err := h.queue.GetActiveVisit(c.Request.Context(), c.Param("token"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, visit)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req model.UpdateVisitStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	visit, err := h.queue.UpdateVisitStatus(c.Request.Context(), c.Param("token"), req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, visit)
}

// Search resolves a token to its patient, preferring today's queue.
func (h *Handler) Search(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		_ = c.Error(errors.BadRequest("token is required", nil))
		return
	}

	patient, err := h.queue.SearchPatientByToken(c.Request.Context(), token)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, handler.NewPatientResponse(patient))
}

// Lookup matches a patient id or visit token together with a date of birth.
func (h *Handler) Lookup(c *gin.Context) {
	token, dob := c.Query("token"), c.Query("dob")
	if token == "" || dob == "" {
		_ = c.Error(errors.BadRequest("token and dob are required", nil))
		return
	}

	patient, err := h.queue.FindPatientByTokenAndDOB(c.Request.Context(), token, dob)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, handler.NewPatientResponse(patient))
}
