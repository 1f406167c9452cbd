package health

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-portal/pkg/errors"
	"github.com/jwalitptl/hospital-portal/pkg/httputil"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	storage Pinger
}

func NewHandler(storage Pinger) *Handler {
	return &Handler{
		storage: storage,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("/live", h.LivenessCheck)
		health.GET("/ready", h.ReadinessCheck)
	}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	httputil.RespondWithSuccess(c, gin.H{"status": "UP"})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		httputil.RespondWithError(c, errors.Unavailable("storage connection failed", err))
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"status": "UP"})
}
