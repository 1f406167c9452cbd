package staff

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-portal/internal/handler"
	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/pkg/httputil"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
)

// Directory is the part of the record store the admin portal drives.
type Directory interface {
	AddStaff(ctx context.Context, req model.AddStaffRequest) (*model.StaffUser, error)
	GetStaff(ctx context.Context, id string) (*model.StaffUser, error)
	ListStaff(ctx context.Context) ([]*model.StaffUser, error)
	ResetDatabase(ctx context.Context) error
	ExpireActiveVisits(ctx context.Context) (int, error)
}

type Handler struct {
	directory Directory
	log       *logger.Logger
}

func NewHandler(directory Directory, log *logger.Logger) *Handler {
	return &Handler{directory: directory, log: log}
}

func (h *Handler) RegisterRoutes(g handler.Groups) {
	staff := g.Admin.Group("/staff")
	{
		staff.GET("", h.List)
		staff.POST("", h.Add)
		staff.GET("/:id", h.Get)
	}

	admin := g.Admin.Group("/admin")
	{
		admin.POST("/reset", h.Reset)
		admin.POST("/expire-visits", h.ExpireVisits)
	}
}

func (h *Handler) List(c *gin.Context) {
	users, err := h.directory.ListStaff(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, handler.NewStaffListResponse(users))
}

func (h *Handler) Get(c *gin.Context) {
	user, err := h.directory.GetStaff(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, handler.NewStaffResponse(user))
}

func (h *Handler) Add(c *gin.Context) {
	var req model.AddStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.directory.AddStaff(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithCreated(c, handler.NewStaffResponse(user))
}

// Reset wipes every table and session and reseeds the demo data.
func (h *Handler) Reset(c *gin.Context) {
	if err := h.directory.ResetDatabase(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}
	h.log.WithContext(c.Request.Context()).Warn("database reset", "by", handler.SessionFrom(c).Subject())
	httputil.RespondWithSuccess(c, gin.H{"message": "database reset"})
}

func (h *Handler) ExpireVisits(c *gin.Context) {
	n, err := h.directory.ExpireActiveVisits(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"expired": n})
}
