package auth

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-portal/internal/handler"
	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/pkg/errors"
	"github.com/jwalitptl/hospital-portal/pkg/httputil"
)

type Authenticator interface {
	LoginPatient(ctx context.Context, id, password string) (*model.PatientRecord, error)
	LoginStaff(ctx context.Context, id, password string) (*model.StaffUser, error)
}

type SessionStore interface {
	Start(ctx context.Context, role model.SessionRole, sess model.Session) error
	Get(ctx context.Context, role model.SessionRole) (*model.Session, error)
	End(ctx context.Context, role model.SessionRole) error
}

type Handler struct {
	records  Authenticator
	sessions SessionStore
}

func NewHandler(records Authenticator, sessions SessionStore) *Handler {
	return &Handler{records: records, sessions: sessions}
}

func (h *Handler) RegisterRoutes(g handler.Groups) {
	auth := g.Public.Group("/auth")
	{
		auth.POST("/patient/login", h.PatientLogin)
		auth.POST("/staff/login", h.StaffLogin)
		auth.POST("/:role/logout", h.Logout)
		auth.GET("/:role/session", h.GetSession)
	}
}

type loginResponse struct {
	Session *model.Session `json:"session"`
	Patient interface{}    `json:"patient,omitempty"`
	Staff   interface{}    `json:"staff,omitempty"`
}

func (h *Handler) PatientLogin(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	patient, err := h.records.LoginPatient(c.Request.Context(), req.ID, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	sess := model.Session{ID: patient.PatientID, Name: patient.Name}
	if err := h.sessions.Start(c.Request.Context(), model.SessionPatient, sess); err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, loginResponse{
		Session: &sess,
		Patient: handler.NewPatientResponse(patient),
	})
}

// StaffLogin signs a staff member into the portal named in the body. Valid
// credentials for another role's portal are refused.
func (h *Handler) StaffLogin(c *gin.Context) {
	var req model.StaffLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.records.LoginStaff(c.Request.Context(), req.ID, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if string(user.Role) != string(req.Portal) {
		_ = c.Error(errors.Forbidden(fmt.Sprintf("%s accounts cannot sign in to the %s portal", user.Role, req.Portal)))
		return
	}

	sess := model.Session{
		StaffID:    user.ID,
		Name:       user.Name,
		Role:       string(user.Role),
		Department: user.Department,
	}
	if err := h.sessions.Start(c.Request.Context(), req.Portal, sess); err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, loginResponse{
		Session: &sess,
		Staff:   handler.NewStaffResponse(user),
	})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.End(c.Request.Context(), model.SessionRole(c.Param("role"))); err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"message": "logged out"})
}

func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.sessions.Get(c.Request.Context(), model.SessionRole(c.Param("role")))
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, sess)
}
