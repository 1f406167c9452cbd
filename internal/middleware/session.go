package middleware

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/pkg/errors"
	"github.com/jwalitptl/hospital-portal/pkg/httputil"
)

const (
	// HeaderXPortal names the dashboard a request comes from.
	HeaderXPortal  = "X-Portal"
	ContextSession = "session"
	ContextPortal  = "portal"
)

type SessionReader interface {
	Get(ctx context.Context, role model.SessionRole) (*model.Session, error)
}

// SessionGate admits a request when the portal named by X-Portal is one of
// roles and has a stored session. With a single allowed role the header may
// be omitted.
type SessionGate struct {
	sessions SessionReader
}

func NewSessionGate(sessions SessionReader) *SessionGate {
	return &SessionGate{sessions: sessions}
}

func (g *SessionGate) Require(roles ...model.SessionRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		portal := model.SessionRole(c.GetHeader(HeaderXPortal))
		if portal == "" && len(roles) == 1 {
			portal = roles[0]
		}
		if portal == "" {
			httputil.RespondWithError(c, errors.Unauthorized(HeaderXPortal+" header is required"))
			return
		}
		if !allowed(portal, roles) {
			httputil.RespondWithError(c, errors.Forbidden(fmt.Sprintf("the %s portal cannot access this resource", portal)))
			return
		}

		sess, err := g.sessions.Get(c.Request.Context(), portal)
		if err != nil {
			if errors.IsNotFound(err) {
				err = errors.Unauthorized("no active " + string(portal) + " session")
			}
			httputil.RespondWithError(c, err)
			return
		}

		c.Set(ContextSession, sess)
		c.Set(ContextPortal, string(portal))
		c.Next()
	}
}

func allowed(role model.SessionRole, roles []model.SessionRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// CurrentSession returns the session SessionGate stored on c.
func CurrentSession(c *gin.Context) (*model.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*model.Session)
	return sess, ok
}
