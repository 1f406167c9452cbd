package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/hospital-portal/internal/middleware"
	"github.com/jwalitptl/hospital-portal/internal/model"
)

// Groups are the route groups handlers register on, one per access level.
type Groups struct {
	Public   *gin.RouterGroup
	Patient  *gin.RouterGroup
	Clinical *gin.RouterGroup
	Admin    *gin.RouterGroup
}

// MetricsHandler serves the registry in the Prometheus text format.
func MetricsHandler(gatherer prometheus.Gatherer) gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

// SessionFrom returns the session the gate attached. Routes behind a gate
// always have one.
func SessionFrom(c *gin.Context) *model.Session {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return &model.Session{}
	}
	return sess
}
