package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hospital-portal/internal/handler"
	"github.com/jwalitptl/hospital-portal/internal/handler/health"
	"github.com/jwalitptl/hospital-portal/internal/middleware"
	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(handler.Groups)
}

type Router struct {
	engine   *gin.Engine
	gate     *middleware.SessionGate
	health   *health.Handler
	gatherer prometheus.Gatherer
	handlers []Handler
}

type RouterConfig struct {
	Mode           string
	RateLimit      rate.Limit
	RateBurst      int
	AllowedOrigins []string
	MaxBodyBytes   int64
}

func NewRouter(
	sessions middleware.SessionReader,
	healthH *health.Handler,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	config RouterConfig,
	handlers ...Handler,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	engine := gin.New()

	r := &Router{
		engine:   engine,
		gate:     middleware.NewSessionGate(sessions),
		health:   healthH,
		gatherer: gatherer,
		handlers: handlers,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.ErrorHandler(),
		middleware.Metrics(m),
		middleware.SecurityHeaders(),
		middleware.CORS(config.AllowedOrigins),
	)

	limits := middleware.DefaultSizeLimitConfig()
	if config.MaxBodyBytes > 0 {
		limits.MaxBodySize = config.MaxBodyBytes
	}
	engine.Use(middleware.SizeLimit(limits))

	if config.RateBurst > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

// Setup mounts every route under /api/v1. Patient routes need a patient
// session, clinical routes any of the doctor, nurse and admin sessions.
func (r *Router) Setup() {
	r.engine.GET("/metrics", handler.MetricsHandler(r.gatherer))

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.health.RegisterRoutes(api)

	groups := handler.Groups{
		Public:   api.Group(""),
		Patient:  api.Group("", r.gate.Require(model.SessionPatient)),
		Clinical: api.Group("", r.gate.Require(model.SessionDoctor, model.SessionNurse, model.SessionAdmin)),
		Admin:    api.Group("", r.gate.Require(model.SessionAdmin)),
	}
	for _, h := range r.handlers {
		h.RegisterRoutes(groups)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
