// Package httpapi exposes the school records over a JSON HTTP API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/schooladmin/schooladmin/internal/attendance"
	"github.com/schooladmin/schooladmin/internal/dashboard"
	"github.com/schooladmin/schooladmin/internal/fees"
	"github.com/schooladmin/schooladmin/internal/httpmiddleware"
	"github.com/schooladmin/schooladmin/internal/model"
	"github.com/schooladmin/schooladmin/internal/store"
	"github.com/schooladmin/schooladmin/internal/students"
)

// Deps are the services the API is built from. Redis and Limiter are optional.
type Deps struct {
	Students  *students.Service
	Recorder  *attendance.Recorder
	Viewer    *attendance.Viewer
	Collector *fees.Collector
	Ledger    *fees.Ledger
	Dashboard *dashboard.Service

	DB       *store.DB
	Redis    *store.Redis
	Limiter  httpmiddleware.Limiter
	Registry *prometheus.Registry
	Log      *zap.Logger

	// Now is the clock "today" defaults are taken from.
	Now func() time.Time
}

// Route is an entry of the named-route index.
type Route struct {
	Name   string `json:"name"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Routes lists the named screens of the API.
var Routes = []Route{
	{Name: "dashboard", Method: http.MethodGet, Path: "/api/dashboard"},
	{Name: "students", Method: http.MethodGet, Path: "/api/students"},
	{Name: "attendance", Method: http.MethodGet, Path: "/api/attendance"},
	{Name: "attendance-sheet", Method: http.MethodGet, Path: "/api/attendance/sheet"},
	{Name: "attendance-mark", Method: http.MethodPost, Path: "/api/attendance/mark"},
	{Name: "fees", Method: http.MethodGet, Path: "/api/fees"},
	{Name: "fees-form", Method: http.MethodGet, Path: "/api/fees/form"},
	{Name: "fees-collect", Method: http.MethodPost, Path: "/api/fees"},
}

type handler struct {
	Deps
	log *zap.Logger
}

func (h *handler) today() model.Date {
	return model.DateOf(h.Now())
}

// NewRouter builds the gin engine serving every route.
func NewRouter(d Deps) *gin.Engine {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}
	h := &handler{Deps: d, log: d.Log.Named("http")}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.Metrics(d.Registry))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", httpmiddleware.RequestIDHeader},
		ExposeHeaders:   []string{"Location", httpmiddleware.RequestIDHeader},
		MaxAge:          24 * time.Hour,
	}))
	r.Use(httpmiddleware.SecurityHeaders())

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	r.GET("/healthz", h.health)

	api := r.Group("/api")
	if d.Limiter != nil {
		api.Use(httpmiddleware.RateLimit(d.Limiter, h.log))
	}
	api.GET("/routes", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"routes": Routes})
	})

	api.GET("/dashboard", h.dashboard)

	api.GET("/students", h.listStudents)
	api.POST("/students", h.createStudent)
	api.GET("/students/:id", h.getStudent)
	api.PUT("/students/:id", h.updateStudent)
	api.DELETE("/students/:id", h.deleteStudent)

	api.GET("/attendance", h.viewAttendance)
	api.GET("/attendance/sheet", h.attendanceSheet)
	api.POST("/attendance/mark", h.markAttendance)

	api.GET("/fees", h.listFees)
	api.GET("/fees/form", h.feeForm)
	api.POST("/fees", h.collectFee)

	return r
}

func (h *handler) health(c *gin.Context) {
	ctx := c.Request.Context()
	dbHealthy := h.DB.Healthy(ctx)
	body := gin.H{"status": "ok", "db": dbHealthy}
	status := http.StatusOK
	if !dbHealthy {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	if h.Redis != nil {
		redisHealthy := h.Redis.Healthy(ctx)
		body["redis"] = redisHealthy
		if !redisHealthy {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}
