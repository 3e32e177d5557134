package transport

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/talkline/roomsession/internal/log"
	"github.com/talkline/roomsession/internal/validation"
	"github.com/talkline/roomsession/sessions"
)

const serviceName = "roomsession"

// Router exposes the coordinator to local callers. Commands are accepted with
// 202; their outcome arrives on the event stream.
type Router struct {
	coordinator    sessions.Coordinator
	allowedOrigins []string
	clock          clockwork.Clock
	engine         *gin.Engine
	logger         *log.Logger
}

func NewRouter(coordinator sessions.Coordinator, cfg *Config, logger *log.Logger) *Router {
	return newRouter(coordinator, cfg, clockwork.NewRealClock(), logger)
}

func newRouter(coordinator sessions.Coordinator, cfg *Config, clock clockwork.Clock, logger *log.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware(serviceName))
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: false,
	}))

	r := &Router{
		coordinator:    coordinator,
		allowedOrigins: cfg.AllowedOrigins,
		clock:          clock,
		engine:         engine,
		logger:         logger,
	}

	// Request logging middleware
	r.engine.Use(func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-Id", requestID)
		r.logger.Info("Incoming request",
			log.String("method", c.Request.Method),
			log.String("url", c.Request.URL.String()),
			log.String("requestId", requestID))
		c.Next()
	})

	r.setupRoutes()
	return r
}

func (r *Router) Handler() http.Handler {
	return r.engine
}

func (r *Router) setupRoutes() {
	r.engine.POST("/api/rooms/:token/join", r.join)
	r.engine.POST("/api/rooms/:token/leave", r.leave)
	r.engine.POST("/api/rooms/:token/rejoin", r.rejoin)
	r.engine.PUT("/api/resume", r.setPendingResume)

	r.engine.GET("/api/rooms", r.listHandles)
	r.engine.GET("/api/rooms/:token", r.getHandle)

	r.engine.GET("/api/events", r.streamEvents)

	r.engine.GET("/health", r.healthCheck)
}

func validationFailed(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "Validation failed",
		"details": validation.FormatValidationError(err),
	})
}

func accepted(c *gin.Context, op string, fields gin.H) {
	commands.Add(c.Request.Context(), 1, metric.WithAttributes(attribute.String("op", op)))
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusAccepted, body)
}

// bindUsage binds the token and usage of a join or leave.
func bindUsage(c *gin.Context) (string, sessions.Usage, bool) {
	var uri RoomURI
	if err := c.ShouldBindUri(&uri); err != nil {
		validationFailed(c, err)
		return "", "", false
	}
	var body UsageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		validationFailed(c, err)
		return "", "", false
	}
	return uri.Token, body.Usage, true
}

func (r *Router) join(c *gin.Context) {
	token, usage, ok := bindUsage(c)
	if !ok {
		return
	}
	r.coordinator.RequestJoin(token, usage)
	accepted(c, "join", gin.H{"token": token, "usage": usage})
}

func (r *Router) leave(c *gin.Context) {
	token, usage, ok := bindUsage(c)
	if !ok {
		return
	}
	r.coordinator.RequestLeave(token, usage)
	accepted(c, "leave", gin.H{"token": token, "usage": usage})
}

func (r *Router) rejoin(c *gin.Context) {
	var uri RoomURI
	if err := c.ShouldBindUri(&uri); err != nil {
		validationFailed(c, err)
		return
	}
	r.coordinator.Rejoin(uri.Token)
	accepted(c, "rejoin", gin.H{"token": uri.Token})
}

func (r *Router) setPendingResume(c *gin.Context) {
	var body ResumeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		validationFailed(c, err)
		return
	}
	r.coordinator.SetPendingResume(body.Token, body.WithVideo)
	accepted(c, "resume", gin.H{"token": body.Token, "withVideo": body.WithVideo})
}

func (r *Router) listHandles(c *gin.Context) {
	handles := r.coordinator.Handles()
	if handles == nil {
		handles = []sessions.Handle{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(handles),
		"rooms":   handles,
	})
}

func (r *Router) getHandle(c *gin.Context) {
	var uri RoomURI
	if err := c.ShouldBindUri(&uri); err != nil {
		validationFailed(c, err)
		return
	}

	handle, ok := r.coordinator.Handle(uri.Token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Room not joined",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"room":    handle,
	})
}

func (r *Router) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   serviceName,
		"rooms":     len(r.coordinator.Handles()),
		"timestamp": r.clock.Now().Unix(),
	})
}
