// Package server exposes the HTTP surface: starting and stopping runs,
// streaming run events over SSE, transcript download, the model catalog and
// a health probe.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hupe1980/agora/catalog"
	"github.com/hupe1980/agora/core"
	"github.com/hupe1980/agora/logging"
	"github.com/hupe1980/agora/sim"
)

// Options configure the HTTP server.
type Options struct {
	Logger logging.Logger
	// Mode is the gin mode: debug or release.
	Mode string
	// AllowedOrigins for CORS. Empty allows none beyond same-origin.
	AllowedOrigins []string
	// KeepaliveInterval is how long an SSE stream may idle before a comment
	// frame is written.
	KeepaliveInterval time.Duration
	// CatalogPath optionally overrides the model catalog location.
	CatalogPath string
	// RequestsPerMinute bounds requests per client and path. Zero disables
	// rate limiting.
	RequestsPerMinute int
}

// Server wires the simulation registry into HTTP handlers.
type Server struct {
	registry *sim.Registry
	opts     Options
}

// New creates a Server for the given registry.
func New(registry *sim.Registry, optFns ...func(o *Options)) *Server {
	opts := Options{
		Logger:            logging.NewDefaultSlogLogger(),
		Mode:              "release",
		KeepaliveInterval: 15 * time.Second,
		RequestsPerMinute: 120,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Server{registry: registry, opts: opts}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	if s.opts.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	if s.opts.RequestsPerMinute > 0 {
		r.Use(RateLimit(NewLimiter(s.opts.RequestsPerMinute, time.Minute)))
	}

	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
			AllowCredentials: true,
		}))
	}

	r.GET("/healthz", s.health)

	api := r.Group("/api")
	{
		api.GET("/models", s.listModels)
		sims := api.Group("/simulations")
		{
			sims.POST("", s.startSimulation)
			sims.GET("/:id/events", s.streamEvents)
			sims.POST("/:id/stop", s.stopSimulation)
			sims.GET("/:id/download", s.downloadTranscript)
		}
	}
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listModels(c *gin.Context) {
	c.JSON(http.StatusOK, catalog.Load(s.opts.CatalogPath, s.opts.Logger))
}

func (s *Server) startSimulation(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid request body."))
		return
	}

	id, err := s.registry.Start(req.RunConfig())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, startedResponse{SimulationID: id})
}

func (s *Server) stopSimulation(c *gin.Context) {
	if err := s.registry.Stop(c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) downloadTranscript(c *gin.Context) {
	rec, err := s.registry.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTranscriptResponse(rec))
}

// writeError maps registry errors onto HTTP statuses. Safe messages pass
// through verbatim; anything unclassified stays generic.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody("Simulation not found."))
	case errors.Is(err, core.ErrCapacity):
		c.JSON(http.StatusConflict, errorBody("A simulation is already running. Stop it before starting a new one."))
	case errors.Is(err, core.ErrNotReady):
		c.JSON(http.StatusConflict, errorBody("Transcript not available yet."))
	case core.IsSafe(err):
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	default:
		s.opts.Logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, errorBody("Internal server error."))
	}
}

func errorBody(message string) gin.H {
	return gin.H{"error": message}
}
