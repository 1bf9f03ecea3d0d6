package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/emilythestrangee/votables/backend/internal/auth"
	"github.com/emilythestrangee/votables/backend/internal/config"
	"github.com/emilythestrangee/votables/backend/internal/database"
	"github.com/emilythestrangee/votables/backend/internal/handlers"
	"github.com/emilythestrangee/votables/backend/internal/logger"
	"github.com/emilythestrangee/votables/backend/internal/middleware"
)

type Server struct {
	cfg     config.Config
	db      database.Service
	handler *handlers.Handler
	issuer  *auth.Issuer
	log     *logger.Logger
}

func New(cfg config.Config, db database.Service, handler *handlers.Handler, issuer *auth.Issuer, log *logger.Logger) *Server {
	return &Server{cfg: cfg, db: db, handler: handler, issuer: issuer, log: log}
}

// NewServer wraps the router in an http.Server listening on cfg.Port.
func NewServer(cfg config.Config, db database.Service, handler *handlers.Handler, issuer *auth.Issuer, log *logger.Logger) *http.Server {
	s := New(cfg, db, handler, issuer, log)

	return &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     log.StdLog(),
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if s.cfg.Otel.Enabled {
		r.Use(otelgin.Middleware(s.cfg.Otel.ServiceName))
	}
	r.Use(middleware.AttachRequestID())
	r.Use(middleware.RequestLogger(s.log))
	r.Use(middleware.CORS(s.cfg.CORSOrigins))

	r.GET("/health", s.health)

	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(s.issuer))
		{
			protected.GET("/me", s.handler.Auth.GetMe)

			protected.POST("/votables", s.handler.Votable.CreateVotable)
			protected.GET("/votables", s.handler.Votable.GetVotables)
			protected.GET("/votables/:id", s.handler.Votable.GetVotable)
			protected.POST("/votables/:id/vote", s.handler.Votable.Vote)
			protected.GET("/votables/:id/stats", s.handler.Votable.GetStats)
		}
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	stats := s.db.Health()
	if stats["status"] != "up" {
		c.JSON(http.StatusServiceUnavailable, stats)
		return
	}
	c.JSON(http.StatusOK, stats)
}
