package server

import (
	"context"
	"net/http"
	"time"

	_ "catalog/docs"
	"catalog/internal/config"
	"catalog/internal/handlers"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Server represents the recommendation API server
type Server struct {
	echo        *echo.Echo
	config      *config.Config
	index       handlers.IndexStats
	recommender handlers.Recommender
	logger      zerolog.Logger
}

// New creates a new server instance. index and recommender may be nil when
// their backends are unavailable; the affected endpoints then report 503.
func New(cfg *config.Config, index handlers.IndexStats, recommender handlers.Recommender, logger zerolog.Logger) *Server {
	return &Server{
		config:      cfg,
		index:       index,
		recommender: recommender,
		logger:      logger,
	}
}

// zerologMiddleware creates a zerolog-based logging middleware for Echo
func (s *Server) zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			s.logger.Info().
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Str("user_agent", req.UserAgent()).
				Msg("HTTP request")

			return nil
		}
	}
}

// Initialize sets up the Echo framework with middleware and routes
func (s *Server) Initialize() {
	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.Use(s.zerologMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())
	s.echo.Use(middleware.BodyLimit("64K"))

	s.setupRoutes()
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) setupRoutes() {
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// Health endpoints stay at root level for monitoring
	s.echo.GET("/healthz", handlers.HealthHandler(s.config.Version))
	s.echo.GET("/healthz/index", handlers.IndexHealthHandler(s.index))

	api := s.echo.Group("/api")
	api.GET("/", handlers.RootHandler(s.config.Version))
	api.POST("/recommend", handlers.RecommendHandler(s.recommender, s.logger))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info().Str("port", s.config.Port).Msg("Server starting")
	return s.echo.Start(":" + s.config.Port)
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
