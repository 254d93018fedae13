package ui

import (
	"context"
	"net/http"
	"time"

	"paxclean/app"
	"paxclean/internal/config"
	"paxclean/internal/logging"
	"paxclean/ports"
	"paxclean/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Server serves the run API
type Server struct {
	router   *gin.Engine
	cleaning *app.CleaningService
	runs     ports.RunRepository
	config   config.ServerConfig
	logger   logrus.FieldLogger
}

// NewServer creates a new web server instance
func NewServer(cleaning *app.CleaningService, runs ports.RunRepository, cfg config.ServerConfig, logger logrus.FieldLogger) *Server {
	s := &Server{
		router:   gin.New(),
		cleaning: cleaning,
		runs:     runs,
		config:   cfg,
		logger:   logging.Component(logger, "http"),
	}
	s.router.MaxMultipartMemory = int64(cfg.MaxUploadMB) << 20
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger(s.logger))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.POST("/runs", s.handleCreateRun)
	api.GET("/runs", s.handleListRuns)
	api.GET("/runs/:id", s.handleGetRun)
	api.GET("/runs/:id/report", s.handleRunReport)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
