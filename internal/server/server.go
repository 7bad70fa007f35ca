// Package server exposes the project catalogue over HTTP: a single HTML
// page, a JSON API for project records and thumbnails, and the folder
// opener.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/internal/assets"
	"github.com/mesh-intelligence/shelf/internal/opener"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// DefaultAddr is the listen address used when Config.Addr is empty.
const DefaultAddr = "0.0.0.0:9926"

// shutdownTimeout bounds how long Run waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// Config holds HTTP server configuration.
type Config struct {
	Addr  string
	Debug bool
}

// Server serves the catalogue from a RecordStore and an asset Manager.
type Server struct {
	echo       *echo.Echo
	store      types.RecordStore
	assets     *assets.Manager
	logger     *zap.Logger
	config     *Config
	openFolder func(dir string) error
}

// NewServer wires the routes. store, images and logger are required.
func NewServer(store types.RecordStore, images *assets.Manager, logger *zap.Logger, cfg *Config) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("record store cannot be nil")
	}
	if images == nil {
		return nil, fmt.Errorf("asset manager cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Debug

	s := &Server{
		echo:       e,
		store:      store,
		assets:     images,
		logger:     logger.Named("http"),
		config:     cfg,
		openFolder: opener.Open,
	}

	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(s.logger))

	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleIndex)
	s.echo.GET("/health", s.handleHealth)

	api := s.echo.Group("/api")
	api.GET("/projects", s.handleList)
	api.POST("/projects", s.handleCreate)
	api.GET("/projects/:id", s.handleGet)
	api.PUT("/projects/:id", s.handleUpdate)
	api.DELETE("/projects/:id", s.handleDelete)
	api.POST("/projects/:id/image", s.handleUpload, uploadLimit(s.assets))
	api.GET("/open-folder/:id", s.handleOpenFolder)

	s.echo.Static(s.assets.Prefix(), s.assets.Root())
}

// requestLogger logs one line per request after the handler returns.
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the error handler set the status before it is logged.
				c.Error(err)
			}
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return nil
		}
	}
}

// uploadLimit caps request bodies on the upload route a little above the
// file size limit to leave room for the multipart envelope.
func uploadLimit(m *assets.Manager) echo.MiddlewareFunc {
	return middleware.BodyLimit(fmt.Sprintf("%dK", (m.MaxBytes()+1<<20)/1024))
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.config.Addr }

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on the configured address and blocks.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.config.Addr))
	return s.echo.Start(s.config.Addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
