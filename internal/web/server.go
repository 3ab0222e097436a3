// Package web exposes the dashboard as a JSON API.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/jobapply-dashboard/internal/dashboard"
	"github.com/spigell/jobapply-dashboard/internal/matchapi"
)

const (
	DefaultAddr       = ":8080"
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Controller is the part of the dashboard served over HTTP.
type Controller interface {
	Fetch(ctx context.Context) error
	Match(ctx context.Context) error
	SetFilterInput(ctx context.Context, source, minScore string) error
	Apply(ctx context.Context, jobID int64) (*matchapi.ApplyResult, error)
	Snapshot() dashboard.Snapshot
}

type Config struct {
	Addr string
	// AllowOrigins lists the CORS origins. Empty allows every origin.
	AllowOrigins []string
}

type Server struct {
	// ctx bounds the background applies; they outlive the request that started them.
	ctx    context.Context
	ctrl   Controller
	logger *zap.Logger
	addr   string
	router *gin.Engine
}

func New(ctx context.Context, ctrl Controller, logger *zap.Logger, cfg Config) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		ctx:    ctx,
		ctrl:   ctrl,
		logger: logger,
		addr:   cfg.Addr,
	}

	if s.addr == "" {
		s.addr = DefaultAddr
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", s.health)

	api := r.Group("/api/dashboard")
	{
		api.GET("", s.snapshot)
		api.POST("/fetch", s.fetch)
		api.POST("/match", s.match)
		api.POST("/filter", s.filter)
		api.POST("/jobs/:id/apply", s.apply)
	}

	s.router = r

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done and then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.logger.Info("starting the web server", zap.String("addr", s.addr))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return serveErr(err)
	case <-ctx.Done():
		s.logger.Info("stopping the web server", zap.Error(ctx.Err()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		shutdownErr := srv.Shutdown(shutdownCtx)
		// Run owns the listener goroutine until it has returned.
		if err := serveErr(<-errCh); err != nil {
			return errors.Join(shutdownErr, err)
		}
		return shutdownErr
	}
}

func serveErr(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Debug("handled request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
