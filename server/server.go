// Package server exposes the pricing registry over HTTP with gin.
//
//	GET  /health
//	GET  /v1/models
//	POST /v1/models/:name/price
//	POST /v1/models/:name/sweep
//	GET  /metrics
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/katalvlaran/lattix/pricing"
	"github.com/katalvlaran/lattix/telemetry"
)

// Defaults for Config fields left zero.
const (
	DefaultMaxPeriods = 2000
	DefaultTimeout    = 30 * time.Second
	shutdownGrace     = 10 * time.Second
)

// Config wires the server's collaborators.
type Config struct {
	Registry *pricing.Registry
	Logger   *slog.Logger
	// Registerer and Gatherer back the metrics; a fresh registry when nil.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	// MaxPeriods caps the lattice size a request may ask for.
	MaxPeriods int
	// Timeout bounds each pricing request.
	Timeout time.Duration
	// AllowedOrigins for cross-origin browser calls; all origins when empty.
	AllowedOrigins []string
}

// Server is the HTTP front end.
type Server struct {
	cfg     Config
	metrics *telemetry.Metrics
	router  *gin.Engine
	handler http.Handler
}

// New builds the router. Zero Config fields take their defaults.
func New(cfg Config) *Server {
	if cfg.Registry == nil {
		cfg.Registry = pricing.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registerer == nil || cfg.Gatherer == nil {
		reg := prometheus.NewRegistry()
		cfg.Registerer, cfg.Gatherer = reg, reg
	}
	if cfg.MaxPeriods <= 0 {
		cfg.MaxPeriods = DefaultMaxPeriods
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{cfg: cfg, metrics: telemetry.NewMetrics(cfg.Registerer)}
	s.router = s.routes()
	s.handler = cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	}).Handler(s.router)

	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(s.observe(), s.recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/v1")
	{
		v1.GET("/models", s.listModels)
		v1.POST("/models/:name/price", s.price)
		v1.POST("/models/:name/sweep", s.sweep)
	}

	return r
}

// Handler returns the router behind the CORS layer.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("server: listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.cfg.Logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
