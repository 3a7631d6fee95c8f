// Package server exposes one dashboard session over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/gymbmi/internal/analysis"
	"github.com/KaramelBytes/gymbmi/internal/charts"
	"github.com/KaramelBytes/gymbmi/internal/generator"
	"github.com/KaramelBytes/gymbmi/internal/parser"
	"github.com/KaramelBytes/gymbmi/internal/session"
)

// Config holds the server defaults.
type Config struct {
	Addr string
	// Filter and Bins apply when a dashboard request leaves them out.
	Filter analysis.Filter
	Bins   int
	Demo   generator.Options
	Charts charts.Options
	// MaxUploadBytes caps multipart uploads held in memory.
	MaxUploadBytes int64
}

// DefaultConfig mirrors the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Addr:           "127.0.0.1:8080",
		Filter:         analysis.DefaultFilter(),
		Bins:           analysis.DefaultBins,
		Demo:           generator.DefaultOptions(),
		Charts:         charts.DefaultOptions(),
		MaxUploadBytes: 32 << 20,
	}
}

// Server serializes requests on its session; net/http serves them concurrently.
type Server struct {
	mu     sync.Mutex
	sess   *session.Session
	cfg    Config
	log    *slog.Logger
	router *gin.Engine
}

// New builds the router. A nil logger uses slog.Default().
func New(sess *session.Session, cfg Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{sess: sess, cfg: cfg, log: log}

	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	r.Use(requestLogger(log), gin.Recovery())

	r.GET("/healthz", s.health)

	api := r.Group("/api/v1")
	{
		api.POST("/bmi", s.computeBMI)
		api.POST("/history", s.addHistory)
		api.GET("/history", s.listHistory)
		api.GET("/history.csv", s.historyCSV)
		api.POST("/batch/generate", s.generateBatch)
		api.POST("/batch/upload", s.uploadBatch)
		api.GET("/batch.csv", s.batchCSV)
		api.GET("/dashboard", s.dashboard)
		api.GET("/charts/:kind", s.chart)
	}
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on cfg.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr, "session", s.sess.ID)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("server stopped")
	return nil
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request", attrs...)
			return
		}
		log.Debug("request", attrs...)
	}
}

// statusFor maps domain errors onto response codes: input the server understood but
// cannot accept is 422, anything else the client sent wrong is 400.
func statusFor(err error) int {
	var (
		verr *parser.ValidationError
		perr *parser.ParseError
		ierr *session.InputError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &perr), errors.As(err, &ierr),
		errors.Is(err, parser.ErrEmpty), errors.Is(err, parser.ErrTooManyRows):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func abort(c *gin.Context, code int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"session":   s.sess.ID,
		"timestamp": time.Now().UTC(),
	})
}
