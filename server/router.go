// Package server exposes the accent scorer and the full analysis pipeline
// over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/midhat81/Accent-Detection/accent"
	cfg "github.com/midhat81/Accent-Detection/config"
	"github.com/midhat81/Accent-Detection/orchestrator"
	"github.com/sirupsen/logrus"
)

// Analyzer runs the full pipeline for a local path or URL.
type Analyzer interface {
	Run(ctx context.Context, source string) *orchestrator.Result
}

type Server struct {
	analyzer  Analyzer
	scorer    *accent.Scorer
	log       logrus.FieldLogger
	scratch   string
	maxUpload int64
	memory    int64
}

// New builds a Server. Uploads larger than sc.MaxUploadMiB are rejected;
// parts larger than sc.MultipartMemoryMiB are buffered on disk.
func New(a Analyzer, scorer *accent.Scorer, log logrus.FieldLogger, scratchDir string, sc cfg.Server) *Server {
	return &Server{
		analyzer:  a,
		scorer:    scorer,
		log:       log,
		scratch:   scratchDir,
		maxUpload: int64(sc.MaxUploadMiB) << 20,
		memory:    int64(sc.MultipartMemoryMiB) << 20,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	if s.memory > 0 {
		router.MaxMultipartMemory = s.memory
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/")
	{
		api.GET("/profiles", s.profilesHandler)
		api.POST("/classify", s.classifyHandler)
		api.POST("/analyze", s.analyzeHandler)
	}
	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Info("request")
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, bind string) error {
	srv := &http.Server{Addr: bind, Handler: s.Router(), ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("bind", bind).Info("http server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
