// Package api exposes spread scheduling over HTTP.
package api

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"redis-spread-queue/internal/queue"
	"redis-spread-queue/internal/spread"
	"redis-spread-queue/internal/store"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func init() {
	// keep JSON integers as json.Number so spread options and modulo keys
	// are not turned into floats
	binding.EnableDecoderUseNumber = true
}

type Deps struct {
	Queue    *queue.RedisQueue
	Store    *store.Store
	Handlers *spread.Registry
	Spreader *spread.Spreader
	APIKey   string
	Logger   *slog.Logger
	Now      func() time.Time
}

type server struct {
	Deps
}

// New builds the router.
func New(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Spreader == nil {
		d.Spreader = spread.New(spread.WithLogger(d.Logger))
	}
	s := &server{Deps: d}

	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := r.Group("/", s.requireAPIKey())
	authed.GET("/handlers", s.listHandlers)
	authed.POST("/jobs", s.enqueue)
	authed.POST("/spread/:type", s.spreadJob)
	authed.GET("/jobs/:id", s.getJob)

	return r
}

func (s *server) requireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.APIKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		c.Next()
	}
}

func (s *server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.DebugContext(c.Request.Context(), "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("dur", time.Since(start)),
		)
	}
}

// errorStatus maps spread and registry errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, spread.ErrHandlerNotFound):
		return http.StatusNotFound
	case spread.IsConfigError(err), errors.Is(err, queue.ErrDelayOutOfRange):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *server) fail(c *gin.Context, err error) {
	code := errorStatus(err)
	if code == http.StatusInternalServerError {
		s.Logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}
