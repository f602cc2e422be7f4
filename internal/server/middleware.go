package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestLogMiddleware logs each request with a correlation id and safe
// fields only. Request and response bodies are never logged.
func RequestLogMiddleware(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		requestID := ensureRequestID(c)

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Int64("bytes_in", normalizeBytes(c.Request.ContentLength)),
			zap.Int("bytes_out", normalizeSize(c.Writer.Size())),
		}

		if lastErr := c.Errors.Last(); lastErr != nil {
			fields = append(fields, zap.String("error", lastErr.Err.Error()))
		}

		if route == "/metrics" || route == "/health" {
			log.Debug("http_request", fields...)
			return
		}
		if status >= http.StatusInternalServerError {
			log.Error("http_request", fields...)
			return
		}
		log.Info("http_request", fields...)
	}
}

func ensureRequestID(c *gin.Context) string {
	requestID := strings.TrimSpace(c.GetHeader("X-Request-Id"))
	if requestID == "" {
		requestID = uuid.NewString()
	}

	c.Set("request_id", requestID)
	c.Header("X-Request-Id", requestID)
	return requestID
}

func normalizeBytes(value int64) int64 {
	if value < 0 {
		return 0
	}
	return value
}

func normalizeSize(value int) int {
	if value < 0 {
		return 0
	}
	return value
}

// IntentRateLimit gates intent creation per client IP.
func (s *Server) IntentRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.intentLimiter.allow(c.ClientIP()) {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

// rateLimiter is a fixed-window counter per key, in process only.
type rateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	counts map[string]*windowCount
}

type windowCount struct {
	windowStart time.Time
	count       int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		window: window,
		counts: map[string]*windowCount{},
	}
}

func (r *rateLimiter) allow(key string) bool {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.counts[key]
	if !ok || now.Sub(entry.windowStart) >= r.window {
		r.counts[key] = &windowCount{windowStart: now, count: 1}
		return true
	}
	if entry.count >= r.limit {
		return false
	}
	entry.count++
	return true
}
