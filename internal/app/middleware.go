package app

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/garyellow/docmock/internal/ctxutil"
	"github.com/garyellow/docmock/internal/logger"
	"github.com/garyellow/docmock/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDHeaders are checked in order for an upstream request ID.
var requestIDHeaders = []string{"X-Request-Id", "X-Correlation-Id"}

// requestContextMiddleware attaches a request ID and the client IP to the
// request context. An upstream request ID is reused, otherwise a UUID is
// generated. The ID is echoed in the X-Request-Id response header.
func requestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var requestID string
		for _, h := range requestIDHeaders {
			if requestID = c.GetHeader(h); requestID != "" {
				break
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := ctxutil.WithRequestID(c.Request.Context(), requestID)
		ctx = ctxutil.WithClientIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-Id", requestID)
		c.Next()
	}
}

// securityHeadersMiddleware adds security headers to responses.
// The preview pages use inline styles and data: images, and the preview
// form posts back to this origin.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy",
			"default-src 'none'; style-src 'unsafe-inline'; img-src 'self' data:; form-action 'self'; frame-ancestors 'none'")
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Next()
	}
}

// loggingMiddleware logs HTTP requests with status-based log levels:
// 5xx=Error, 4xx=Warn, 404=Debug, 3xx/2xx=Debug.
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		entry := log.WithField("http_method", method).
			WithField("http_path", path).
			WithField("http_route", c.FullPath()).
			WithField("http_status", status).
			WithField("duration_ms", duration.Milliseconds()).
			WithField("response_bytes", c.Writer.Size()).
			WithField("client_ip", c.ClientIP())

		if requestID, ok := ctxutil.GetRequestID(c.Request.Context()); ok {
			entry = entry.WithRequestID(requestID)
		}
		if len(c.Errors) > 0 {
			entry = entry.WithError(c.Errors.Last().Err)
		}

		switch {
		case status >= 500:
			entry.Error("HTTP request failed")
		case status >= 400 && status != http.StatusNotFound:
			entry.Warn("HTTP request rejected")
		case status == http.StatusNotFound:
			entry.Debug("HTTP request not found")
		default:
			entry.Debug("HTTP request completed")
		}
	}
}

// rateLimitMiddleware rejects callers whose bucket is empty with 429 and a
// Retry-After header in whole seconds.
func rateLimitMiddleware(limiter *ratelimit.KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ctxutil.GetClientIP(c.Request.Context())
		if limiter.Allow(key) {
			c.Next()
			return
		}

		retry := max(1, int(math.Ceil(limiter.RetryAfter(key).Seconds())))
		c.Header("Retry-After", strconv.Itoa(retry))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": retry,
		})
	}
}
