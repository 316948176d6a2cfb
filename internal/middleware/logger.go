package middleware

import (
	"bytes"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	ContextKeyRequestID = "request_id"
	HeaderRequestID     = "X-Request-ID"
)

// RequestID injects an X-Request-ID header into the request and response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// Logger attaches a request-scoped logger carrying the request ID to the
// request context and logs each request and its completion. Image payloads
// and credentials are redacted from the logged body and headers.
func Logger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		logger := base.With().Str("request_id", c.GetString(ContextKeyRequestID)).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		event := logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("client_ip", c.ClientIP()).
			Interface("headers", RedactHeaders(c.Request.Header))
		if body := readBody(c); len(body) > 0 {
			event = event.Interface("body", RedactBody(body))
		}
		event.Msg("incoming request")

		c.Next()

		status := c.Writer.Status()
		done := logger.Info()
		switch {
		case status >= http.StatusInternalServerError:
			done = logger.Error()
		case status >= http.StatusBadRequest:
			done = logger.Warn()
		}
		done.
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int("response_bytes", c.Writer.Size()).
			Msg("request completed")
	}
}

// readBody returns the request body and puts an identical reader back for the
// handlers.
func readBody(c *gin.Context) []byte {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	body, err := io.ReadAll(c.Request.Body)
	_ = c.Request.Body.Close()
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("reading request body for log")
		return nil
	}
	return body
}

// Recovery recovers from panics and returns a 500 error without details.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		zerolog.Ctx(c.Request.Context()).Error().
			Interface("panic", recovered).
			Str("stack", string(debug.Stack())).
			Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "INTERNAL_ERROR", "message": "an internal error occurred"},
		})
	})
}
