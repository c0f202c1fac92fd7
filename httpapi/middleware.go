package httpapi

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/MrEthical07/sessionkit"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

func (s *server) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()

	s.logger.Info("http request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start),
		"ip", c.ClientIP(),
	)
}

// requestContext attaches the caller's address and user agent so the engine can record
// them on logins and audit entries.
func (s *server) requestContext(c *gin.Context) {
	ctx := sessionkit.WithClientIP(c.Request.Context(), c.ClientIP())
	ctx = sessionkit.WithUserAgent(ctx, c.Request.UserAgent())
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

func (s *server) limitRequests(c *gin.Context) {
	resetIn, err := s.engine.CheckRequest(c.Request.Context(), c.ClientIP())
	switch {
	case err == nil:
		c.Next()
	case errors.Is(err, sessionkit.ErrRateLimited):
		retry := int(math.Ceil(resetIn.Seconds()))
		c.Header("Retry-After", strconv.Itoa(retry))
		s.failWithMeta(c, http.StatusTooManyRequests, msgTooManyRequests, gin.H{"retry_after_seconds": retry})
	default:
		s.internalError(c, "check_request", err)
	}
}

// writeAuthError renders Guard failures. It runs with the gin writer, so the access
// log still sees the status.
func (s *server) writeAuthError(w http.ResponseWriter, _ *http.Request, err error) {
	status, msg := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("authorize failed", "error", err)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = render.JSON{Data: s.envelope(status, msg)}.Render(w)
}
