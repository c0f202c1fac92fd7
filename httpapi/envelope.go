package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
)

// TimestampLayout formats Response.Timestamp as "YYYY-MM-DD HH:mm:ss" in server local time.
const TimestampLayout = "2006-01-02 15:04:05"

// Response is the body of every reply. Status duplicates the HTTP status code for
// clients that cannot read it.
type Response struct {
	Status    int    `json:"status"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Meta      any    `json:"meta,omitempty"`
	Error     any    `json:"error,omitempty"`
}

// TokenData is the data payload of a successful login or refresh.
type TokenData struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *server) envelope(status int, message string) Response {
	return Response{
		Status:    status,
		Timestamp: s.now().Format(TimestampLayout),
		Message:   message,
	}
}

func (s *server) respond(c *gin.Context, status int, message string, data any) {
	resp := s.envelope(status, message)
	resp.Data = data
	c.JSON(status, resp)
}

// fail aborts the chain. detail goes to the error field.
func (s *server) fail(c *gin.Context, status int, message string, detail any) {
	resp := s.envelope(status, message)
	resp.Error = detail
	c.AbortWithStatusJSON(status, resp)
}

func (s *server) failWithMeta(c *gin.Context, status int, message string, meta any) {
	resp := s.envelope(status, message)
	resp.Meta = meta
	c.AbortWithStatusJSON(status, resp)
}
