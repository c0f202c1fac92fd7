package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/MrEthical07/sessionkit"
	"github.com/MrEthical07/sessionkit/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Config controls the HTTP surface. The zero value is usable for tests.
type Config struct {
	AppName string
	AppTag  string
	// Production marks cookies Secure.
	Production bool
	// Debug adds the underlying error text to 500 responses.
	Debug bool
	// CORSOrigins lists allowed origins; empty or "*" allows any origin.
	CORSOrigins []string
	// TrustedProxies are the proxy addresses whose X-Forwarded-For is honored for the
	// client IP. Nil trusts none.
	TrustedProxies []string
	// Metrics, when set, is served at GET /metrics.
	Metrics http.Handler
	Logger  *slog.Logger

	now func() time.Time
}

type server struct {
	engine *sessionkit.Engine
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// New returns a gin handler serving engine. engine must be built.
func New(engine *sessionkit.Engine, cfg Config) (*gin.Engine, error) {
	if engine == nil {
		return nil, sessionkit.ErrEngineNotReady
	}

	s := &server{engine: engine, cfg: cfg, logger: cfg.Logger, now: cfg.now}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.now == nil {
		s.now = time.Now
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	r.HandleMethodNotAllowed = true

	r.Use(
		gin.CustomRecovery(s.recoverPanic),
		s.accessLog,
		fromHTTP(middleware.SecurityHeaders),
		cors.New(corsConfig(cfg.CORSOrigins)),
		s.requestContext,
	)

	r.GET("/healthz", s.health)
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	api := r.Group("/", s.limitRequests)
	api.GET("/", fromHTTP(middleware.Guard(engine, s.writeAuthError)), s.welcome)
	api.GET("/test", s.testEndpoint)
	api.POST("/refresh_token", s.refresh)

	auth := api.Group("/api/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)
	auth.POST("/refresh", s.refresh)
	auth.POST("/logout", s.logout)

	r.NoRoute(func(c *gin.Context) {
		s.fail(c, http.StatusNotFound, "Not Found", nil)
	})
	r.NoMethod(func(c *gin.Context) {
		s.fail(c, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
	})

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	for _, o := range origins {
		if o == "*" {
			origins = nil
			break
		}
	}
	if len(origins) == 0 {
		// Reflect the request origin; a literal "*" is not allowed with credentials.
		cfg.AllowOriginFunc = func(string) bool { return true }
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

// fromHTTP runs a net/http middleware inside a gin chain. The chain is aborted when the
// middleware does not call its next handler.
func fromHTTP(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		passed := false
		mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)

		if !passed {
			c.Abort()
		}
	}
}

func (s *server) internalError(c *gin.Context, op string, err error) {
	s.logger.Error("request failed", "op", op, "path", c.FullPath(), "error", err)

	var detail any
	if s.cfg.Debug && err != nil {
		detail = err.Error()
	}
	s.fail(c, http.StatusInternalServerError, msgInternal, detail)
}

func (s *server) recoverPanic(c *gin.Context, recovered any) {
	err, ok := recovered.(error)
	if !ok {
		err = errors.New("panic")
	}
	s.logger.Error("panic recovered", "path", c.Request.URL.Path, "panic", recovered)
	s.internalError(c, "recover", err)
}
