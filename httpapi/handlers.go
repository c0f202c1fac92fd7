package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MrEthical07/sessionkit"
	"github.com/MrEthical07/sessionkit/middleware"
	"github.com/gin-gonic/gin"
)

type registerBody struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type logoutBody struct {
	Token string `json:"token"`
}

func (s *server) register(c *gin.Context) {
	var body registerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}

	id, err := s.engine.Register(c.Request.Context(), sessionkit.RegisterRequest{
		FullName: body.FullName,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		var verr *sessionkit.ValidationError
		switch {
		case errors.As(err, &verr):
			s.fail(c, http.StatusBadRequest, msgValidationFailed, verr.Fields)
		case errors.Is(err, sessionkit.ErrDuplicateIdentity):
			s.fail(c, http.StatusBadRequest, msgEmailTaken, nil)
		default:
			s.internalError(c, "register", err)
		}
		return
	}

	s.respond(c, http.StatusCreated, "User registered successfully", gin.H{
		"_id":   id.ID,
		"email": id.Email,
	})
}

func (s *server) login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}

	pair, err := s.engine.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		status, msg := StatusFor(err)
		if status == http.StatusInternalServerError {
			s.internalError(c, "login", err)
			return
		}
		s.fail(c, status, msg, nil)
		return
	}

	s.setRefreshCookie(c, pair.RefreshToken)
	c.Header("Authorization", "Bearer "+pair.AccessToken)
	s.respond(c, http.StatusOK, "Logged in successfully", tokenData(pair))
}

// refresh accepts the token from the cookie first, then from the Authorization header.
func (s *server) refresh(c *gin.Context) {
	token, err := c.Cookie(RefreshCookieName)
	if err != nil || token == "" {
		token, _ = middleware.BearerToken(c.GetHeader("Authorization"))
	}
	if token == "" {
		s.fail(c, http.StatusUnauthorized, msgRefreshMissing, nil)
		return
	}

	pair, err := s.engine.Refresh(c.Request.Context(), token)
	if err != nil {
		if !keepsRefreshCookie(err) {
			s.clearRefreshCookie(c)
		}
		status, msg := refreshStatus(err)
		if status == http.StatusInternalServerError {
			s.internalError(c, "refresh", err)
			return
		}
		s.fail(c, status, msg, nil)
		return
	}

	s.setRefreshCookie(c, pair.RefreshToken)
	c.Header("Authorization", "Bearer "+pair.AccessToken)
	s.respond(c, http.StatusOK, "New access token issued", tokenData(pair))
}

// logout requires the bearer token and the body token to be the same token.
func (s *server) logout(c *gin.Context) {
	var body logoutBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		s.fail(c, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}
	bearer, _ := middleware.BearerToken(c.GetHeader("Authorization"))

	if err := s.engine.Logout(c.Request.Context(), bearer, body.Token); err != nil {
		status, msg := StatusFor(err)
		if status == http.StatusInternalServerError {
			s.internalError(c, "logout", err)
			return
		}
		s.fail(c, status, msg, nil)
		return
	}

	s.clearRefreshCookie(c)
	s.respond(c, http.StatusOK, "Logged out successfully", nil)
}

func (s *server) welcome(c *gin.Context) {
	data := gin.H{"app_name": s.cfg.AppName, "app_tag": s.cfg.AppTag}
	if claims, ok := middleware.ClaimsFromContext(c.Request.Context()); ok {
		data["email"] = claims.Email
	}
	s.respond(c, http.StatusOK, fmt.Sprintf("Welcome to %s build version %s", s.cfg.AppName, s.cfg.AppTag), data)
}

func (s *server) testEndpoint(c *gin.Context) {
	s.respond(c, http.StatusOK, "This is a test endpoint", nil)
}

func (s *server) health(c *gin.Context) {
	latency, err := s.engine.Ping(c.Request.Context())
	if err != nil {
		s.logger.Warn("health check failed", "error", err)
		s.fail(c, http.StatusServiceUnavailable, "Service Unavailable", gin.H{"redis": "down"})
		return
	}
	s.respond(c, http.StatusOK, "OK", gin.H{"redis": "up", "latency_ms": latency.Milliseconds()})
}

func tokenData(pair *sessionkit.TokenPair) TokenData {
	return TokenData{
		Token:     pair.AccessToken,
		TokenType: "Bearer",
		ExpiresAt: pair.AccessExpiresAt,
	}
}
