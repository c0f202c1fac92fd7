package sessionkit

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/MrEthical07/sessionkit/audit"
	"github.com/MrEthical07/sessionkit/internal/rate"
	"github.com/MrEthical07/sessionkit/jwt"
	"github.com/MrEthical07/sessionkit/session"
	"github.com/go-playground/validator/v10"
)

// Engine implements login, refresh rotation, logout and access validation on top of the
// token codecs, the revocation store and the rate limiter.
//
// Engine holds no per-identity state in process; every method is safe for concurrent use.
type Engine struct {
	config       Config
	sessionStore *session.Store
	rateLimiter  *rate.Limiter
	accessCodec  *jwt.Codec
	refreshCodec *jwt.Codec
	identities   IdentityStore
	passwordHash PasswordHasher
	dummyHash    string
	validate     *validator.Validate
	audit        *audit.Dispatcher
	metrics      *Metrics
	logger       *slog.Logger
	now          func() time.Time
}

// Close drains the audit dispatcher. It does not close the Redis client, which the
// caller owns.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// Ping checks that the revocation store is reachable.
func (e *Engine) Ping(ctx context.Context) (time.Duration, error) {
	if e == nil || e.sessionStore == nil {
		return 0, ErrEngineNotReady
	}
	d, err := e.sessionStore.Ping(ctx)
	if err != nil {
		return d, errors.Join(ErrStoreUnavailable, err)
	}
	return d, nil
}

// RefreshTTL returns the lifetime of refresh tokens, used by transports for cookie Max-Age.
func (e *Engine) RefreshTTL() time.Duration {
	return e.config.JWT.RefreshTTL
}

// CheckRequest counts one request from ip against the coarse per-IP throttle. On
// ErrRateLimited it also returns how long until the window resets.
func (e *Engine) CheckRequest(ctx context.Context, ip string) (time.Duration, error) {
	if e == nil || e.rateLimiter == nil {
		return 0, ErrEngineNotReady
	}
	w, err := e.rateLimiter.CheckRequest(ctx, ip)
	switch {
	case err == nil:
		return 0, nil
	case errors.Is(err, rate.ErrRateLimited):
		return w.ResetIn, ErrRateLimited
	default:
		e.metricInc(MetricStoreUnavailable)
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
}

// AuditDropped returns how many audit records never reached the sink.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) ready() bool {
	return e != nil && e.sessionStore != nil && e.accessCodec != nil && e.refreshCodec != nil
}

// issuePair mints an access and a refresh token under one fresh jti.
func (e *Engine) issuePair(id Identity) (*TokenPair, error) {
	jti, err := e.accessCodec.NewID()
	if err != nil {
		return nil, err
	}
	sub := jwt.Subject{ID: id.ID, Email: id.Email}

	access, err := e.accessCodec.IssueWithID(sub, jti)
	if err != nil {
		return nil, err
	}
	refresh, err := e.refreshCodec.IssueWithID(sub, jti)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		Identity:         id,
		TokenID:          jti,
		AccessToken:      access.Value,
		RefreshToken:     refresh.Value,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

func (e *Engine) storeError(op string, err error) error {
	e.metricInc(MetricStoreUnavailable)
	e.logger.Error("store unavailable", slog.String("op", op), slog.Any("error", err))
	return errors.Join(ErrStoreUnavailable, err)
}

func (e *Engine) emitReuse(ctx context.Context, email string) {
	ip := ClientIPFromContext(ctx)
	ua := UserAgentFromContext(ctx)
	e.logger.Warn("refresh token reuse detected",
		slog.String("email", email),
		slog.String("ip", ip),
	)
	if e.audit == nil {
		return
	}
	e.audit.Emit(ctx, audit.NewRecord(audit.TypeRefreshTokenReuse, email, ip, ua, e.now()))
}

// tokenError maps codec failures onto the engine's taxonomy.
func tokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrNotYetValid):
		return ErrTokenNotYetValid
	case errors.Is(err, jwt.ErrMalformed):
		return ErrTokenMalformed
	default:
		return ErrTokenInvalidSignature
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
