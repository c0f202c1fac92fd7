package sessionkit

import (
	"context"
	"strings"
	"time"

	"github.com/MrEthical07/sessionkit/jwt"
)

// Authorize validates an access token for a protected request.
//
// The order is cheapest first: decode without verifying to read jti and exp, reject an
// expired token locally, consult the blacklist, and only then verify the signature. A
// blacklist lookup that fails returns ErrStoreUnavailable; it is never treated as "not
// revoked". An expired token is rejected without any store call.
//
//	Performance: 0 Redis commands for expired or undecodable tokens, 1 EXISTS otherwise.
func (e *Engine) Authorize(ctx context.Context, bearerToken string) (*jwt.Claims, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricAuthorizeLatency, time.Since(start)) }()
	}

	bearerToken = strings.TrimSpace(bearerToken)
	if bearerToken == "" {
		e.metricInc(MetricAuthorizeFailure)
		return nil, ErrTokenMissing
	}

	unverified, err := jwt.DecodeUnsafe(bearerToken)
	if err != nil || unverified.ID == "" || unverified.ExpiresAt == nil {
		e.metricInc(MetricAuthorizeFailure)
		return nil, ErrTokenMalformed
	}
	if !e.now().Before(unverified.ExpiresAt.Time.Add(e.config.JWT.Leeway)) {
		e.metricInc(MetricAuthorizeFailure)
		return nil, ErrTokenExpired
	}

	listed, err := e.sessionStore.IsBlacklisted(ctx, unverified.ID)
	if err != nil {
		e.metricInc(MetricAuthorizeFailure)
		return nil, e.storeError("is_blacklisted", err)
	}
	if listed {
		e.metricInc(MetricAuthorizeBlacklisted)
		return nil, ErrTokenBlacklisted
	}

	claims, err := e.accessCodec.Verify(bearerToken)
	if err != nil {
		e.metricInc(MetricAuthorizeFailure)
		return nil, tokenError(err)
	}

	e.metricInc(MetricAuthorizeSuccess)
	return claims, nil
}
