package sessionkit

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/MrEthical07/sessionkit/internal/rate"
	"github.com/MrEthical07/sessionkit/session"
)

// Refresh exchanges a refresh token for a new token pair and rotates the session.
//
// The steps run in a fixed order: verify the token, count the attempt against the
// identity's refresh window, then compare-and-swap the rotation record. A rate-limited
// call touches nothing else. A stale token ends the session, records a
// refresh_token_reuse audit entry and returns ErrReplayDetected; callers must not retry
// it.
//
//	Performance: 1 Lua INCR, 1 Lua CAS, 1 Redis DEL.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if !e.ready() || e.rateLimiter == nil {
		return nil, ErrEngineNotReady
	}
	if strings.TrimSpace(refreshToken) == "" {
		e.metricInc(MetricRefreshFailure)
		return nil, ErrTokenMissing
	}

	claims, err := e.refreshCodec.Verify(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, tokenError(err)
	}
	email := normalizeEmail(claims.Email)
	if email == "" {
		e.metricInc(MetricRefreshFailure)
		return nil, ErrTokenMalformed
	}

	if err := e.rateLimiter.CheckRefresh(ctx, email); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			e.metricInc(MetricRefreshRateLimited)
			return nil, ErrRateLimited
		}
		e.metricInc(MetricRefreshFailure)
		return nil, e.storeError("check_refresh_rate", err)
	}

	pair, err := e.issuePair(Identity{ID: claims.SubjectID, Email: email})
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, err
	}

	err = e.sessionStore.RotateRefreshHash(
		ctx,
		email,
		session.HashRefreshToken(refreshToken),
		session.HashRefreshToken(pair.RefreshToken),
		e.config.JWT.RefreshTTL,
	)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrRefreshHashMismatch):
			e.metricInc(MetricRefreshReuseDetected)
			e.metricInc(MetricSessionInvalidated)
			e.emitReuse(ctx, email)
			return nil, ErrReplayDetected
		case errors.Is(err, session.ErrNoRotationRecord):
			e.metricInc(MetricRefreshNoSession)
			return nil, ErrNoSession
		default:
			e.metricInc(MetricRefreshFailure)
			return nil, e.storeError("rotate_refresh_hash", err)
		}
	}

	// The rotation already happened; a stale counter only delays the next refresh.
	if err := e.rateLimiter.ResetRefresh(ctx, email); err != nil {
		e.logger.Warn("refresh counter reset failed", slog.String("email", email), slog.Any("error", err))
	}

	e.metricInc(MetricRefreshSuccess)
	return pair, nil
}
