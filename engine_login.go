package sessionkit

import (
	"context"
	"log/slog"

	"github.com/MrEthical07/sessionkit/session"
)

// Login authenticates email and password and starts a session.
//
// An unknown email and a wrong password both yield ErrInvalidCredentials, and both pay
// for one password verification. On success the identity's rotation record is
// overwritten, so any refresh token from an earlier login stops working.
//
//	Performance: 1 identity lookup, 1 password verify, 1 Redis SET.
func (e *Engine) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	if !e.ready() || e.identities == nil || e.passwordHash == nil {
		return nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	rec, found, err := e.identities.FindByEmail(ctx, email)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, e.storeError("find_identity", err)
	}

	digest := e.dummyHash
	if found {
		digest = rec.PasswordHash
	}
	ok, verifyErr := e.passwordHash.Verify(password, digest)
	if !found || verifyErr != nil || !ok {
		if found && verifyErr != nil {
			e.logger.Warn("stored password digest rejected", slog.String("identity_id", rec.ID), slog.Any("error", verifyErr))
		}
		e.metricInc(MetricLoginFailure)
		return nil, ErrInvalidCredentials
	}

	identity := rec.Identity()
	identity.Email = normalizeEmail(identity.Email)

	pair, err := e.issuePair(identity)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, err
	}

	if err := e.sessionStore.SetRefreshHash(ctx, identity.Email, session.HashRefreshToken(pair.RefreshToken), e.config.JWT.RefreshTTL); err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, e.storeError("set_refresh_hash", err)
	}

	if recorder, ok := e.identities.(LoginRecorder); ok {
		info := LoginInfo{
			IP:        ClientIPFromContext(ctx),
			UserAgent: UserAgentFromContext(ctx),
			At:        e.now(),
		}
		if err := recorder.RecordLogin(ctx, identity.ID, info); err != nil {
			e.logger.Warn("recording last login failed", slog.String("identity_id", identity.ID), slog.Any("error", err))
		}
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionCreated)
	return pair, nil
}
