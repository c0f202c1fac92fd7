package sessionkit

import (
	"context"
	"errors"
	"strings"
)

// Logout ends the session that bearerToken belongs to.
//
// bodyToken must equal bearerToken exactly; otherwise ErrInvalidToken is returned and
// nothing changes. When both are empty there is nothing to revoke and Logout succeeds,
// letting the transport still clear the refresh cookie. Otherwise the access token's jti
// is blacklisted for the shorter of its remaining life and Blacklist.MaxTTL, and the
// identity's rotation record is deleted. Repeating a logout is harmless.
//
// The token signature is checked but its expiry is not, so a client holding an expired
// access token can still log out.
func (e *Engine) Logout(ctx context.Context, bearerToken, bodyToken string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	bearerToken = strings.TrimSpace(bearerToken)
	bodyToken = strings.TrimSpace(bodyToken)
	if bearerToken != bodyToken {
		e.metricInc(MetricLogoutRejected)
		return ErrInvalidToken
	}
	if bearerToken == "" {
		e.metricInc(MetricLogout)
		return nil
	}

	claims, err := e.accessCodec.VerifySignature(bearerToken)
	if err != nil {
		e.metricInc(MetricLogoutRejected)
		return errors.Join(ErrInvalidToken, tokenError(err))
	}

	ttl := e.config.Blacklist.MaxTTL
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Time.Sub(e.now()); remaining < ttl {
			ttl = remaining
		}
	}
	if err := e.sessionStore.Blacklist(ctx, claims.ID, ttl); err != nil {
		return e.storeError("blacklist", err)
	}

	if email := normalizeEmail(claims.Email); email != "" {
		if err := e.sessionStore.DeleteRefreshHash(ctx, email); err != nil {
			return e.storeError("delete_refresh_hash", err)
		}
	}

	e.metricInc(MetricLogout)
	e.metricInc(MetricSessionInvalidated)
	return nil
}
