package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/MrEthical07/sessionkit"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{sessionkit.ErrInvalidCredentials, http.StatusUnauthorized},
		{sessionkit.ErrTokenMissing, http.StatusUnauthorized},
		{sessionkit.ErrTokenMalformed, http.StatusBadRequest},
		{sessionkit.ErrTokenExpired, http.StatusUnauthorized},
		{sessionkit.ErrTokenInvalidSignature, http.StatusForbidden},
		{sessionkit.ErrTokenNotYetValid, http.StatusBadRequest},
		{sessionkit.ErrTokenBlacklisted, http.StatusForbidden},
		{sessionkit.ErrRateLimited, http.StatusTooManyRequests},
		{sessionkit.ErrReplayDetected, http.StatusForbidden},
		{sessionkit.ErrNoSession, http.StatusUnauthorized},
		{sessionkit.ErrDuplicateIdentity, http.StatusBadRequest},
		{sessionkit.ErrValidationFailed, http.StatusBadRequest},
		{sessionkit.ErrInvalidToken, http.StatusUnauthorized},
		{sessionkit.ErrStoreUnavailable, http.StatusInternalServerError},
		{errors.Join(sessionkit.ErrStoreUnavailable, errors.New("dial tcp: refused")), http.StatusInternalServerError},
		{errors.Join(sessionkit.ErrInvalidToken, sessionkit.ErrTokenInvalidSignature), http.StatusUnauthorized},
		{fmt.Errorf("wrapped: %w", sessionkit.ErrTokenExpired), http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		status, msg := StatusFor(tc.err)
		if status != tc.status || msg == "" {
			t.Fatalf("%v: expected %d, got %d %q", tc.err, tc.status, status, msg)
		}
	}
}

func TestRefreshStatusWording(t *testing.T) {
	if status, msg := refreshStatus(sessionkit.ErrTokenExpired); status != http.StatusUnauthorized || msg != msgRefreshExpired {
		t.Fatalf("expired: got %d %q", status, msg)
	}
	if status, msg := refreshStatus(sessionkit.ErrTokenInvalidSignature); status != http.StatusForbidden || msg != msgRefreshInvalid {
		t.Fatalf("signature: got %d %q", status, msg)
	}
	if status, _ := refreshStatus(sessionkit.ErrReplayDetected); status != http.StatusForbidden {
		t.Fatalf("replay: got %d", status)
	}
	if !keepsRefreshCookie(sessionkit.ErrRateLimited) || keepsRefreshCookie(sessionkit.ErrReplayDetected) {
		t.Fatal("unexpected cookie retention policy")
	}
}
