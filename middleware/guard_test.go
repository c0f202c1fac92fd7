package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrEthical07/sessionkit"
	"github.com/MrEthical07/sessionkit/docstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newGuardEngine(t *testing.T) *sessionkit.Engine {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := sessionkit.DefaultConfig()
	cfg.JWT.AccessSecret = []byte("access-secret")
	cfg.JWT.RefreshSecret = []byte("refresh-secret")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Password.BcryptCost = 4

	engine, err := sessionkit.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithIdentityStore(docstore.NewMemory()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	})
	return engine
}

func TestGuardAttachesClaims(t *testing.T) {
	engine := newGuardEngine(t)
	ctx := context.Background()
	if _, err := engine.Register(ctx, sessionkit.RegisterRequest{FullName: "Juan Dela Cruz", Email: "juan@example.com", Password: "password123"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	pair, err := engine.Login(ctx, "juan@example.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	var gotEmail string
	h := Guard(engine, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Fatal("expected claims in context")
		}
		gotEmail = claims.Email
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent || gotEmail != "juan@example.com" {
		t.Fatalf("unexpected result code=%d email=%q", rec.Code, gotEmail)
	}
}

func TestGuardPassesFailureToErrorWriter(t *testing.T) {
	engine := newGuardEngine(t)

	var got error
	h := Guard(engine, func(w http.ResponseWriter, _ *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusTeapot)
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot || !errors.Is(got, sessionkit.ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing via error writer, got code=%d err=%v", rec.Code, got)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		found bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := BearerToken(tc.in)
		if got != tc.want || ok != tc.found {
			t.Fatalf("%q: expected (%q,%v), got (%q,%v)", tc.in, tc.want, tc.found, got, ok)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("expected nosniff header")
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Fatal("HSTS must only be sent over TLS")
	}
}
