package sessionkit

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/sessionkit/jwt"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func TestBuildRequiresDependencies(t *testing.T) {
	_, rdb := newTestRedis(t)

	if _, err := New().WithConfig(engineTestConfig()).WithIdentityStore(newMemoryIdentities()).Build(); err == nil {
		t.Fatal("expected error without redis")
	}
	if _, err := New().WithConfig(engineTestConfig()).WithRedis(rdb).Build(); err == nil {
		t.Fatal("expected error without identity store")
	}
	if _, err := New().WithRedis(rdb).WithIdentityStore(newMemoryIdentities()).Build(); err == nil {
		t.Fatal("expected error without secrets")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	_, rdb := newTestRedis(t)
	b := New().WithConfig(engineTestConfig()).WithRedis(rdb).WithIdentityStore(newMemoryIdentities())

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestBuildWithEd25519Codecs(t *testing.T) {
	_, rdb := newTestRedis(t)

	newCodec := func(ttl time.Duration) *jwt.Codec {
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			t.Fatalf("generate key: %v", err)
		}
		c, err := jwt.NewCodec(jwt.Config{
			TTL:           ttl,
			SigningMethod: jwt.MethodEd25519,
			PrivateKey:    priv,
			PublicKey:     pub,
		})
		if err != nil {
			t.Fatalf("NewCodec failed: %v", err)
		}
		return c
	}

	cfg := engineTestConfig()
	cfg.JWT.AccessSecret = nil
	cfg.JWT.RefreshSecret = nil

	if _, err := New().WithConfig(cfg).WithRedis(rdb).WithIdentityStore(newMemoryIdentities()).
		WithCodecs(newCodec(time.Minute), nil).Build(); err == nil {
		t.Fatal("expected error with only one codec")
	}

	identities := newMemoryIdentities()
	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithIdentityStore(identities).
		WithCodecs(newCodec(30*time.Minute), newCodec(7*24*time.Hour)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := engine.Register(context.Background(), RegisterRequest{FullName: "Juan Dela Cruz", Email: "juan@example.com", Password: "password123"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	pair, err := engine.Login(context.Background(), "juan@example.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := engine.Authorize(context.Background(), pair.AccessToken); err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if _, err := engine.Authorize(context.Background(), pair.RefreshToken); !errors.Is(err, ErrTokenInvalidSignature) {
		t.Fatalf("expected refresh token rejected by access codec, got %v", err)
	}
}
