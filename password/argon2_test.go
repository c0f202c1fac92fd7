package password

import (
	"errors"
	"strings"
	"testing"
)

func fastConfig() Config {
	return Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func newTestArgon2(t *testing.T, cfg Config) *Argon2 {
	t.Helper()
	h, err := NewArgon2(cfg)
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}
	return h
}

func TestArgon2RoundTrip(t *testing.T) {
	h := newTestArgon2(t, fastConfig())

	encoded, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$") || !h.Handles(encoded) {
		t.Fatalf("unexpected digest %s", encoded)
	}

	if ok, err := h.Verify("password123", encoded); err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	if ok, err := h.Verify("password124", encoded); err != nil || ok {
		t.Fatalf("expected mismatch, got ok=%v err=%v", ok, err)
	}
}

func TestArgon2SaltsEveryDigest(t *testing.T) {
	h := newTestArgon2(t, fastConfig())
	a, _ := h.Hash("password123")
	b, _ := h.Hash("password123")
	if a == b {
		t.Fatal("expected distinct digests for the same password")
	}
}

func TestArgon2VerifiesWithStoredParameters(t *testing.T) {
	old := newTestArgon2(t, fastConfig())
	encoded, err := old.Hash("password123")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	stronger := fastConfig()
	stronger.Time = 2
	stronger.KeyLength = 16
	if ok, err := newTestArgon2(t, stronger).Verify("password123", encoded); err != nil || !ok {
		t.Fatalf("expected digest written with other parameters to verify, ok=%v err=%v", ok, err)
	}
}

func TestArgon2RejectsMalformedDigests(t *testing.T) {
	h := newTestArgon2(t, fastConfig())
	valid, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	tests := map[string]string{
		"not phc":        "not-a-phc-hash",
		"wrong version":  strings.Replace(valid, "$v=19$", "$v=18$", 1),
		"reordered":      strings.Replace(valid, "m=8192,t=1,p=1", "t=1,m=8192,p=1", 1),
		"trailing param": strings.Replace(valid, "p=1$", "p=1,x=2$", 1),
		"weak memory":    strings.Replace(valid, "m=8192", "m=64", 1),
		"extra field":    valid + "$extra",
		"bad salt":       strings.Replace(valid, "p=1$", "p=1$!!", 1),
	}
	for name, encoded := range tests {
		if _, err := h.Verify("password123", encoded); !errors.Is(err, ErrMalformedDigest) {
			t.Fatalf("%s: expected ErrMalformedDigest, got %v", name, err)
		}
	}
}

func TestArgon2LengthBounds(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxPasswordBytes = 64
	h := newTestArgon2(t, cfg)

	for _, pw := range []string{"", "short", strings.Repeat("a", 65)} {
		if _, err := h.Hash(pw); !errors.Is(err, ErrPasswordLength) {
			t.Fatalf("len %d: expected ErrPasswordLength, got %v", len(pw), err)
		}
	}
	for _, pw := range []string{"12345678", strings.Repeat("b", 64)} {
		if _, err := h.Hash(pw); err != nil {
			t.Fatalf("len %d: expected accept, got %v", len(pw), err)
		}
	}

	encoded, _ := h.Hash("valid-password-123")
	if _, err := h.Verify(strings.Repeat("c", 65), encoded); !errors.Is(err, ErrPasswordLength) {
		t.Fatalf("expected Verify to reject long input, got %v", err)
	}
}

func TestArgon2DefaultMaxLength(t *testing.T) {
	h := newTestArgon2(t, fastConfig())
	if _, err := h.Hash(strings.Repeat("d", DefaultMaxPasswordBytes+1)); err == nil {
		t.Fatalf("expected password > %d bytes to be rejected", DefaultMaxPasswordBytes)
	}
}

func TestNewArgon2RejectsWeakConfig(t *testing.T) {
	mutate := []func(*Config){
		func(c *Config) { c.Memory = 1024 },
		func(c *Config) { c.Time = 0 },
		func(c *Config) { c.SaltLength = 8 },
		func(c *Config) { c.MinPasswordBytes, c.MaxPasswordBytes = 32, 16 },
	}
	for i, m := range mutate {
		cfg := fastConfig()
		m(&cfg)
		if _, err := NewArgon2(cfg); err == nil {
			t.Fatalf("case %d: expected config to be rejected", i)
		}
	}
}
