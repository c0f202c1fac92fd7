package password

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptVerifiesLegacyDigest(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := NewBcrypt(0, 0)
	if err != nil {
		t.Fatalf("NewBcrypt error: %v", err)
	}
	if !b.Handles(string(legacy)) {
		t.Fatalf("expected bcrypt to handle %q", legacy)
	}

	ok, err := b.Verify("password123", string(legacy))
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	ok, err = b.Verify("password124", string(legacy))
	if err != nil || ok {
		t.Fatalf("expected mismatch without error, got ok=%v err=%v", ok, err)
	}
	if _, err := b.Verify("password123", "$2b$garbage"); err == nil {
		t.Fatal("expected malformed digest to error")
	}
}

func TestBcryptRejectsOutOfRangeLengths(t *testing.T) {
	b, err := NewBcrypt(bcrypt.MinCost, 8)
	if err != nil {
		t.Fatalf("NewBcrypt error: %v", err)
	}
	if _, err := b.Hash("short"); !errors.Is(err, ErrPasswordLength) {
		t.Fatalf("expected ErrPasswordLength, got %v", err)
	}
	if _, err := b.Hash(strings.Repeat("x", 73)); !errors.Is(err, ErrPasswordLength) {
		t.Fatalf("expected ErrPasswordLength, got %v", err)
	}
	if _, err := NewBcrypt(64, 8); err == nil {
		t.Fatal("expected invalid cost to be rejected")
	}
}

func TestChainHashesWithPrimaryAndVerifiesBoth(t *testing.T) {
	a, err := NewArgon2(fastConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}
	b, err := NewBcrypt(bcrypt.MinCost, 0)
	if err != nil {
		t.Fatalf("NewBcrypt error: %v", err)
	}
	chain := NewChain(a, b)

	fresh, err := chain.Hash("password123")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(fresh, "$argon2id$") {
		t.Fatalf("expected argon2id digest, got %s", fresh)
	}

	legacy, err := b.Hash("password123")
	if err != nil {
		t.Fatalf("bcrypt Hash error: %v", err)
	}

	for _, digest := range []string{fresh, legacy} {
		ok, err := chain.Verify("password123", digest)
		if err != nil || !ok {
			t.Fatalf("expected %s to verify, got ok=%v err=%v", digest[:8], ok, err)
		}
	}

	if _, err := chain.Verify("password123", "plaintext"); !errors.Is(err, ErrUnsupportedDigest) {
		t.Fatalf("expected ErrUnsupportedDigest, got %v", err)
	}
}
