package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2Prefix = "$argon2id$"

const (
	// DefaultMinPasswordBytes matches the registration rule of at least 8 characters.
	DefaultMinPasswordBytes = 8
	// DefaultMaxPasswordBytes bounds hashing cost for hostile inputs.
	DefaultMaxPasswordBytes = 1024
)

// ErrMalformedDigest is returned by Verify for a digest it cannot decode.
var ErrMalformedDigest = errors.New("malformed argon2id digest")

// Config holds Argon2id cost parameters and the accepted plaintext length range.
type Config struct {
	Memory      uint32 // KiB, at least 8192
	Time        uint32
	Parallelism uint8
	SaltLength  uint32 // at least 16
	KeyLength   uint32 // at least 16

	MinPasswordBytes int
	MaxPasswordBytes int
}

// DefaultConfig returns the Argon2id parameters used for new digests.
func DefaultConfig() Config {
	return Config{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Argon2 hashes new passwords with Argon2id and verifies PHC-encoded digests. It is
// immutable and safe for concurrent use.
type Argon2 struct {
	config Config
}

// NewArgon2 validates cfg and returns a hasher. Zero length bounds take the package
// defaults.
func NewArgon2(cfg Config) (*Argon2, error) {
	if cfg.MinPasswordBytes == 0 {
		cfg.MinPasswordBytes = DefaultMinPasswordBytes
	}
	if cfg.MaxPasswordBytes == 0 {
		cfg.MaxPasswordBytes = DefaultMaxPasswordBytes
	}

	switch {
	case cfg.Memory < 8*1024:
		return nil, errors.New("password memory must be >= 8192 KiB")
	case cfg.Time < 1 || cfg.Parallelism < 1:
		return nil, errors.New("password time and parallelism must be >= 1")
	case cfg.SaltLength < 16 || cfg.KeyLength < 16:
		return nil, errors.New("password salt and key length must be >= 16")
	case cfg.MinPasswordBytes < 1 || cfg.MaxPasswordBytes < cfg.MinPasswordBytes:
		return nil, errors.New("invalid password length bounds")
	}
	return &Argon2{config: cfg}, nil
}

// digest is a decoded $argon2id$v=19$m=..,t=..,p=..$salt$key string.
type digest struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func (d digest) String() string {
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix, argon2.Version, d.memory, d.time, d.parallelism,
		base64.StdEncoding.EncodeToString(d.salt),
		base64.StdEncoding.EncodeToString(d.key))
}

func parseDigest(encoded string) (digest, error) {
	rest, ok := strings.CutPrefix(encoded, argon2Prefix)
	if !ok {
		return digest{}, ErrMalformedDigest
	}
	fields := strings.Split(rest, "$")
	if len(fields) != 4 {
		return digest{}, ErrMalformedDigest
	}
	if fields[0] != fmt.Sprintf("v=%d", argon2.Version) {
		return digest{}, fmt.Errorf("%w: unsupported version %q", ErrMalformedDigest, fields[0])
	}

	var d digest
	// Re-encoding the parsed parameters rejects reordered, padded or trailing input.
	if _, err := fmt.Sscanf(fields[1], "m=%d,t=%d,p=%d", &d.memory, &d.time, &d.parallelism); err != nil ||
		fmt.Sprintf("m=%d,t=%d,p=%d", d.memory, d.time, d.parallelism) != fields[1] {
		return digest{}, fmt.Errorf("%w: bad parameters", ErrMalformedDigest)
	}
	if d.memory < 8*1024 || d.time < 1 || d.parallelism < 1 {
		return digest{}, fmt.Errorf("%w: parameters below minimum", ErrMalformedDigest)
	}

	var err error
	if d.salt, err = base64.StdEncoding.DecodeString(fields[2]); err != nil || len(d.salt) < 16 {
		return digest{}, fmt.Errorf("%w: bad salt", ErrMalformedDigest)
	}
	if d.key, err = base64.StdEncoding.DecodeString(fields[3]); err != nil || len(d.key) == 0 {
		return digest{}, fmt.Errorf("%w: bad key", ErrMalformedDigest)
	}
	return d, nil
}

// Hash returns a PHC-encoded Argon2id digest of password. The raw bytes are hashed
// without Unicode normalization.
func (a *Argon2) Hash(password string) (string, error) {
	if n := len(password); n < a.config.MinPasswordBytes || n > a.config.MaxPasswordBytes {
		return "", fmt.Errorf("%w: must be %d to %d bytes", ErrPasswordLength, a.config.MinPasswordBytes, a.config.MaxPasswordBytes)
	}

	d := digest{
		memory:      a.config.Memory,
		time:        a.config.Time,
		parallelism: a.config.Parallelism,
		salt:        make([]byte, a.config.SaltLength),
	}
	if _, err := rand.Read(d.salt); err != nil {
		return "", err
	}
	d.key = argon2.IDKey([]byte(password), d.salt, d.time, d.memory, d.parallelism, a.config.KeyLength)
	return d.String(), nil
}

// Verify reports whether password matches encoded, using the parameters stored in the
// digest. The key comparison is constant time.
func (a *Argon2) Verify(password string, encoded string) (bool, error) {
	if len(password) > a.config.MaxPasswordBytes {
		return false, ErrPasswordLength
	}
	d, err := parseDigest(encoded)
	if err != nil {
		return false, err
	}

	key := argon2.IDKey([]byte(password), d.salt, d.time, d.memory, d.parallelism, uint32(len(d.key)))
	return subtle.ConstantTimeCompare(key, d.key) == 1, nil
}

// Handles reports whether encoded is an Argon2id PHC digest.
func (a *Argon2) Handles(encoded string) bool {
	return strings.HasPrefix(encoded, argon2Prefix)
}
