package password

import "errors"

// ErrPasswordLength is returned when a plaintext is outside the accepted length range.
var ErrPasswordLength = errors.New("password length out of range")

// ErrUnsupportedDigest is returned when no hasher in a Chain recognizes a digest.
var ErrUnsupportedDigest = errors.New("unsupported password digest")

// Scheme is one hashing algorithm that can recognize its own digests.
type Scheme interface {
	Hash(password string) (string, error)
	Verify(password string, encodedHash string) (bool, error)
	Handles(encodedHash string) bool
}

// Chain hashes with its first scheme and verifies with whichever scheme recognizes the
// digest. It lets Argon2id digests and legacy bcrypt digests coexist in one user store.
type Chain struct {
	schemes []Scheme
}

// NewChain returns a chain; primary produces all new digests.
func NewChain(primary Scheme, legacy ...Scheme) *Chain {
	return &Chain{schemes: append([]Scheme{primary}, legacy...)}
}

func (c *Chain) Hash(password string) (string, error) {
	return c.schemes[0].Hash(password)
}

func (c *Chain) Verify(password string, encodedHash string) (bool, error) {
	for _, s := range c.schemes {
		if s.Handles(encodedHash) {
			return s.Verify(password, encodedHash)
		}
	}
	return false, ErrUnsupportedDigest
}
