package password

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the cost of digests already stored by the earlier service.
const DefaultBcryptCost = 10

// bcrypt ignores input past 72 bytes; reject instead of silently truncating.
const bcryptMaxPasswordBytes = 72

// Bcrypt verifies and, when configured as the primary hasher, produces bcrypt digests.
type Bcrypt struct {
	cost     int
	minBytes int
}

// NewBcrypt returns a bcrypt hasher. A zero cost selects DefaultBcryptCost.
func NewBcrypt(cost, minPasswordBytes int) (*Bcrypt, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if minPasswordBytes == 0 {
		minPasswordBytes = DefaultMinPasswordBytes
	}
	return &Bcrypt{cost: cost, minBytes: minPasswordBytes}, nil
}

func (b *Bcrypt) Hash(password string) (string, error) {
	if len(password) < b.minBytes || len(password) > bcryptMaxPasswordBytes {
		return "", ErrPasswordLength
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (b *Bcrypt) Verify(password string, encodedHash string) (bool, error) {
	if len(password) > bcryptMaxPasswordBytes {
		return false, ErrPasswordLength
	}
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("invalid bcrypt digest: %w", err)
	}
}

// Handles reports whether encodedHash is a bcrypt digest ($2a$, $2b$ or $2y$).
func (b *Bcrypt) Handles(encodedHash string) bool {
	return strings.HasPrefix(encodedHash, "$2a$") ||
		strings.HasPrefix(encodedHash, "$2b$") ||
		strings.HasPrefix(encodedHash, "$2y$")
}
