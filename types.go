package sessionkit

import (
	"context"
	"time"
)

// Identity is the subject of every token: an opaque user id and the email it was
// registered with.
type Identity struct {
	ID    string
	Email string
}

// IdentityRecord is the stored form of a registered user.
type IdentityRecord struct {
	ID           string
	Avatar       *string
	FullName     string
	Email        string
	PasswordHash string
	Groups       []string
	Roles        string
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Identity returns the token subject for r.
func (r IdentityRecord) Identity() Identity {
	return Identity{ID: r.ID, Email: r.Email}
}

// IdentityStore is the user store the session core reads credentials from.
//
// FindByEmail reports found=false for an unknown email; that is not an error. Insert
// must return an error matching ErrDuplicateIdentity when the email is taken, and an
// error matching ErrStoreUnavailable when the backend cannot be reached.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (rec IdentityRecord, found bool, err error)
	Insert(ctx context.Context, rec IdentityRecord) error
}

// LoginInfo describes a successful login.
type LoginInfo struct {
	IP        string
	UserAgent string
	At        time.Time
}

// LoginRecorder is implemented by identity stores that keep last-login fields. The
// Engine calls it best-effort after a successful login.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, identityID string, info LoginInfo) error
}

// PasswordHasher produces and checks password digests.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, encodedHash string) (bool, error)
}

// RegisterRequest is the input of Engine.Register.
type RegisterRequest struct {
	FullName string
	Email    string
	Password string
}

// TokenPair is returned by Login and Refresh. Both tokens share TokenID.
type TokenPair struct {
	Identity         Identity
	TokenID          string
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
