package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod selects the algorithm a Codec signs with.
type SigningMethod string

const (
	// MethodHS256 signs with a shared secret. This is the default.
	MethodHS256 SigningMethod = "hs256"
	// MethodEd25519 signs with an Ed25519 private key and verifies with the public key.
	MethodEd25519 SigningMethod = "ed25519"
)

var (
	// ErrExpired is returned when a token's exp claim is in the past.
	ErrExpired = errors.New("token expired")
	// ErrMalformed is returned when a token cannot be decoded or lacks required claims.
	ErrMalformed = errors.New("token malformed")
	// ErrNotYetValid is returned when a token's nbf or iat lies in the future.
	ErrNotYetValid = errors.New("token not yet valid")
	// ErrSignatureInvalid is returned when the signature or algorithm does not match.
	ErrSignatureInvalid = errors.New("token signature invalid")
)

// Config defines how a Codec signs and validates tokens.
//
// Secret is used for HS256. PrivateKey and PublicKey are used for Ed25519 and accept
// either raw key bytes or PEM.
type Config struct {
	TTL           time.Duration
	SigningMethod SigningMethod
	Secret        []byte
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration

	// TimeFunc overrides the clock used for iat, exp and validation. Defaults to time.Now.
	TimeFunc func() time.Time
}

// Subject is the identity a token is minted for.
type Subject struct {
	ID    string
	Email string
}

// Claims is the claim set embedded in every token.
//
// The subject id travels as "_id" so tokens stay readable by clients built against the
// earlier API.
type Claims struct {
	SubjectID string `json:"_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// Token is a signed token together with the claims a caller needs without re-parsing.
type Token struct {
	Value     string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec mints and verifies one kind of token.
//
// Codec is immutable after construction and safe for concurrent use.
type Codec struct {
	config Config
	now    func() time.Time
}

// NewCodec validates cfg and returns a codec.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.SigningMethod == "" {
		cfg.SigningMethod = MethodHS256
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.Secret) == 0 {
			return nil, errors.New("hs256 requires a secret")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("ed25519 requires a private key")
		}
		if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
			return nil, err
		}
		if len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires a public key")
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	now := cfg.TimeFunc
	if now == nil {
		now = time.Now
	}
	return &Codec{config: cfg, now: now}, nil
}

// TTL returns the lifetime of tokens minted by c.
func (c *Codec) TTL() time.Duration {
	return c.config.TTL
}

// NewID returns a fresh random token id (UUIDv4).
func (c *Codec) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}
	return id.String(), nil
}

// Issue mints a token for sub with a freshly generated jti.
func (c *Codec) Issue(sub Subject) (Token, error) {
	jti, err := c.NewID()
	if err != nil {
		return Token{}, err
	}
	return c.IssueWithID(sub, jti)
}

// IssueWithID mints a token for sub using jti as the token id. It lets a caller pair an
// access and refresh token under one correlation id.
func (c *Codec) IssueWithID(sub Subject, jti string) (Token, error) {
	if strings.TrimSpace(jti) == "" {
		return Token{}, errors.New("token id is required")
	}

	now := c.now()
	exp := now.Add(c.config.TTL)
	claims := Claims{
		SubjectID: sub.ID,
		Email:     sub.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    c.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signKey, err := c.signKey()
	if err != nil {
		return Token{}, err
	}
	value, err := jwt.NewWithClaims(c.method(), claims).SignedString(signKey)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	// NumericDate truncates to seconds; report what the token actually carries.
	return Token{
		Value:     value,
		ID:        jti,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify checks the signature and the time claims of token in a single parse.
//
// Errors are one of ErrExpired, ErrMalformed, ErrNotYetValid or ErrSignatureInvalid.
func (c *Codec) Verify(token string) (*Claims, error) {
	return c.parse(token, true)
}

// VerifySignature checks only the signature of token and ignores exp, nbf and iat.
// It must not be used to authorize a request.
func (c *Codec) VerifySignature(token string) (*Claims, error) {
	return c.parse(token, false)
}

// DecodeUnsafe extracts the claims of token without checking its signature. The result is
// only good for reading jti and exp ahead of a revocation lookup.
func DecodeUnsafe(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMalformed
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return claims, nil
}

func (c *Codec) parse(token string, validateClaims bool) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMalformed
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.method().Alg()}),
		jwt.WithTimeFunc(c.now),
	}
	if validateClaims {
		options = append(options, jwt.WithExpirationRequired(), jwt.WithIssuedAt())
		if c.config.Leeway > 0 {
			options = append(options, jwt.WithLeeway(c.config.Leeway))
		}
		if c.config.Issuer != "" {
			options = append(options, jwt.WithIssuer(c.config.Issuer))
		}
	} else {
		options = append(options, jwt.WithoutClaimsValidation())
	}

	parsed, err := jwt.NewParser(options...).ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.method().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return c.verifyKey()
	})
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrMalformed)
	}
	return claims, nil
}

// classify folds the parser's error tree into the codec's four outcomes. Signature
// problems win over claim problems because the parser checks the signature first.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return fmt.Errorf("%w: %v", ErrNotYetValid, err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	default:
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
}

func (c *Codec) method() jwt.SigningMethod {
	if c.config.SigningMethod == MethodEd25519 {
		return jwt.SigningMethodEdDSA
	}
	return jwt.SigningMethodHS256
}

func (c *Codec) signKey() (interface{}, error) {
	if c.config.SigningMethod == MethodEd25519 {
		return parseEdPrivateKey(c.config.PrivateKey)
	}
	return c.config.Secret, nil
}

func (c *Codec) verifyKey() (interface{}, error) {
	if c.config.SigningMethod == MethodEd25519 {
		return parseEdPublicKey(c.config.PublicKey)
	}
	return c.config.Secret, nil
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
