package sessionkit

import (
	"errors"
	"time"
)

// Config holds every tunable of the session core. Obtain one from DefaultConfig and
// override fields; the Builder validates it once at Build.
type Config struct {
	JWT          JWTConfig
	Session      SessionConfig
	Blacklist    BlacklistConfig
	RateLimit    RateLimitConfig
	Password     PasswordConfig
	Registration RegistrationConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig controls token lifetimes and signing. Access and refresh tokens must be
// signed with different secrets.
type JWTConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls cache key layout.
type SessionConfig struct {
	// RedisPrefix is prepended verbatim to every cache key, e.g. "myapp:".
	RedisPrefix string
}

// BlacklistConfig bounds revocation entries. A logged-out access token is blacklisted for
// the shorter of its remaining lifetime and MaxTTL.
type BlacklistConfig struct {
	MaxTTL time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig holds the fixed-window policies.
type RateLimitConfig struct {
	EnableRefreshThrottle bool
	MaxRefreshAttempts    int
	RefreshWindow         time.Duration

	EnableRequestThrottle bool
	MaxRequests           int
	RequestWindow         time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds Argon2id parameters for new digests and the bcrypt cost used to
// check legacy digests.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	BcryptCost  int
}

// RegistrationConfig holds input rules applied by Register.
type RegistrationConfig struct {
	MinFullNameLength int
	MinPasswordLength int
}

// AuditConfig controls the security audit dispatcher.
type AuditConfig struct {
	Enabled      bool
	BufferSize   int
	DropIfFull   bool
	WriteTimeout time.Duration
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the policy the service has always run with: 30 minute access
// tokens, 7 day refresh tokens, a 1 hour blacklist ceiling, 5 refreshes per 10 seconds
// and 100 requests per 15 minutes per IP.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  30 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Blacklist: BlacklistConfig{
			MaxTTL: time.Hour,
		},
		RateLimit: RateLimitConfig{
			EnableRefreshThrottle: true,
			MaxRefreshAttempts:    5,
			RefreshWindow:         10 * time.Second,
			EnableRequestThrottle: true,
			MaxRequests:           100,
			RequestWindow:         15 * time.Minute,
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			BcryptCost:  10,
		},
		Registration: RegistrationConfig{
			MinFullNameLength: 2,
			MinPasswordLength: 8,
		},
		Audit: AuditConfig{
			Enabled:      true,
			BufferSize:   1024,
			DropIfFull:   false,
			WriteTimeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.AccessSecret = cloneBytes(cfg.JWT.AccessSecret)
	out.JWT.RefreshSecret = cloneBytes(cfg.JWT.RefreshSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first inconsistent setting in c.
func (c *Config) Validate() error {
	return c.validate(true)
}

func (c *Config) validate(requireSecrets bool) error {
	// JWT
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must be >= AccessTTL")
	}
	if requireSecrets {
		if len(c.JWT.AccessSecret) == 0 || len(c.JWT.RefreshSecret) == 0 {
			return errors.New("JWT AccessSecret and RefreshSecret are required")
		}
		if string(c.JWT.AccessSecret) == string(c.JWT.RefreshSecret) {
			return errors.New("JWT AccessSecret and RefreshSecret must differ")
		}
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be within [0, 2m]")
	}

	// Blacklist
	if c.Blacklist.MaxTTL <= 0 {
		return errors.New("Blacklist MaxTTL must be > 0")
	}

	// Rate limits
	if c.RateLimit.EnableRefreshThrottle {
		if c.RateLimit.MaxRefreshAttempts <= 0 {
			return errors.New("RateLimit MaxRefreshAttempts must be > 0")
		}
		if c.RateLimit.RefreshWindow <= 0 {
			return errors.New("RateLimit RefreshWindow must be > 0")
		}
	}
	if c.RateLimit.EnableRequestThrottle {
		if c.RateLimit.MaxRequests <= 0 {
			return errors.New("RateLimit MaxRequests must be > 0")
		}
		if c.RateLimit.RequestWindow <= 0 {
			return errors.New("RateLimit RequestWindow must be > 0")
		}
	}

	// Registration
	if c.Registration.MinFullNameLength < 1 {
		return errors.New("Registration MinFullNameLength must be >= 1")
	}
	if c.Registration.MinPasswordLength < 1 {
		return errors.New("Registration MinPasswordLength must be >= 1")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}
