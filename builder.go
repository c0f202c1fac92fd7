package sessionkit

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/MrEthical07/sessionkit/audit"
	"github.com/MrEthical07/sessionkit/internal/rate"
	"github.com/MrEthical07/sessionkit/jwt"
	"github.com/MrEthical07/sessionkit/password"
	"github.com/MrEthical07/sessionkit/session"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an Engine. Configure it during initialization and call Build once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	identities   IdentityStore
	passwordHash PasswordHasher
	auditSink    audit.Sink
	logger       *slog.Logger

	accessCodec  *jwt.Codec
	refreshCodec *jwt.Codec

	now func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client used for the blacklist, rotation records and rate counters.
// The Engine never closes it.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithIdentityStore sets the user store.
func (b *Builder) WithIdentityStore(store IdentityStore) *Builder {
	b.identities = store
	return b
}

// WithPasswordHasher overrides the default Argon2id/bcrypt chain.
func (b *Builder) WithPasswordHasher(h PasswordHasher) *Builder {
	b.passwordHash = h
	return b
}

// WithAuditSink sets where security audit records go. Without one, records are dropped.
func (b *Builder) WithAuditSink(sink audit.Sink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. The default discards everything.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithCodecs replaces the HS256 codecs built from JWTConfig, e.g. to sign with Ed25519.
// Both codecs are required and must not share keys.
func (b *Builder) WithCodecs(access, refresh *jwt.Codec) *Builder {
	b.accessCodec = access
	b.refreshCodec = refresh
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the authorize latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// withClock is used by tests to pin token timestamps.
func (b *Builder) withClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and returns a ready Engine. A Builder can be built
// only once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.identities == nil {
		return nil, errors.New("identity store required")
	}
	if (b.accessCodec == nil) != (b.refreshCodec == nil) {
		return nil, errors.New("WithCodecs requires both access and refresh codecs")
	}

	cfg := cloneConfig(b.config)
	// Secrets are only needed for the built-in HS256 codecs.
	if err := cfg.validate(b.accessCodec == nil); err != nil {
		return nil, err
	}

	now := b.now
	if now == nil {
		now = time.Now
	}
	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// -------- TOKEN CODECS --------
	accessCodec, refreshCodec := b.accessCodec, b.refreshCodec
	if accessCodec == nil {
		var err error
		accessCodec, err = jwt.NewCodec(jwt.Config{
			TTL:      cfg.JWT.AccessTTL,
			Secret:   cloneBytes(cfg.JWT.AccessSecret),
			Issuer:   cfg.JWT.Issuer,
			Leeway:   cfg.JWT.Leeway,
			TimeFunc: now,
		})
		if err != nil {
			return nil, err
		}
		refreshCodec, err = jwt.NewCodec(jwt.Config{
			TTL:      cfg.JWT.RefreshTTL,
			Secret:   cloneBytes(cfg.JWT.RefreshSecret),
			Issuer:   cfg.JWT.Issuer,
			Leeway:   cfg.JWT.Leeway,
			TimeFunc: now,
		})
		if err != nil {
			return nil, err
		}
	}

	// -------- PASSWORD HASHER --------
	hasher := b.passwordHash
	if hasher == nil {
		argon, err := password.NewArgon2(password.Config{
			Memory:           cfg.Password.Memory,
			Time:             cfg.Password.Time,
			Parallelism:      cfg.Password.Parallelism,
			SaltLength:       cfg.Password.SaltLength,
			KeyLength:        cfg.Password.KeyLength,
			MinPasswordBytes: cfg.Registration.MinPasswordLength,
		})
		if err != nil {
			return nil, err
		}
		legacy, err := password.NewBcrypt(cfg.Password.BcryptCost, 1)
		if err != nil {
			return nil, err
		}
		hasher = password.NewChain(argon, legacy)
	}
	dummyHash, err := hasher.Hash("sessionkit-timing-equalizer")
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:       cfg,
		sessionStore: session.NewStore(b.redis, cfg.Session.RedisPrefix),
		rateLimiter: rate.New(b.redis, rate.Config{
			Prefix:                cfg.Session.RedisPrefix,
			EnableRefreshThrottle: cfg.RateLimit.EnableRefreshThrottle,
			MaxRefreshAttempts:    cfg.RateLimit.MaxRefreshAttempts,
			RefreshWindow:         cfg.RateLimit.RefreshWindow,
			EnableRequestThrottle: cfg.RateLimit.EnableRequestThrottle,
			MaxRequests:           cfg.RateLimit.MaxRequests,
			RequestWindow:         cfg.RateLimit.RequestWindow,
		}),
		accessCodec:  accessCodec,
		refreshCodec: refreshCodec,
		identities:   b.identities,
		passwordHash: hasher,
		dummyHash:    dummyHash,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		metrics:      NewMetrics(cfg.Metrics),
		logger:       logger,
		now:          now,
	}

	sink := b.auditSink
	if sink == nil {
		sink = audit.NoOpSink{}
	}
	engine.audit = audit.NewDispatcher(audit.Config{
		Enabled:      cfg.Audit.Enabled,
		BufferSize:   cfg.Audit.BufferSize,
		DropIfFull:   cfg.Audit.DropIfFull,
		WriteTimeout: cfg.Audit.WriteTimeout,
	}, sink, logger)

	b.built = true

	return engine, nil
}
