// Package appconfig loads process configuration from the environment and an optional
// .env file.
package appconfig

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/sessionkit"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process configuration. Keys match the deployed environment files.
type Config struct {
	AppName  string `mapstructure:"APP_NAME"`
	AppEnv   string `mapstructure:"APP_ENV"`
	AppTag   string `mapstructure:"APP_TAG"`
	AppDebug bool   `mapstructure:"APP_DEBUG"`
	AppURL   string `mapstructure:"APP_URL"`
	AppPort  int    `mapstructure:"APP_PORT"`

	AccessSecret      string `mapstructure:"JWT_SECRET_TOKEN"`
	AccessExpiration  string `mapstructure:"JWT_SECRET_TOKEN_EXPIRATION"`
	RefreshSecret     string `mapstructure:"JWT_REFRESH_TOKEN"`
	RefreshExpiration string `mapstructure:"JWT_REFRESH_TOKEN_EXPIRATION"`

	RedisHost      string `mapstructure:"REDIS_HOST"`
	RedisPort      int    `mapstructure:"REDIS_PORT"`
	RedisUsername  string `mapstructure:"REDIS_USERNAME"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisKeyPrefix string `mapstructure:"REDIS_KEY_PREFIX"`

	FirestoreProjectID string `mapstructure:"FIRESTORE_PROJECT_ID"`
	CredentialsFile    string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirestoreTimeout   string `mapstructure:"FIRESTORE_TIMEOUT"`

	LogLevel    string `mapstructure:"LOG_LEVEL"`
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`
}

var keys = []string{
	"APP_NAME", "APP_ENV", "APP_TAG", "APP_DEBUG", "APP_URL", "APP_PORT",
	"JWT_SECRET_TOKEN", "JWT_SECRET_TOKEN_EXPIRATION", "JWT_REFRESH_TOKEN", "JWT_REFRESH_TOKEN_EXPIRATION",
	"REDIS_HOST", "REDIS_PORT", "REDIS_USERNAME", "REDIS_PASSWORD", "REDIS_KEY_PREFIX",
	"FIRESTORE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIRESTORE_TIMEOUT",
	"LOG_LEVEL", "CORS_ORIGINS",
}

// Load reads envFiles (missing files are ignored), then the process environment, which
// wins. With no envFiles it looks for ./.env.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv never overrides variables already set in the environment.
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("APP_NAME", "sessionkit")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_TAG", "dev")
	v.SetDefault("APP_DEBUG", false)
	v.SetDefault("APP_PORT", 3000)
	v.SetDefault("JWT_SECRET_TOKEN_EXPIRATION", "30m")
	v.SetDefault("JWT_REFRESH_TOKEN_EXPIRATION", "7d")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("FIRESTORE_TIMEOUT", "5s")
	v.SetDefault("LOG_LEVEL", "info")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		return errors.New("config: JWT_SECRET_TOKEN and JWT_REFRESH_TOKEN must be set")
	}
	if c.AccessSecret == c.RefreshSecret {
		return errors.New("config: JWT_SECRET_TOKEN and JWT_REFRESH_TOKEN must differ")
	}
	if c.AppPort <= 0 || c.AppPort > 65535 {
		return errors.New("config: APP_PORT must be a valid port")
	}
	if _, err := ParseDuration(c.AccessExpiration); err != nil {
		return fmt.Errorf("config: JWT_SECRET_TOKEN_EXPIRATION: %w", err)
	}
	if _, err := ParseDuration(c.RefreshExpiration); err != nil {
		return fmt.Errorf("config: JWT_REFRESH_TOKEN_EXPIRATION: %w", err)
	}
	if _, err := ParseDuration(c.FirestoreTimeout); err != nil {
		return fmt.Errorf("config: FIRESTORE_TIMEOUT: %w", err)
	}
	return nil
}

// Production reports whether APP_ENV is production.
func (c *Config) Production() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.AppPort)
}

// RedisAddr is host:port of the cache.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + strconv.Itoa(c.RedisPort)
}

// FirestoreCallTimeout bounds each Firestore call.
func (c *Config) FirestoreCallTimeout() time.Duration {
	d, _ := ParseDuration(c.FirestoreTimeout)
	return d
}

// Origins splits CORS_ORIGINS on commas. Empty allows any origin.
func (c *Config) Origins() []string {
	var out []string
	for _, p := range strings.Split(c.CORSOrigins, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Engine returns the session core configuration derived from c.
func (c *Config) Engine() sessionkit.Config {
	cfg := sessionkit.DefaultConfig()
	cfg.JWT.AccessSecret = []byte(c.AccessSecret)
	cfg.JWT.RefreshSecret = []byte(c.RefreshSecret)
	// validate already parsed both.
	cfg.JWT.AccessTTL, _ = ParseDuration(c.AccessExpiration)
	cfg.JWT.RefreshTTL, _ = ParseDuration(c.RefreshExpiration)
	cfg.Session.RedisPrefix = c.RedisKeyPrefix
	return cfg
}

// ParseDuration accepts Go duration syntax plus a whole-day suffix such as "7d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}
