package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full process configuration, read from the environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	S3       S3Config
	Coupon   CouponConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int    `envconfig:"SERVER_PORT" default:"8800"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
}

// DatabaseConfig configures the PostgreSQL pool.
type DatabaseConfig struct {
	Host            string `envconfig:"DB_HOST" default:"localhost"`
	Port            int    `envconfig:"DB_PORT" default:"5432"`
	User            string `envconfig:"DB_USER" default:"postgres"`
	Password        string `envconfig:"DB_PASSWORD"`
	Database        string `envconfig:"DB_NAME" default:"trendyshop"`
	SSLMode         string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConnections  int    `envconfig:"DB_MAX_CONNECTIONS" default:"25"`
	MinConnections  int    `envconfig:"DB_MIN_CONNECTIONS" default:"5"`
	MaxConnLifetime int    `envconfig:"DB_MAX_CONN_LIFETIME" default:"300"` // seconds
	ConnectRetries  int    `envconfig:"DB_CONNECT_RETRIES" default:"5"`
	Migrate         bool   `envconfig:"DB_MIGRATE" default:"true"`
}

type LoggerConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"` // json | console
}

// AuthConfig holds the shared gateway key.
type AuthConfig struct {
	APIKey string `envconfig:"API_KEY"`
}

// S3Config locates the coupon tier table in S3.
type S3Config struct {
	Enabled bool   `envconfig:"S3_ENABLED" default:"false"`
	Bucket  string `envconfig:"S3_BUCKET"`
	Region  string `envconfig:"S3_REGION" default:"us-east-1"`
	Prefix  string `envconfig:"S3_PREFIX" default:"coupons/"`
}

// CouponConfig holds the loyalty coupon settings.
type CouponConfig struct {
	// Tiers is an inline "threshold:discount" list used when TiersFile is empty.
	Tiers string `envconfig:"COUPON_TIERS" default:"10000:1000,50000:2500,100000:5000"`

	// TiersFile points to a tier table file, local or relative to the S3 prefix.
	TiersFile string `envconfig:"COUPON_TIERS_FILE"`

	CodePrefix string `envconfig:"COUPON_CODE_PREFIX" default:"COUPON"`
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks every section and reports the first problem found.
func (c *Config) Validate() error {
	checks := []func() error{
		c.Server.validate,
		c.Database.validate,
		c.validateAuth,
		c.validateLogger,
		c.validateCoupons,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (s *ServerConfig) validate() error {
	if !validPort(s.Port) {
		return fmt.Errorf("invalid server port: %d", s.Port)
	}
	if s.ShutdownTimeout < 1 {
		return errors.New("shutdown timeout must be at least 1 second")
	}
	return nil
}

func (d *DatabaseConfig) validate() error {
	switch {
	case d.Host == "":
		return errors.New("database host is required")
	case !validPort(d.Port):
		return fmt.Errorf("invalid database port: %d", d.Port)
	case d.User == "":
		return errors.New("database user is required")
	case d.Database == "":
		return errors.New("database name is required")
	case d.MaxConnections < 1:
		return errors.New("database max connections must be at least 1")
	case d.MinConnections < 1:
		return errors.New("database min connections must be at least 1")
	case d.MinConnections > d.MaxConnections:
		return errors.New("database min connections cannot exceed max connections")
	case d.ConnectRetries < 0:
		return errors.New("database connect retries must not be negative")
	}
	return nil
}

func (c *Config) validateAuth() error {
	if c.Auth.APIKey == "" {
		return errors.New("API key is required")
	}
	return nil
}

func (c *Config) validateLogger() error {
	if !logLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}
	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}
	return nil
}

// validateCoupons covers both the tier source and the S3 location, since a
// remote tier table only makes sense together with a file name.
func (c *Config) validateCoupons() error {
	if c.S3.Enabled {
		switch {
		case c.S3.Bucket == "":
			return errors.New("S3 bucket is required when S3 is enabled")
		case c.S3.Region == "":
			return errors.New("S3 region is required when S3 is enabled")
		case c.Coupon.TiersFile == "":
			return errors.New("coupon tiers file is required when S3 is enabled")
		}
	}

	if c.Coupon.TiersFile == "" && c.Coupon.Tiers == "" {
		return errors.New("coupon tiers are required")
	}
	if c.Coupon.CodePrefix == "" {
		return errors.New("coupon code prefix is required")
	}
	return nil
}

func validPort(p int) bool {
	return p >= 1 && p <= 65535
}

// ConnectionString renders the pool DSN. Credentials are URL-escaped.
func (d *DatabaseConfig) ConnectionString() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Database,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

// Address is the listen address for http.Server.
func (s *ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
