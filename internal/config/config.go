// Package config loads the service configuration from defaults, YAML files,
// a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// Environment names a deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// ParseEnvironment maps common spellings onto an Environment, defaulting to Development.
func ParseEnvironment(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prod", "production":
		return Production
	case "stage", "staging":
		return Staging
	default:
		return Development
	}
}

// Config is the complete service configuration.
type Config struct {
	Environment Environment `yaml:"environment" json:"environment"`
	Server      Server      `yaml:"server" json:"server"`
	Database    Database    `yaml:"database" json:"database"`
	Security    Security    `yaml:"security" json:"security"`
	Uploads     Uploads     `yaml:"uploads" json:"uploads"`
	CORS        CORS        `yaml:"cors" json:"cors"`
	Logging     Logging     `yaml:"logging" json:"logging"`
	Metrics     Metrics     `yaml:"metrics" json:"metrics"`
	Tracing     Tracing     `yaml:"tracing" json:"tracing"`

	// LoadedFrom lists the sources applied, lowest priority first.
	LoadedFrom []string `yaml:"-" json:"-"`
}

// Server holds HTTP server settings.
type Server struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	MaxRequestSize  int64         `yaml:"max_request_size" json:"max_request_size"`
}

// Database holds the SQL connection settings.
type Database struct {
	Driver          string        `yaml:"driver" json:"driver"` // sqlite or postgres
	URL             string        `yaml:"url" json:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
}

// Security holds token and password hashing settings.
type Security struct {
	JWTSecret  string        `yaml:"jwt_secret" json:"jwt_secret"`
	JWTIssuer  string        `yaml:"jwt_issuer" json:"jwt_issuer"`
	TokenTTL   time.Duration `yaml:"token_ttl" json:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost" json:"bcrypt_cost"`
}

// Uploads selects where attachments are kept.
type Uploads struct {
	Provider string `yaml:"provider" json:"provider"` // local or s3
	Dir      string `yaml:"dir" json:"dir"`
	S3       S3     `yaml:"s3" json:"s3"`
}

// S3 holds the bucket settings for the s3 upload provider.
type S3 struct {
	Bucket          string `yaml:"bucket" json:"bucket"`
	Prefix          string `yaml:"prefix" json:"prefix"`
	Region          string `yaml:"region" json:"region"`
	Endpoint        string `yaml:"endpoint" json:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key"`
}

// CORS holds cross-origin settings.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" json:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" json:"allowed_headers"`
	MaxAge         int      `yaml:"max_age" json:"max_age"`
}

// Logging holds logger settings.
type Logging struct {
	Level string `yaml:"level" json:"level"`
}

// Metrics holds Prometheus settings.
type Metrics struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
	Path      string `yaml:"path" json:"path"`
}

// Tracing holds OpenTelemetry settings.
type Tracing struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	ServiceName string `yaml:"service_name" json:"service_name"`
	Endpoint    string `yaml:"endpoint" json:"endpoint"`
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// LogLevel parses Logging.Level, falling back to info.
func (c *Config) LogLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	if c.Server.MaxRequestSize <= 0 {
		errs = append(errs, errors.New("max request size must be positive"))
	}

	switch c.Database.Driver {
	case "sqlite", "postgres", "postgresql", "pgx":
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.Database.Driver))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database url is required"))
	}

	if c.Security.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("JWT_SECRET is required in %s", c.Environment))
	}
	if c.IsProduction() && len(c.Security.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters in production"))
	}
	if c.Security.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}

	switch c.Uploads.Provider {
	case "local":
		if c.Uploads.Dir == "" {
			errs = append(errs, errors.New("upload dir is required for the local provider"))
		}
	case "s3":
		if c.Uploads.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported upload provider %q", c.Uploads.Provider))
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		errs = append(errs, errors.New("tracing endpoint is required when tracing is enabled"))
	}

	return errors.Join(errs...)
}
