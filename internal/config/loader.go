package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader handles loading configuration from multiple sources.
type Loader struct {
	// basePath is the root directory for configuration files
	basePath string

	// envFile is the dotenv file applied before the environment overlay
	envFile string

	environment Environment

	// fileLoaders in lookup order
	fileLoaders []FileLoader

	lookupEnv func(string) (string, bool)

	// random feeds the generated development secret
	random io.Reader
}

// FileLoader decodes one configuration file format.
type FileLoader interface {
	Load(reader io.Reader, target interface{}) error
	Extension() string
}

// NewLoader creates a loader reading files from basePath (default "config").
func NewLoader(basePath string, env Environment) *Loader {
	if basePath == "" {
		basePath = "config"
	}
	return &Loader{
		basePath:    basePath,
		envFile:     ".env",
		environment: env,
		fileLoaders: []FileLoader{YAMLLoader{}, JSONLoader{}},
		lookupEnv:   os.LookupEnv,
		random:      rand.Reader,
	}
}

// WithEnvFile sets the dotenv file; an empty path disables it.
func (l *Loader) WithEnvFile(path string) *Loader {
	l.envFile = path
	return l
}

// BasePath returns the directory configuration files are read from.
func (l *Loader) BasePath() string {
	return l.basePath
}

// Load loads configuration using a hierarchy of sources.
// The loading order (from lowest to highest priority):
//  1. Default values (in code)
//  2. Base configuration file (base.yaml)
//  3. Environment-specific file (e.g., production.yaml)
//  4. The .env file, for variables not already set
//  5. Environment variables
func (l *Loader) Load() (*Config, error) {
	cfg := l.defaultConfig()
	sources := []string{"defaults"}

	for _, name := range []string{"base", string(l.environment)} {
		path, err := l.loadFile(name, cfg)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to load %s config: %w", name, err)
		}
		sources = append(sources, path)
	}

	if l.envFile != "" {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(l.envFile); err == nil {
			sources = append(sources, l.envFile)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", l.envFile, err)
		}
	}

	if err := l.loadEnvironmentVariables(cfg); err != nil {
		return nil, err
	}
	sources = append(sources, "environment")
	cfg.LoadedFrom = sources

	if cfg.Security.JWTSecret == "" && cfg.Environment == Development {
		secret, err := generateDevSecret(l.random)
		if err != nil {
			return nil, fmt.Errorf("failed to generate development secret: %w", err)
		}
		cfg.Security.JWTSecret = secret
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes the first of name.yaml, name.yml or name.json found.
func (l *Loader) loadFile(name string, cfg *Config) (string, error) {
	for _, loader := range l.fileLoaders {
		path := filepath.Join(l.basePath, name+"."+loader.Extension())

		file, err := os.Open(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", err
		}

		err = loader.Load(file, cfg)
		file.Close()
		if err != nil {
			return "", fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return path, nil
	}
	return "", fs.ErrNotExist
}

// loadEnvironmentVariables overlays environment variables on the configuration.
func (l *Loader) loadEnvironmentVariables(cfg *Config) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := l.lookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := l.lookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := l.lookupEnv(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := l.lookupEnv(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := l.lookupEnv(key); ok && v != "" {
			var items []string
			for _, item := range strings.Split(v, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
			*dst = items
		}
	}

	str("SERVER_HOST", &cfg.Server.Host)
	integer("SERVER_PORT", &cfg.Server.Port)
	if v, ok := l.lookupEnv("MAX_REQUEST_SIZE"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MAX_REQUEST_SIZE: %w", err))
		} else {
			cfg.Server.MaxRequestSize = n
		}
	}

	str("DB_DRIVER", &cfg.Database.Driver)
	str("DATABASE_URL", &cfg.Database.URL)

	str("JWT_SECRET", &cfg.Security.JWTSecret)
	str("JWT_ISSUER", &cfg.Security.JWTIssuer)
	duration("TOKEN_TTL", &cfg.Security.TokenTTL)
	integer("BCRYPT_COST", &cfg.Security.BcryptCost)

	str("UPLOAD_PROVIDER", &cfg.Uploads.Provider)
	str("UPLOAD_DIR", &cfg.Uploads.Dir)
	str("S3_BUCKET", &cfg.Uploads.S3.Bucket)
	str("S3_PREFIX", &cfg.Uploads.S3.Prefix)
	str("AWS_REGION", &cfg.Uploads.S3.Region)
	str("S3_ENDPOINT", &cfg.Uploads.S3.Endpoint)
	str("AWS_ACCESS_KEY_ID", &cfg.Uploads.S3.AccessKeyID)
	str("AWS_SECRET_ACCESS_KEY", &cfg.Uploads.S3.SecretAccessKey)

	list("CORS_ALLOWED_ORIGINS", &cfg.CORS.AllowedOrigins)
	str("LOG_LEVEL", &cfg.Logging.Level)

	boolean("ENABLE_METRICS", &cfg.Metrics.Enabled)
	boolean("ENABLE_TRACING", &cfg.Tracing.Enabled)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Tracing.Endpoint)

	return errors.Join(errs...)
}

// defaultConfig returns a configuration that runs locally without any files.
func (l *Loader) defaultConfig() *Config {
	level := "info"
	if l.environment == Development {
		level = "debug"
	}

	return &Config{
		Environment: l.environment,
		Server: Server{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxRequestSize:  16 * 1024 * 1024, // 16MB
		},
		Database: Database{
			Driver:          "sqlite",
			URL:             "file:memories.db",
			MaxOpenConns:    10,
			MaxIdleConns:    10,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Security: Security{
			TokenTTL:   7 * 24 * time.Hour,
			BcryptCost: 12,
		},
		Uploads: Uploads{
			Provider: "local",
			Dir:      "uploads",
		},
		CORS: CORS{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		},
		Logging: Logging{Level: level},
		Metrics: Metrics{
			Enabled:   true,
			Namespace: "memories",
			Path:      "/metrics",
		},
		Tracing: Tracing{
			ServiceName: "memories-backend",
		},
	}
}

// LoadConfig loads configuration for the environment named by ENVIRONMENT,
// reading files from CONFIG_DIR (default ./config).
func LoadConfig() (*Config, error) {
	return NewLoader(os.Getenv("CONFIG_DIR"), ParseEnvironment(os.Getenv("ENVIRONMENT"))).Load()
}

func generateDevSecret(r io.Reader) (string, error) {
	b := make([]byte, 32)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// YAMLLoader reads .yaml files.
type YAMLLoader struct{}

func (YAMLLoader) Load(r io.Reader, target interface{}) error {
	err := yaml.NewDecoder(r).Decode(target)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (YAMLLoader) Extension() string { return "yaml" }

// JSONLoader reads .json files.
type JSONLoader struct{}

func (JSONLoader) Load(r io.Reader, target interface{}) error {
	return json.NewDecoder(r).Decode(target)
}

func (JSONLoader) Extension() string { return "json" }
