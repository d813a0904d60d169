package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// EnvironmentProduction turns on Secure cookies.
const EnvironmentProduction = "production"

// Config aggregates runtime configuration used across the service.
type Config struct {
	App      AppConfig      `yaml:"app"`
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Postgres PostgresConfig `yaml:"postgres"`
	Valkey   ValkeyConfig   `yaml:"valkey"`
}

// AppConfig holds deployment level settings.
type AppConfig struct {
	Environment string `yaml:"environment"`
}

// IsProduction reports whether the service runs in production mode.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Environment, EnvironmentProduction)
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// AuthConfig controls token signing, cookies and the login throttle.
type AuthConfig struct {
	AccessSecret        string        `yaml:"accessSecret"`
	RefreshSecret       string        `yaml:"refreshSecret"`
	AccessTokenTTL      time.Duration `yaml:"accessTokenTtl"`
	RefreshTokenTTL     time.Duration `yaml:"refreshTokenTtl"`
	AccessCookieMaxAge  time.Duration `yaml:"accessCookieMaxAge"`
	RefreshCookieMaxAge time.Duration `yaml:"refreshCookieMaxAge"`
	MaxLoginAttempts    int           `yaml:"maxLoginAttempts"`
	LoginAttemptWindow  time.Duration `yaml:"loginAttemptWindow"`
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	// Driver is memory, mongo or postgres. Empty picks mongo when a URI is set,
	// then postgres when a DSN is set, then memory.
	Driver string `yaml:"driver"`
}

// MongoConfig contains connection information for the document store.
type MongoConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	ConnectTimeout time.Duration `yaml:"connectTimeout"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for the attempt counters.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// Load reads .env, then a YAML file, then environment variables.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadDotEnv never overrides variables already present in the environment.
func loadDotEnv() error {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := firstEnv("APP_ENV", "NODE_ENV"); v != "" {
		cfg.App.Environment = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	} else if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Address = ":" + v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.AccessSecret = v
	}
	if v := os.Getenv("JWT_REFRESH_SECRET"); v != "" {
		cfg.Auth.RefreshSecret = v
	}
	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.AccessTokenTTL = parsed
		}
	}
	if v := os.Getenv("REFRESH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.RefreshTokenTTL = parsed
		}
	}
	if v := os.Getenv("LOGIN_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Auth.MaxLoginAttempts = parsed
		}
	}
	if v := os.Getenv("LOGIN_ATTEMPT_WINDOW"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.LoginAttemptWindow = parsed
		}
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		cfg.Mongo.URI = v
	}
	if v := os.Getenv("MONGODB_DATABASE"); v != "" {
		cfg.Mongo.Database = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("VALKEY_ENABLED"); v != "" {
		cfg.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Valkey.Addr = v
	}
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{Environment: "development"},
		HTTP: HTTPConfig{
			Address:        ":3000",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			AllowedOrigins: []string{"http://localhost:5173"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             40,
			},
		},
		Auth: AuthConfig{
			AccessTokenTTL:      15 * time.Minute,
			RefreshTokenTTL:     7 * 24 * time.Hour,
			AccessCookieMaxAge:  24 * time.Hour,
			RefreshCookieMaxAge: 7 * 24 * time.Hour,
			MaxLoginAttempts:    10,
			LoginAttemptWindow:  15 * time.Minute,
		},
		Mongo: MongoConfig{
			Database:       "projectshelf",
			ConnectTimeout: 10 * time.Second,
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Valkey: ValkeyConfig{
			Prefix: "projectshelf",
		},
	}
}

// StorageDriver resolves the configured or implied repository backend.
func (c *Config) StorageDriver() string {
	if c.Storage.Driver != "" {
		return c.Storage.Driver
	}
	if strings.TrimSpace(c.Mongo.URI) != "" {
		return DriverMongo
	}
	if strings.TrimSpace(c.Postgres.DSN) != "" {
		return DriverPostgres
	}
	return DriverMemory
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.Auth.AccessSecret) == "" {
		return errors.New("auth.accessSecret (JWT_SECRET) cannot be empty")
	}
	if strings.TrimSpace(c.Auth.RefreshSecret) == "" {
		return errors.New("auth.refreshSecret (JWT_REFRESH_SECRET) cannot be empty")
	}
	if strings.TrimSpace(c.Auth.AccessSecret) == strings.TrimSpace(c.Auth.RefreshSecret) {
		return errors.New("auth.accessSecret and auth.refreshSecret must differ")
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("auth token ttls must be positive")
	}
	if c.Auth.AccessCookieMaxAge <= 0 || c.Auth.RefreshCookieMaxAge <= 0 {
		return errors.New("auth cookie max ages must be positive")
	}
	if c.Auth.MaxLoginAttempts < 0 {
		return errors.New("auth.maxLoginAttempts cannot be negative")
	}
	if c.Auth.MaxLoginAttempts > 0 && c.Auth.LoginAttemptWindow <= 0 {
		return errors.New("auth.loginAttemptWindow must be positive when the login throttle is on")
	}
	switch c.StorageDriver() {
	case DriverMemory:
	case DriverMongo:
		if strings.TrimSpace(c.Mongo.URI) == "" {
			return errors.New("mongo.uri (MONGODB_URI) cannot be empty when storage.driver is mongo")
		}
		if strings.TrimSpace(c.Mongo.Database) == "" {
			return errors.New("mongo.database cannot be empty")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			return errors.New("postgres.dsn (POSTGRES_DSN) cannot be empty when storage.driver is postgres")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Valkey.Enabled && strings.TrimSpace(c.Valkey.Addr) == "" {
		return errors.New("valkey.addr cannot be empty when valkey is enabled")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
