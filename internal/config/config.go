package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Metadata drivers understood by MetadataConfig.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Auth     AuthConfig
	Google   GoogleConfig
	Storage  StorageConfig
	Metadata MetadataConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `env:"APP_NAME" envDefault:"docvault"`
	Env                   string `env:"APP_ENV" envDefault:"development"`
	Host                  string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port                  string `env:"APP_PORT" envDefault:"8080"`
	Version               string `env:"APP_VERSION" envDefault:"dev"`
	RequestTimeoutSeconds int    `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
	UploadMaxBytes        int    `env:"UPLOAD_MAX_BYTES" envDefault:"20971520" validate:"gt=0"`
}

// AuthConfig defines bearer token parameters.
type AuthConfig struct {
	JWTSecret       string        `env:"AUTH_JWT_SECRET,notEmpty" validate:"min=32"`
	AccessTokenTTL  time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"6h" validate:"gt=0"`
	RefreshTokenTTL time.Duration `env:"AUTH_REFRESH_TOKEN_TTL" envDefault:"168h" validate:"gtfield=AccessTokenTTL"`
	Issuer          string        `env:"AUTH_ISSUER" envDefault:"docvault"`
}

// GoogleConfig holds OAuth client credentials. Endpoint URLs are optional
// overrides; empty values fall back to Google's published endpoints.
type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID,notEmpty"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET,notEmpty"`
	RedirectURI  string `env:"GOOGLE_REDIRECT_URI,notEmpty" validate:"url"`
	AuthURL      string `env:"GOOGLE_AUTH_URL" validate:"omitempty,url"`
	TokenURL     string `env:"GOOGLE_TOKEN_URL" validate:"omitempty,url"`
	UserInfoURL  string `env:"GOOGLE_USERINFO_URL" validate:"omitempty,url"`
}

// StorageConfig identifies the object storage bucket.
type StorageConfig struct {
	Bucket       string        `env:"AWS_BUCKET_NAME,notEmpty"`
	Region       string        `env:"AWS_REGION" envDefault:"us-east-1"`
	AccessKey    string        `env:"AWS_ACCESS_KEY"`
	SecretKey    string        `env:"AWS_SECRET_KEY"`
	EndpointURL  string        `env:"AWS_ENDPOINT_URL" validate:"omitempty,url"`
	UsePathStyle bool          `env:"AWS_USE_PATH_STYLE" envDefault:"false"`
	PresignTTL   time.Duration `env:"PRESIGN_TTL" envDefault:"60s" validate:"gt=0"`
}

// MetadataConfig selects the document metadata backend.
type MetadataConfig struct {
	Driver     string `env:"METADATA_DRIVER" envDefault:"postgres" validate:"oneof=postgres sqlite"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"docvault.db"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `env:"POSTGRES_DSN"`
	MaxConns       int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns       int32  `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	RunMigrations  bool   `env:"POSTGRES_RUN_MIGRATIONS" envDefault:"true"`
	ConnMaxIdleSec int32  `env:"POSTGRES_CONN_MAX_IDLE_SECONDS" envDefault:"30"`
	ConnMaxLifeSec int32  `env:"POSTGRES_CONN_MAX_LIFE_SECONDS" envDefault:"300"`
}

// RedisConfig holds Redis connection values for the owner cache.
// An empty Addr disables the cache.
type RedisConfig struct {
	Addr          string        `env:"REDIS_ADDR"`
	Password      string        `env:"REDIS_PASSWORD"`
	DB            int           `env:"REDIS_DB" envDefault:"0"`
	OwnerCacheTTL time.Duration `env:"OWNER_CACHE_TTL" envDefault:"30s"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the process environment (and .env when
// present) and validates it. A missing signing secret or OAuth credential is
// an error.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return parse(env.Options{})
}

// LoadFrom parses configuration from an explicit environment map instead of
// the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

// LoadSection parses and validates a single config section, for tooling that
// only needs part of the service configuration.
func LoadSection[T any]() (T, error) {
	_ = godotenv.Load()
	return loadSection[T](env.Options{})
}

func loadSection[T any](opts env.Options) (T, error) {
	var section T
	if err := env.ParseWithOptions(&section, opts); err != nil {
		return section, fmt.Errorf("parse env: %w", err)
	}
	if err := validator.New().Struct(section); err != nil {
		return section, fmt.Errorf("validate config: %w", err)
	}
	return section, nil
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if c.Metadata.Driver == DriverPostgres && strings.TrimSpace(c.Postgres.DSN) == "" {
		return errors.New("validate config: POSTGRES_DSN is required when METADATA_DRIVER=postgres")
	}
	if (c.Storage.AccessKey == "") != (c.Storage.SecretKey == "") {
		return errors.New("validate config: AWS_ACCESS_KEY and AWS_SECRET_KEY must be set together")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// CacheEnabled reports whether an owner cache should be configured.
func (r RedisConfig) CacheEnabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}
