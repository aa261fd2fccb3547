package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// defaultJWTSecret is the development signing key.
const defaultJWTSecret = "changeme"

type Config struct {
	ServerPort string `env:"SERVER_PORT, default=8080"`
	Env        string `env:"ENV, default=development"`
	Timezone   string `env:"TIMEZONE, default=UTC"`

	JWTSecret string        `env:"JWT_SECRET, default=changeme"`
	JWTTTL    time.Duration `env:"JWT_TTL, default=24h"`

	SessionTTL   time.Duration `env:"SESSION_TTL, default=12h"`
	CookieSecure bool          `env:"COOKIE_SECURE, default=false"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS"`

	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	Database  DatabaseConfig
	Superuser SuperuserConfig
	SeedAdmin SeedAdminConfig
	Redis     RedisConfig
	Import    ImportConfig
	Access    AccessConfig
	Archive   ArchiveConfig
}

type DatabaseConfig struct {
	Driver string `env:"DATABASE_DRIVER, default=sqlite"`
	URL    string `env:"DATABASE_URL, default=file:data.db"`
}

// SuperuserConfig is the configured admin credential checked before any
// store lookup. Empty values disable it.
type SuperuserConfig struct {
	Username string `env:"SUPERUSER_USERNAME"`
	Password string `env:"SUPERUSER_PASSWORD"`
}

type SeedAdminConfig struct {
	Username string `env:"SEED_ADMIN_USERNAME"`
	Password string `env:"SEED_ADMIN_PASSWORD"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type ImportConfig struct {
	AnyAuthenticated bool  `env:"IMPORT_ANY_AUTHENTICATED, default=false"`
	LegacyEncoding   bool  `env:"IMPORT_LEGACY_ENCODING, default=true"`
	RequireEmail     bool  `env:"IMPORT_REQUIRE_EMAIL, default=false"`
	ValidateEmail    bool  `env:"IMPORT_VALIDATE_EMAIL, default=false"`
	UniqueEmail      bool  `env:"IMPORT_UNIQUE_EMAIL, default=false"`
	MaxBytes         int64 `env:"IMPORT_MAX_BYTES, default=10485760"`
}

type AccessConfig struct {
	AgentSeesAll bool `env:"AGENT_SEES_ALL, default=false"`
}

type ArchiveConfig struct {
	Backend string `env:"ARCHIVE_BACKEND, default=local"`
	Dir     string `env:"ARCHIVE_DIR, default=uploads"`

	S3Bucket    string `env:"ARCHIVE_S3_BUCKET"`
	S3Region    string `env:"ARCHIVE_S3_REGION, default=us-east-1"`
	S3Endpoint  string `env:"ARCHIVE_S3_ENDPOINT"`
	S3AccessKey string `env:"ARCHIVE_S3_ACCESS_KEY"`
	S3SecretKey string `env:"ARCHIVE_S3_SECRET_KEY"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// validate refuses settings that are only acceptable in development.
func (c *Config) validate() error {
	if !c.IsProduction() {
		return nil
	}
	if c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set to a non-default value in production")
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.ServerPort)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
