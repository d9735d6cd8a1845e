package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full runtime configuration, read from the environment.
// Missing required keys are fatal at startup, never a per-request error.
type Config struct {
	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	DatabaseFile string `env:"DATABASE_FILE" envDefault:"careerhive.db"`

	JWTSecret   string `env:"JWT_SECRET,required"`
	JWTIssuer   string `env:"JWT_ISSUER,required"`
	JWTAudience string `env:"JWT_AUDIENCE,required"`

	AccessTokenExpirationMinutes int `env:"ACCESS_TOKEN_EXPIRATION_MINUTES" envDefault:"15"`
	RefreshTokenExpirationDays   int `env:"REFRESH_TOKEN_EXPIRATION_DAYS" envDefault:"7"`

	// FrontendURL is the public base embedded in confirmation, reset, and
	// notification links.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPStartTLS bool   `env:"SMTP_STARTTLS" envDefault:"true"`

	SafeBrowsingAPIKey string `env:"SAFE_BROWSING_API_KEY"`
}

// AccessTTL converts the configured minutes into a duration.
func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenExpirationMinutes) * time.Minute
}

// RefreshTTL converts the configured days into a duration.
func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpirationDays) * 24 * time.Hour
}

// LoadConfig parses the environment into a Config.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
