package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                       string   `mapstructure:"PORT"`
	Env                        string   `mapstructure:"ENV"`
	DatabaseURL                string   `mapstructure:"DATABASE_URL"`
	DBMaxConns                 int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns                 int32    `mapstructure:"DB_MIN_CONNS"`
	RegistersAPIURL            string   `mapstructure:"REGISTERS_API_URL"`
	RegistersAPITimeoutSeconds int      `mapstructure:"REGISTERS_API_TIMEOUT_SECONDS"`
	HistoryPageSize            int      `mapstructure:"HISTORY_PAGE_SIZE"`
	AuthIssuer                 string   `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL                string   `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience               string   `mapstructure:"AUTH_AUDIENCE"`
	EmbedSigningKey            string   `mapstructure:"EMBED_SIGNING_KEY"`
	CORSOrigins                []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS               float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst             int      `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("REGISTERS_API_TIMEOUT_SECONDS", 10)
	v.SetDefault("HISTORY_PAGE_SIZE", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:4200")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("REGISTERS_API_URL")
	v.BindEnv("REGISTERS_API_TIMEOUT_SECONDS")
	v.BindEnv("HISTORY_PAGE_SIZE")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_JWKS_URL")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("EMBED_SIGNING_KEY")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RegistersAPIURL == "" {
		return nil, fmt.Errorf("REGISTERS_API_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active — all requests get admin access.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: Set ENV=production and configure AUTH_ISSUER for production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// RegistersAPITimeout returns the upstream request timeout as a duration.
func (c *Config) RegistersAPITimeout() time.Duration {
	secs := c.RegistersAPITimeoutSeconds
	if secs <= 0 {
		secs = 10
	}
	return time.Duration(secs) * time.Second
}

// Validate checks that the configuration is safe to run. In production
// AUTH_ISSUER must be set so that real JWT authentication is enforced and the
// BI embed token key must be configured. The upstream registers API URL must
// be a valid absolute URL in every mode.
func (c *Config) Validate() error {
	if u, err := url.Parse(c.RegistersAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("REGISTERS_API_URL is not a valid absolute URL: %q", c.RegistersAPIURL)
	}
	if c.HistoryPageSize <= 0 || c.HistoryPageSize > 100 {
		return fmt.Errorf("HISTORY_PAGE_SIZE must be between 1 and 100, got %d", c.HistoryPageSize)
	}
	if c.IsProduction() {
		if c.AuthIssuer == "" {
			return fmt.Errorf("AUTH_ISSUER is required in production. " +
				"Refusing to start without authentication configuration")
		}
		if c.EmbedSigningKey == "" {
			return fmt.Errorf("EMBED_SIGNING_KEY is required in production")
		}
	}
	return nil
}
