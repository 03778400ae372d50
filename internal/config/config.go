// Package config loads INVOICES_* environment variables (and an optional
// .env file) into typed settings and validates them at startup.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the prefix INVOICES_. The prefix is removed,
	the key is lowercased and every double underscore becomes a "." so
	nested struct fields can be addressed:

	  INVOICES_SERVER__PORT        -> server.port       -> Config.Server.Port
	  INVOICES_DATABASE__SSL_MODE  -> database.ssl_mode -> Config.Database.SSLMode
*/

const (
	envPrefix = "INVOICES_"

	// ServiceName tags logs, traces and APM dashboards.
	ServiceName = "invoices"

	// DefaultSSLMode is used when the database config does not name one.
	// The store must always be reached over TLS.
	DefaultSSLMode = "require"
)

// Config is the root configuration object. A missing Observability block
// is filled with defaults at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// RateLimit is requests per second per client ip. Zero uses the default.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
//
// URL takes precedence over the individual fields. It plays the role of a
// single connection string handed to the service by its platform.
type DatabaseConfig struct {
	URL             string `koanf:"url"`
	Host            string `koanf:"host" validate:"required_without=URL"`
	Port            int    `koanf:"port" validate:"required_without=URL"`
	User            string `koanf:"user" validate:"required_without=URL"`
	Password        string `koanf:"password" validate:"required_without=URL"`
	Name            string `koanf:"name" validate:"required_without=URL"`
	SSLMode         string `koanf:"ssl_mode" validate:"omitempty,oneof=require verify-ca verify-full"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"gte=0"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"gte=0"`
}

// RedisConfig contains Redis connection details.
// Address is typically "host:port".
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores authentication-related secrets.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key" validate:"required"`
}

// IntegrationConfig holds third-party API credentials.
// An empty ResendAPIKey disables invoice notification emails.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from"`
}

// DSN builds the PostgreSQL connection string.
//
// The returned DSN always carries an sslmode. A URL that does not name one
// gets DefaultSSLMode (or the configured SSLMode) appended.
func (d DatabaseConfig) DSN() (string, error) {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = DefaultSSLMode
	}

	if d.URL != "" {
		u, err := url.Parse(d.URL)
		if err != nil {
			return "", fmt.Errorf("failed to parse database url: %w", err)
		}
		q := u.Query()
		if q.Get("sslmode") == "" {
			q.Set("sslmode", sslMode)
			u.RawQuery = q.Encode()
		}
		return u.String(), nil
	}

	// Joins host + port safely (IPv6 gets brackets).
	hostPort := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(d.Password),
		hostPort,
		d.Name,
		sslMode,
	), nil
}

// envKey converts INVOICES_DATABASE__SSL_MODE into database.ssl_mode.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, applies defaults and validates the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	// Start from the defaults so a partially configured observability
	// block keeps sane values for the fields it leaves out.
	mainConfig := &Config{
		Observability: DefaultObservabilityConfig(),
	}

	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	// Service name and environment are not user-configurable.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
