package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Billing  BillingConfig
	Identity IdentityConfig
	OAuth    OAuthConfig
	Security SecurityConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// BillingConfig points at the external billing provider
type BillingConfig struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	WebhookSecret string
}

// IdentityConfig points at the external identity provider
type IdentityConfig struct {
	JWKSURL  string
	Issuer   string
	Audience string
}

// OAuthConfig holds the authorization server knobs
type OAuthConfig struct {
	IDTokenSecret  string
	IDTokenIssuer  string
	AuthCodeTTL    time.Duration
	AccessTokenTTL time.Duration
}

// SecurityConfig holds session and anonymization settings
type SecurityConfig struct {
	SessionEncryptionKey string
	SessionTTL           time.Duration
	AnonymizedDomain     string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "wtyczki"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Billing: BillingConfig{
			BaseURL:       getEnv("BILLING_BASE_URL", "https://api.billing.example.com"),
			APIKey:        getEnv("BILLING_API_KEY", ""),
			Timeout:       getEnvAsDuration("BILLING_TIMEOUT", 15*time.Second),
			WebhookSecret: getEnv("BILLING_WEBHOOK_SECRET", ""),
		},
		Identity: IdentityConfig{
			JWKSURL:  getEnv("IDENTITY_JWKS_URL", "https://id.wtyczki.ai/.well-known/jwks.json"),
			Issuer:   getEnv("IDENTITY_ISSUER", "https://id.wtyczki.ai/"),
			Audience: getEnv("IDENTITY_AUDIENCE", "wtyczki-backend"),
		},
		OAuth: OAuthConfig{
			IDTokenSecret:  getEnv("OAUTH_ID_TOKEN_SECRET", "change-this-in-production"),
			IDTokenIssuer:  getEnv("OAUTH_ID_TOKEN_ISSUER", "https://panel.wtyczki.ai"),
			AuthCodeTTL:    getEnvAsDuration("OAUTH_AUTH_CODE_TTL", 5*time.Minute),
			AccessTokenTTL: getEnvAsDuration("OAUTH_ACCESS_TOKEN_TTL", time.Hour),
		},
		Security: SecurityConfig{
			SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
			SessionTTL:           getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			AnonymizedDomain:     getEnv("ANONYMIZED_EMAIL_DOMAIN", "wtyczki.ai"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
