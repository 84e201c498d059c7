package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Store   StoreConfig
	DB      DatabaseConfig
	Log     LogConfig
	Metrics MetricsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
	Env  string
}

// AuthConfig holds the shared-secret authentication configuration
type AuthConfig struct {
	// APIKey is the static shared secret expected on every protected route.
	APIKey string
	// Header is the request header carrying the key.
	Header string
}

// StoreConfig selects and configures the backing tabular store
type StoreConfig struct {
	// Backend selects the store driver: "sheets" or "grid".
	Backend string
	// SpreadsheetID identifies the workbook for the sheets backend.
	SpreadsheetID string
	// CredentialsB64 is the base64-encoded service account JSON for the sheets backend.
	CredentialsB64 string
	CompaniesTable string
	CallsTable     string
}

// DatabaseConfig holds database configuration for the grid backend
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics-related configuration
type MetricsConfig struct {
	Prefix string
}

// Load loads the application configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
			Header: getEnv("API_KEY_HEADER", "X-API-Key"),
		},
		Store: StoreConfig{
			Backend:        getEnv("STORE_BACKEND", "sheets"),
			SpreadsheetID:  getEnv("SPREADSHEET_ID", ""),
			CredentialsB64: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
			CompaniesTable: getEnv("COMPANIES_TABLE", "Companies"),
			CallsTable:     getEnv("CALLS_TABLE", "Calls"),
		},
		DB: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "crm_db"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "crm"),
		},
	}, nil
}

// Helper functions to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
