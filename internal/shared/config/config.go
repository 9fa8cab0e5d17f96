package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	EventStore EventStoreConfig
	Auth       AuthConfig
	Policy     PolicyConfig
	HIS        HISConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// EventStoreConfig holds configuration for the EventStoreDB event bus.
type EventStoreConfig struct {
	// Host is the EventStoreDB server hostname
	Host string
	// Port is the gRPC port (default 2113)
	Port int
	// Insecure disables TLS (for development)
	Insecure bool
	// Username for authentication (optional)
	Username string
	// Password for authentication (optional)
	Password string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// PolicyConfig holds the alerting policy knobs an administrator can tune.
type PolicyConfig struct {
	// HighRiskThreshold is the score at or above which risk is High
	HighRiskThreshold float64
	// MediumRiskThreshold is the score at or above which risk is Medium
	MediumRiskThreshold float64
	// RetestIntervalDays is the interval after which a retest is due
	RetestIntervalDays int
	// WarningAccumulationThreshold is the number of Medium assessments
	// before a reminder is escalated
	WarningAccumulationThreshold int
}

// HISConfig holds configuration for the legacy hospital information
// system import adapter (SQL Server based).
type HISConfig struct {
	Enabled      bool
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MetricsTable string
	PollInterval time.Duration
}

func (h HISConfig) DSN() string {
	return fmt.Sprintf(
		"server=%s;port=%d;user id=%s;password=%s;database=%s",
		h.Host, h.Port, h.User, h.Password, h.Database,
	)
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("SERVER_PORT", 8080),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "strokewatch"),
			Password: getEnv("DB_PASSWORD", "strokewatch"),
			Database: getEnv("DB_NAME", "strokewatch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		EventStore: EventStoreConfig{
			Host:     getEnv("EVENTSTORE_HOST", "localhost"),
			Port:     getEnvInt("EVENTSTORE_PORT", 2113),
			Insecure: getEnvBool("EVENTSTORE_INSECURE", true),
			Username: getEnv("EVENTSTORE_USERNAME", ""),
			Password: getEnv("EVENTSTORE_PASSWORD", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-prod"),
			TokenTTL:  time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		},
		Policy: PolicyConfig{
			HighRiskThreshold:            getEnvFloat("POLICY_HIGH_THRESHOLD", 70),
			MediumRiskThreshold:          getEnvFloat("POLICY_MEDIUM_THRESHOLD", 40),
			RetestIntervalDays:           getEnvInt("POLICY_RETEST_INTERVAL_DAYS", 90),
			WarningAccumulationThreshold: getEnvInt("POLICY_WARNING_THRESHOLD", 3),
		},
		HIS: HISConfig{
			Enabled:      getEnvBool("HIS_ENABLED", false),
			Host:         getEnv("HIS_HOST", "localhost"),
			Port:         getEnvInt("HIS_PORT", 1433),
			User:         getEnv("HIS_USER", "sa"),
			Password:     getEnv("HIS_PASSWORD", ""),
			Database:     getEnv("HIS_DATABASE", "hospital"),
			MetricsTable: getEnv("HIS_METRICS_TABLE", "dbo.PatientMetrics"),
			PollInterval: time.Duration(getEnvInt("HIS_POLL_INTERVAL_SECONDS", 300)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 20),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 40),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
