// Package config loads and validates application configuration from
// environment variables. Errors are collected and reported together so a
// misconfigured deployment fails once with the full list instead of
// variable by variable.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds connection settings for the PostgreSQL pool.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	PoolSize int
}

// AuthConfig holds token-issuance settings. JWTSecret is required: token
// signing has no runtime failure mode, so a missing secret must abort
// startup rather than surface per request.
type AuthConfig struct {
	JWTSecret     string
	ExpiryMinutes int
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// AppConfig is the top-level configuration for the service.
type AppConfig struct {
	Database *DatabaseConfig
	Auth     *AuthConfig
	Server   *ServerConfig
}

func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got %q: %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// clampPoolSize keeps the pool within sane bounds without failing startup.
func clampPoolSize(size int) int {
	if size < 2 {
		return 2
	}
	if size > 100 {
		return 100
	}
	return size
}

// LoadConfig reads every configuration value from the environment and
// returns them as an AppConfig, or a single aggregated error listing
// everything that was missing or malformed.
func LoadConfig() (*AppConfig, error) {
	var errs []string

	dbUser := getRequiredEnv("DB_USER", &errs)
	dbPassword := getRequiredEnv("DB_PASSWORD", &errs)
	dbName := getRequiredEnv("DB_NAME", &errs)
	dbHost := getOptionalEnv("DB_HOST", "localhost")
	dbPort := getOptionalEnvInt("DB_PORT", 5432, &errs)
	poolSize := clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errs))

	jwtSecret := getRequiredEnv("JWT_SECRET", &errs)
	expiryMinutes := getOptionalEnvInt("JWT_EXPIRY_MINUTES", 60, &errs)
	if expiryMinutes <= 0 {
		errs = append(errs, fmt.Sprintf("invalid value for JWT_EXPIRY_MINUTES: must be positive, got %d", expiryMinutes))
	}

	serverPort := getOptionalEnv("PORT", "8080")

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{
		Database: &DatabaseConfig{
			Host:     dbHost,
			Port:     dbPort,
			User:     dbUser,
			Password: dbPassword,
			DBName:   dbName,
			PoolSize: poolSize,
		},
		Auth: &AuthConfig{
			JWTSecret:     jwtSecret,
			ExpiryMinutes: expiryMinutes,
		},
		Server: &ServerConfig{
			Port: serverPort,
		},
	}, nil
}
