package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Upstream transit API configuration
	Upstream UpstreamConfig

	// Database configuration (optional; preference persistence)
	Database DatabaseConfig

	// CORS configuration
	CORS CORSConfig

	// Admin auth configuration
	Auth AuthConfig

	// Schedule extraction collaborator configuration
	Extract ExtractConfig

	// Live polling configuration
	Live LiveConfig

	// Schedule import configuration
	Import ImportConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// UpstreamConfig holds the external transit API configuration
type UpstreamConfig struct {
	BaseURL string // includes the /api/v1 suffix
	Timeout time.Duration
}

// DatabaseConfig holds database-related configuration. An empty URL disables
// persistence and the operator selection falls back to process memory.
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// AuthConfig holds admin authentication configuration. An empty secret
// disables auth on the mutating endpoints (development mode).
type AuthConfig struct {
	JWTSecret string
}

// ExtractConfig holds the AI schedule-extraction collaborator configuration
type ExtractConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// LiveConfig holds the polling intervals for the live views
type LiveConfig struct {
	TrackInterval  time.Duration
	ReportInterval time.Duration
}

// ImportConfig holds the schedule-import upload limits
type ImportConfig struct {
	MaxFileSize int64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Upstream: UpstreamConfig{
			BaseURL: getEnv("UPSTREAM_API_BASE", "https://jak-doczlapie-hackyeah.b.solvro.pl/api/v1"),
			Timeout: time.Duration(getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		},
		Extract: ExtractConfig{
			BaseURL: getEnv("EXTRACT_API_URL", ""),
			APIKey:  getEnv("EXTRACT_API_KEY", ""),
			Timeout: time.Duration(getEnvAsInt("EXTRACT_TIMEOUT_SECONDS", 120)) * time.Second,
		},
		Live: LiveConfig{
			TrackInterval:  time.Duration(getEnvAsInt("TRACK_POLL_INTERVAL_SECONDS", 15)) * time.Second,
			ReportInterval: time.Duration(getEnvAsInt("REPORT_POLL_INTERVAL_SECONDS", 30)) * time.Second,
		},
		Import: ImportConfig{
			MaxFileSize: int64(getEnvAsInt("IMPORT_MAX_FILE_SIZE", 10*1024*1024)),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("UPSTREAM_API_BASE is required")
	}

	if !strings.HasPrefix(c.Upstream.BaseURL, "http://") && !strings.HasPrefix(c.Upstream.BaseURL, "https://") {
		return fmt.Errorf("UPSTREAM_API_BASE must be an absolute http(s) URL")
	}

	if c.Live.TrackInterval <= 0 {
		return fmt.Errorf("TRACK_POLL_INTERVAL_SECONDS must be positive")
	}

	if c.Live.ReportInterval <= 0 {
		return fmt.Errorf("REPORT_POLL_INTERVAL_SECONDS must be positive")
	}

	if c.Import.MaxFileSize <= 0 {
		return fmt.Errorf("IMPORT_MAX_FILE_SIZE must be positive")
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
