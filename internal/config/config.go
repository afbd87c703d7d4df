package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultFeeds is the feed list every new session starts with.
var DefaultFeeds = []string{
	"https://www.eenadu.net/rss/andhrapradesh-news.xml",
	"https://www.eenadu.net/rss/telangana-news.xml",
	"https://www.sakshi.com/rss",
	"https://telugu.news18.com/rss/andhra-pradesh.xml",
	"https://telugu.news18.com/rss/telangana.xml",
}

// Archive backends
const (
	ArchiveNone = "none"
	ArchiveDisk = "disk"
	ArchiveS3   = "s3"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// Feed configuration
	CORSProxy       string   `json:"cors_proxy"`
	DefaultFeeds    []string `json:"default_feeds"`
	MaxItemsPerFeed int      `json:"max_items_per_feed"`
	TimeZone        string   `json:"time_zone"`

	// Session store
	SessionTTL  time.Duration `json:"session_ttl"`
	RedisURL    string        `json:"redis_url"`
	RedisPrefix string        `json:"redis_prefix"`

	// AI Configuration
	AIApiKey  string `json:"-"`
	AIModel   string `json:"ai_model"`
	AIBaseURL string `json:"ai_base_url"`
	AITimeout int    `json:"ai_timeout"`

	// Cycle archive
	ArchiveBackend string `json:"archive_backend"`
	StoragePath    string `json:"storage_path"`

	// CloudFlare R2 Configuration
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"-"`
	R2SecretKey string `json:"-"`
	R2Bucket    string `json:"r2_bucket"`
	R2Region    string `json:"r2_region"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security
	AdminAPIKey string `json:"-"`
}

// Load reads configuration from the environment (and .env when present).
// A missing generative API key is a startup failure.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{
		// Server configuration
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		// Feed configuration
		CORSProxy:       getEnv("CORS_PROXY", "https://api.allorigins.win/raw?url="),
		DefaultFeeds:    getEnvAsSlice("DEFAULT_FEEDS", DefaultFeeds),
		MaxItemsPerFeed: getEnvAsInt("MAX_ITEMS_PER_FEED", 10),
		TimeZone:        getEnv("TIME_ZONE", "Local"),

		// Session store
		SessionTTL:  getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		RedisURL:    getEnv("REDIS_URL", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "newsdigest:"),

		// AI Configuration
		AIApiKey:  firstNonEmpty(getEnv("GEMINI_API_KEY", ""), getEnv("API_KEY", "")),
		AIModel:   getEnv("AI_MODEL", "gemini-2.5-flash"),
		AIBaseURL: getEnv("AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models"),
		AITimeout: getEnvAsInt("AI_TIMEOUT", 60),

		// Cycle archive
		ArchiveBackend: strings.ToLower(getEnv("ARCHIVE_BACKEND", ArchiveNone)),
		StoragePath:    getEnv("STORAGE_PATH", "./data"),

		// CloudFlare R2 Configuration
		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", "newsdigest"),
		R2Region:    getEnv("R2_REGION", "auto"),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		// Security
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AIApiKey) == "" {
		return &ConfigError{Field: "GEMINI_API_KEY", Message: "API key environment variable not set"}
	}
	if c.MaxItemsPerFeed <= 0 {
		return &ConfigError{Field: "MAX_ITEMS_PER_FEED", Message: "must be positive"}
	}
	switch c.ArchiveBackend {
	case ArchiveNone, ArchiveDisk:
	case ArchiveS3:
		if c.R2Endpoint == "" || c.R2Bucket == "" {
			return &ConfigError{Field: "R2_ENDPOINT", Message: "endpoint and bucket are required for the s3 archive"}
		}
	default:
		return &ConfigError{Field: "ARCHIVE_BACKEND", Message: "unknown backend " + strconv.Quote(c.ArchiveBackend)}
	}
	if _, err := c.Location(); err != nil {
		return &ConfigError{Field: "TIME_ZONE", Message: err.Error()}
	}
	return nil
}

// IsProduction reports whether logs should be emitted as plain JSON.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location resolves TimeZone; "Local" and "" mean the process zone.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.TimeZone)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// getEnvAsSlice splits a comma-separated value, dropping blanks.
func getEnvAsSlice(name string, defaultVal []string) []string {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return append([]string(nil), defaultVal...)
	}
	parts := strings.Split(valueStr, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
