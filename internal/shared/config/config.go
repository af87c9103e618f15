package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ServiceURL     string // public base URL, used to build payment callback URLs
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Kafka configuration
	Kafka KafkaConfig

	// JWT configuration
	JWT JWTConfig

	// Payment gateway configuration
	Payment PaymentConfig

	// Outbox relay configuration
	Outbox OutboxConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	// TTL values
	EventCacheTTL time.Duration
}

// KafkaConfig holds Kafka broker and topic configuration
type KafkaConfig struct {
	Brokers          []string
	BookingTopic     string
	ConsumerGroup    string
	ProducerRetryMax int
	ProducerTimeout  time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// PaymentConfig holds payment gateway configuration
type PaymentConfig struct {
	GatewayURL    string
	TeamSlug      string
	Password      string
	Currency      string
	RequestExpiry int // seconds until an initiated payment expires on the gateway
	Timeout       time.Duration
}

// OutboxConfig holds outbox relay configuration
type OutboxConfig struct {
	FlushInterval time.Duration
	BatchSize     int
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool
	WindowDuration  time.Duration
	DefaultRequests int
	BookingRequests int
	PaymentRequests int
	WhitelistedIPs  []string
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ServiceURL:     getEnv("SERVICE_URL", "http://localhost:8080"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "ticketly_db"),
			User:     getEnv("DB_USER", "ticketly_user"),
			Password: getEnv("DB_PASSWORD", "ticketly_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),

			EventCacheTTL: getDurationEnv("REDIS_EVENT_CACHE_TTL", 1*time.Hour),
		},

		Kafka: KafkaConfig{
			Brokers:          getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			BookingTopic:     getEnv("KAFKA_BOOKING_TOPIC", "booking-events"),
			ConsumerGroup:    getEnv("KAFKA_CONSUMER_GROUP", "booking-event-handlers"),
			ProducerRetryMax: getIntEnv("KAFKA_PRODUCER_RETRY_MAX", 3),
			ProducerTimeout:  getDurationEnv("KAFKA_PRODUCER_TIMEOUT", 10*time.Second),
		},

		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
		},

		Payment: PaymentConfig{
			GatewayURL:    getEnv("PAYMENT_GATEWAY_URL", "http://localhost:9090"),
			TeamSlug:      getEnv("PAYMENT_TEAM_SLUG", "ticketly"),
			Password:      getEnv("PAYMENT_PASSWORD", ""),
			Currency:      getEnv("PAYMENT_CURRENCY", "KZT"),
			RequestExpiry: getIntEnv("PAYMENT_REQUEST_EXPIRY", 3600),
			Timeout:       getDurationEnv("PAYMENT_TIMEOUT", 30*time.Second),
		},

		Outbox: OutboxConfig{
			FlushInterval: getDurationEnv("OUTBOX_FLUSH_INTERVAL", 2*time.Second),
			BatchSize:     getIntEnv("OUTBOX_BATCH_SIZE", 100),
		},

		RateLimit: RateLimitConfig{
			Enabled:         getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:  getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests: getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 100),
			BookingRequests: getIntEnv("RATE_LIMIT_BOOKING_REQUESTS", 30),
			PaymentRequests: getIntEnv("RATE_LIMIT_PAYMENT_REQUESTS", 20),
			WhitelistedIPs:  getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
