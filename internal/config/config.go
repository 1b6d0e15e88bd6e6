// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minSharedSecretLen = 16

type Config struct {
	Environment string
	LogLevel    string
	Server      ServerConfig
	Database    DatabaseConfig
	Embedding   EmbeddingConfig
	Search      SearchConfig
	Internal    InternalConfig
	Cache       CacheConfig
	Analytics   AnalyticsConfig
	RateLimit   RateLimitConfig
	AWS         AWSConfig
	Build       BuildConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	ReadTimeout    int
	WriteTimeout   int
	IdleTimeout    int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL           string
	Host          string
	Port          string
	User          string
	Password      string
	Database      string
	SSLMode       string
	MaxOpenConns  int
	MaxIdleConns  int
	MaxLifetime   int
	LogLevel      string
	SlowThreshold time.Duration
	QueryTimeout  time.Duration
}

type EmbeddingConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Timeout    time.Duration
	ImageModel string
}

type SearchConfig struct {
	DefaultLimit  int
	MaxLimit      int
	InjectHints   bool
	IVFFlatProbes int
}

type InternalConfig struct {
	SharedSecret string
	MaxSkew      time.Duration
}

type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
	ProductTTL    time.Duration
	SimilarTTL    time.Duration
}

type AnalyticsConfig struct {
	QueueSize    int
	Workers      int
	WriteTimeout time.Duration
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	CloudFrontURL   string
}

type BuildConfig struct {
	Version string
	Commit  string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:           getEnv("API_PORT", "3001"),
			Host:           getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:    getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:   getEnvAsInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:    getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),
		},
		Database: DatabaseConfig{
			URL:           getEnv("VECTOR_DB_URL", ""),
			Host:          getEnv("DB_HOST", ""),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", ""),
			Database:      getEnv("DB_NAME", "product_search"),
			SSLMode:       getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:  getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxLifetime:   getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:      getEnv("DB_LOG_LEVEL", "warn"),
			SlowThreshold: getEnvAsDuration("DB_SLOW_THRESHOLD", 500*time.Millisecond),
			QueryTimeout:  getEnvAsDuration("DB_QUERY_TIMEOUT", 5*time.Second),
		},
		Embedding: EmbeddingConfig{
			APIKey:     getEnv("OPENAI_API_KEY", ""),
			BaseURL:    getEnv("OPENAI_BASE_URL", ""),
			Model:      getEnv("EMBED_MODEL", "text-embedding-3-small"),
			Dimensions: getEnvAsInt("EMBED_DIMENSIONS", 1536),
			Timeout:    getEnvAsDuration("EMBED_TIMEOUT", 10*time.Second),
			ImageModel: getEnv("IMAGE_MODEL", "gpt-image-1"),
		},
		Search: SearchConfig{
			DefaultLimit:  getEnvAsInt("SEARCH_DEFAULT_LIMIT", 10),
			MaxLimit:      getEnvAsInt("SEARCH_MAX_LIMIT", 500),
			InjectHints:   getEnvAsBool("SEARCH_INJECT_HINTS", false),
			IVFFlatProbes: getEnvAsInt("IVFFLAT_PROBES", 10),
		},
		Internal: InternalConfig{
			SharedSecret: getEnv("INTERNAL_SHARED_SECRET", ""),
			MaxSkew:      time.Duration(getEnvAsInt("INTERNAL_MAX_SKEW_MS", 2*60*1000)) * time.Millisecond,
		},
		Cache: CacheConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			KeyPrefix:     getEnv("CACHE_KEY_PREFIX", "product-search:"),
			ProductTTL:    getEnvAsDuration("CACHE_PRODUCT_TTL", 60*time.Second),
			SimilarTTL:    getEnvAsDuration("CACHE_SIMILAR_TTL", 30*time.Second),
		},
		Analytics: AnalyticsConfig{
			QueueSize:    getEnvAsInt("ANALYTICS_QUEUE_SIZE", 256),
			Workers:      getEnvAsInt("ANALYTICS_WORKERS", 2),
			WriteTimeout: getEnvAsDuration("ANALYTICS_WRITE_TIMEOUT", 2*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 10),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", ""),
			CloudFrontURL:   getEnv("AWS_CLOUDFRONT_URL", ""),
		},
		Build: BuildConfig{
			Version: getEnv("BUILD_VERSION", "dev"),
			Commit:  getEnv("BUILD_COMMIT", "local"),
		},
	}

	return config, config.Validate()
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// InternalSigningEnabled reports whether the shared secret is long enough to
// verify proxy signatures.
func (c *Config) InternalSigningEnabled() bool {
	return len(c.Internal.SharedSecret) >= minSharedSecretLen
}

// Validate collects every missing or invalid setting so a bad deployment
// fails once, at boot, with the full list.
func (c *Config) Validate() error {
	var errs []error

	if c.Embedding.APIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required"))
	}
	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("EMBED_DIMENSIONS must be positive, got %d", c.Embedding.Dimensions))
	}
	if c.Database.URL == "" && c.Database.Host == "" {
		errs = append(errs, errors.New("VECTOR_DB_URL or DB_HOST is required"))
	}
	if c.Search.MaxLimit < 1 {
		errs = append(errs, errors.New("SEARCH_MAX_LIMIT must be at least 1"))
	}
	if c.Internal.MaxSkew <= 0 {
		errs = append(errs, errors.New("INTERNAL_MAX_SKEW_MS must be positive"))
	}

	if c.IsProduction() {
		if len(c.Internal.SharedSecret) < minSharedSecretLen {
			errs = append(errs, fmt.Errorf("INTERNAL_SHARED_SECRET must be at least %d characters in production", minSharedSecretLen))
		}
		if c.Database.URL == "" && c.Database.Password == "" {
			errs = append(errs, errors.New("database password is required in production"))
		}
	}

	return errors.Join(errs...)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
