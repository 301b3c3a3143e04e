// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the storefront service
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Redis    RedisConfig
	Backend  BackendConfig
	Session  SessionConfig
	Cart     CartConfig
	Catalog  CatalogConfig
	Checkout CheckoutConfig
	Security SecurityConfig
	Upload   UploadConfig
	Logging  LoggingConfig
	Company  CompanyConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
	PublicURL   string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// BackendConfig describes the commerce API every page reads from
type BackendConfig struct {
	BaseURL        string
	Timeout        time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// SessionConfig contains the browser session cookie configuration
type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// CartConfig contains cart persistence configuration
type CartConfig struct {
	Namespace string
	TTL       time.Duration
}

// CatalogConfig contains listing and lookup configuration
type CatalogConfig struct {
	PageSize       int
	CacheTTL       time.Duration
	SearchDebounce time.Duration
}

// CheckoutConfig contains pricing defaults
type CheckoutConfig struct {
	DefaultShippingFee int64
	CODAdvance         int64
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
}

// UploadConfig contains payment screenshot upload limits
type UploadConfig struct {
	MaxSize           int64
	AllowedExtensions []string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// CompanyConfig is printed on order receipts
type CompanyConfig struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Casemandu Storefront"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
			PublicURL:   strings.TrimRight(getEnv("APP_PUBLIC_URL", "https://casemandu.com.np"), "/"),
		},
		Server: ServerConfig{
			Port:           getEnv("APP_PORT", "8080"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 75*time.Second),
		},
		Redis: RedisConfig{
			Enabled:      getEnvAsBool("REDIS_ENABLED", true),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Backend: BackendConfig{
			BaseURL:        strings.TrimRight(getEnv("BACKEND_API_URL", ""), "/"),
			Timeout:        getEnvAsDuration("BACKEND_TIMEOUT", 15*time.Second),
			RetryAttempts:  getEnvAsInt("BACKEND_RETRY_ATTEMPTS", 5),
			RetryBaseDelay: getEnvAsDuration("BACKEND_RETRY_BASE_DELAY", 3*time.Second),
			RetryMaxDelay:  getEnvAsDuration("BACKEND_RETRY_MAX_DELAY", 15*time.Second),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_SECRET", "change-me-storefront-session-secret-key"),
			CookieName: getEnv("SESSION_COOKIE_NAME", "casemandu_session"),
			TTL:        getEnvAsDuration("SESSION_TTL", 90*24*time.Hour),
			Secure:     getEnvAsBool("SESSION_COOKIE_SECURE", false),
		},
		Cart: CartConfig{
			Namespace: getEnv("CART_NAMESPACE", "casemandu"),
			TTL:       getEnvAsDuration("CART_TTL", 90*24*time.Hour),
		},
		Catalog: CatalogConfig{
			PageSize:       getEnvAsInt("CATALOG_PAGE_SIZE", 30),
			CacheTTL:       getEnvAsDuration("CATALOG_CACHE_TTL", 5*time.Minute),
			SearchDebounce: getEnvAsDuration("CATALOG_SEARCH_DEBOUNCE", 500*time.Millisecond),
		},
		Checkout: CheckoutConfig{
			DefaultShippingFee: getEnvAsInt64("CHECKOUT_DEFAULT_SHIPPING", 150),
			CODAdvance:         getEnvAsInt64("CHECKOUT_COD_ADVANCE", 300),
		},
		Security: SecurityConfig{
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 300),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},
		Upload: UploadConfig{
			MaxSize:           getEnvAsInt64("UPLOAD_MAX_SIZE", 5<<20), // 5MB
			AllowedExtensions: getEnvAsSlice("UPLOAD_ALLOWED_EXTENSIONS", []string{"jpg", "jpeg", "png", "webp", "heic"}),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Company: CompanyConfig{
			Name:    getEnv("COMPANY_NAME", "Casemandu"),
			Address: getEnv("COMPANY_ADDRESS", "Kathmandu, Nepal"),
			Phone:   getEnv("COMPANY_PHONE", ""),
			Email:   getEnv("COMPANY_EMAIL", ""),
			Website: getEnv("COMPANY_WEBSITE", "https://casemandu.com.np"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_API_URL is required")
	}
	if c.Backend.RetryAttempts <= 0 {
		return fmt.Errorf("BACKEND_RETRY_ATTEMPTS must be positive")
	}
	if c.Backend.RetryBaseDelay <= 0 {
		return fmt.Errorf("BACKEND_RETRY_BASE_DELAY must be positive")
	}
	if c.Backend.RetryMaxDelay < c.Backend.RetryBaseDelay {
		return fmt.Errorf("BACKEND_RETRY_MAX_DELAY must not be shorter than BACKEND_RETRY_BASE_DELAY")
	}

	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters long")
	}

	if c.Redis.Enabled && c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required when Redis is enabled")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions for environment variable parsing

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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
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

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
