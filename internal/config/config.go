// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds all configuration for our application
type Config struct {
	App        AppConfig
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Session    SessionConfig
	Restaurant RestaurantConfig
	Catalog    CatalogConfig
	WhatsApp   WhatsAppConfig
	Security   SecurityConfig
	Logging    LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	KeyPrefix    string
}

// SessionConfig contains the visitor session cookie configuration
type SessionConfig struct {
	Secret     string
	CookieName string
	CookieTTL  time.Duration
	Secure     bool
}

// RestaurantConfig contains the table, cart and order rules
type RestaurantConfig struct {
	Name            string
	MaxTable        int
	TableSessionTTL time.Duration
	CartMaxItems    int
	CartMaxQuantity int
	OrderHistoryCap int
	PopularCount    int
	Timezone        string
}

// CatalogConfig tells where the menu is read from
type CatalogConfig struct {
	Source string // "file" or "postgres"
	Path   string
	Seed   bool
}

// WhatsAppConfig contains the messaging sink configuration
type WhatsAppConfig struct {
	Phone         string
	BaseURL       string
	MaxLinkLength int
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Mesa Pedidos"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
		},
		Server: ServerConfig{
			Port:         getEnv("APP_PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "mesa_pedidos"),
			User:         getEnv("DB_USER", "mesa"),
			Password:     getEnv("DB_PASSWORD", "mesa"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
			KeyPrefix:    getEnv("REDIS_KEY_PREFIX", "mesa"),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_SECRET", "change-me-session-secret-at-least-32-chars"),
			CookieName: getEnv("SESSION_COOKIE_NAME", "mesa_session"),
			CookieTTL:  getEnvAsDuration("SESSION_COOKIE_TTL", 24*time.Hour),
			Secure:     getEnvAsBool("SESSION_COOKIE_SECURE", false),
		},
		Restaurant: RestaurantConfig{
			Name:            getEnv("RESTAURANT_NAME", "Restaurante"),
			MaxTable:        getEnvAsInt("TABLE_MAX", 50),
			TableSessionTTL: getEnvAsDuration("TABLE_SESSION_TTL", 4*time.Hour),
			CartMaxItems:    getEnvAsInt("CART_MAX_ITEMS", 30),
			CartMaxQuantity: getEnvAsInt("CART_MAX_QUANTITY", 50),
			OrderHistoryCap: getEnvAsInt("ORDER_HISTORY_CAP", 50),
			PopularCount:    getEnvAsInt("POPULAR_COUNT", 6),
			Timezone:        getEnv("RESTAURANT_TIMEZONE", "America/Sao_Paulo"),
		},
		Catalog: CatalogConfig{
			Source: getEnv("CATALOG_SOURCE", "file"),
			Path:   getEnv("CATALOG_PATH", "data/cardapio.yaml"),
			Seed:   getEnvAsBool("CATALOG_SEED", true),
		},
		WhatsApp: WhatsAppConfig{
			Phone:         getEnv("WHATSAPP_PHONE", ""),
			BaseURL:       getEnv("WHATSAPP_BASE_URL", "https://wa.me"),
			MaxLinkLength: getEnvAsInt("WHATSAPP_MAX_LINK_LENGTH", 4096),
		},
		Security: SecurityConfig{
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
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
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters long")
	}

	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	switch c.Catalog.Source {
	case "file":
		if c.Catalog.Path == "" {
			return fmt.Errorf("CATALOG_PATH is required when CATALOG_SOURCE=file")
		}
	case "postgres":
		if c.Database.Host == "" || c.Database.Name == "" || c.Database.User == "" {
			return fmt.Errorf("DB_HOST, DB_NAME and DB_USER are required when CATALOG_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("CATALOG_SOURCE must be file or postgres, got %q", c.Catalog.Source)
	}

	if c.Restaurant.MaxTable < 1 {
		return fmt.Errorf("TABLE_MAX must be positive")
	}
	if c.Restaurant.CartMaxItems < 1 || c.Restaurant.CartMaxQuantity < 1 {
		return fmt.Errorf("CART_MAX_ITEMS and CART_MAX_QUANTITY must be positive")
	}
	if c.Restaurant.OrderHistoryCap < 1 {
		return fmt.Errorf("ORDER_HISTORY_CAP must be positive")
	}
	if _, err := time.LoadLocation(c.Restaurant.Timezone); err != nil {
		return fmt.Errorf("RESTAURANT_TIMEZONE is invalid: %w", err)
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

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location returns the restaurant time zone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Restaurant.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
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
		return strings.Split(value, ",")
	}
	return defaultValue
}
