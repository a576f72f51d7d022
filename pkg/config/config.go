package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Price sources accepted by RRG_SOURCE
const (
	SourceYahoo    = "yahoo"
	SourceNaver    = "naver"
	SourcePostgres = "postgres"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Analysis defaults
	RRG RRGConfig

	// Price fetching
	Fetch FetchConfig

	// Database (postgres price source only)
	Database DatabaseConfig

	// Redis (price cache)
	Redis RedisConfig

	// External APIs
	Yahoo YahooConfig
	Naver NaverConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RRGConfig holds analysis defaults used when a request leaves a parameter empty
type RRGConfig struct {
	Source        string // yahoo, naver, postgres
	Benchmark     string
	LookbackDays  int
	TailLength    int
	WatchlistFile string
}

// FetchConfig holds price-fetch tuning
type FetchConfig struct {
	Timeout     time.Duration
	Concurrency int
	RatePerSec  int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	PriceTTL time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// YahooConfig holds Yahoo Finance chart API configuration
type YahooConfig struct {
	BaseURL string
}

// NaverConfig holds Naver Finance configuration
type NaverConfig struct {
	BaseURL  string
	ChartURL string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		RRG: RRGConfig{
			Source:        getEnv("RRG_SOURCE", SourceYahoo),
			Benchmark:     getEnv("RRG_BENCHMARK", "^NSEI"),
			LookbackDays:  getEnvAsInt("RRG_LOOKBACK_DAYS", 150),
			TailLength:    getEnvAsInt("RRG_TAIL_LENGTH", 15),
			WatchlistFile: getEnv("RRG_WATCHLIST_FILE", "configs/watchlists.yaml"),
		},

		Fetch: FetchConfig{
			Timeout:     getEnvAsDuration("FETCH_TIMEOUT", "30s"),
			Concurrency: getEnvAsInt("FETCH_CONCURRENCY", 8),
			RatePerSec:  getEnvAsInt("FETCH_RATE_PER_SEC", 5),
		},

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			PriceTTL: getEnvAsDuration("PRICE_CACHE_TTL", "6h"),
		},

		// External APIs
		Yahoo: YahooConfig{
			BaseURL: getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		},

		Naver: NaverConfig{
			BaseURL:  getEnv("NAVER_BASE_URL", "https://finance.naver.com"),
			ChartURL: getEnv("NAVER_CHART_URL", "https://fchart.stock.naver.com"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.RRG.Source {
	case SourceYahoo, SourceNaver:
	case SourcePostgres:
		// Database URL is required only when prices come from Postgres
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when RRG_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("RRG_SOURCE must be one of: yahoo, naver, postgres")
	}

	if c.RRG.LookbackDays <= 0 {
		return fmt.Errorf("RRG_LOOKBACK_DAYS must be positive")
	}

	if c.Fetch.Concurrency <= 0 {
		return fmt.Errorf("FETCH_CONCURRENCY must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
