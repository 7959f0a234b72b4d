package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Analytics engine defaults
	Analytics AnalyticsConfig

	// Benchmark source
	Benchmark BenchmarkConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
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

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// AnalyticsConfig holds the defaults applied when a request does not override them
type AnalyticsConfig struct {
	RiskFreeRate         float64       // 연 무위험 수익률 (percent, 2.0 = 2%)
	DefaultCapital       float64       // 초기 자본 역산 실패 시 사용
	CorrelationMethod    string        // pearson, spearman
	CorrelationAlignment string        // common, zero-fill
	SuperBlockAlignment  string        // intersection, union, earliest-common, latest-common
	SnapshotTTL          time.Duration // Redis snapshot cache TTL
	Workers              int           // 컴포넌트 통계 병렬 처리 수
}

// BenchmarkConfig holds the benchmark index source configuration
type BenchmarkConfig struct {
	Symbol    string // KOSPI, KOSDAQ, KPI200
	BaseURL   string
	RateLimit float64 // requests per second
}

// SchedulerConfig holds the snapshot refresh job configuration
type SchedulerConfig struct {
	SnapshotRefresh string   // cron expression with seconds
	BlockIDs        []string // 사전 계산 대상 블록
}

var (
	validCorrelationMethods    = []string{"pearson", "spearman"}
	validCorrelationAlignments = []string{"common", "zero-fill"}
	validSuperBlockAlignments  = []string{"intersection", "union", "earliest-common", "latest-common"}
)

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Analytics: AnalyticsConfig{
			RiskFreeRate:         getEnvAsFloat("ANALYTICS_RISK_FREE_RATE", 2.0),
			DefaultCapital:       getEnvAsFloat("ANALYTICS_DEFAULT_CAPITAL", 10000),
			CorrelationMethod:    strings.ToLower(getEnv("ANALYTICS_CORRELATION_METHOD", "pearson")),
			CorrelationAlignment: strings.ToLower(getEnv("ANALYTICS_CORRELATION_ALIGNMENT", "common")),
			SuperBlockAlignment:  strings.ToLower(getEnv("ANALYTICS_SUPERBLOCK_ALIGNMENT", "intersection")),
			SnapshotTTL:          getEnvAsDuration("ANALYTICS_SNAPSHOT_TTL", "6h"),
			Workers:              getEnvAsInt("ANALYTICS_WORKERS", 4),
		},

		Benchmark: BenchmarkConfig{
			Symbol:    getEnv("BENCHMARK_SYMBOL", "KOSPI"),
			BaseURL:   getEnv("BENCHMARK_BASE_URL", "https://finance.naver.com"),
			RateLimit: getEnvAsFloat("BENCHMARK_RATE_LIMIT", 5),
		},

		Scheduler: SchedulerConfig{
			SnapshotRefresh: getEnv("SCHEDULER_SNAPSHOT_REFRESH", "0 0 18 * * *"),
			BlockIDs:        getEnvAsList("SCHEDULER_BLOCK_IDS"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration with every default applied and no environment lookups.
// CLI 파일 입력 모드와 테스트에서 사용
func Default() *Config {
	return &Config{
		Port: "8089",
		Env:  "development",
		Database: DatabaseConfig{
			MaxConns:        10,
			MinConns:        2,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
		Redis: RedisConfig{Host: "localhost", Port: "6379"},
		Analytics: AnalyticsConfig{
			RiskFreeRate:         2.0,
			DefaultCapital:       10000,
			CorrelationMethod:    "pearson",
			CorrelationAlignment: "common",
			SuperBlockAlignment:  "intersection",
			SnapshotTTL:          6 * time.Hour,
			Workers:              4,
		},
		Benchmark: BenchmarkConfig{
			Symbol:    "KOSPI",
			BaseURL:   "https://finance.naver.com",
			RateLimit: 5,
		},
		Scheduler: SchedulerConfig{SnapshotRefresh: "0 0 18 * * *"},
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Analytics.RiskFreeRate <= -100 || c.Analytics.RiskFreeRate > 100 {
		return fmt.Errorf("ANALYTICS_RISK_FREE_RATE must be in (-100, 100], got %v", c.Analytics.RiskFreeRate)
	}
	if c.Analytics.DefaultCapital <= 0 {
		return fmt.Errorf("ANALYTICS_DEFAULT_CAPITAL must be > 0")
	}
	if !contains(validCorrelationMethods, c.Analytics.CorrelationMethod) {
		return fmt.Errorf("ANALYTICS_CORRELATION_METHOD must be one of: %s", strings.Join(validCorrelationMethods, ", "))
	}
	if !contains(validCorrelationAlignments, c.Analytics.CorrelationAlignment) {
		return fmt.Errorf("ANALYTICS_CORRELATION_ALIGNMENT must be one of: %s", strings.Join(validCorrelationAlignments, ", "))
	}
	if !contains(validSuperBlockAlignments, c.Analytics.SuperBlockAlignment) {
		return fmt.Errorf("ANALYTICS_SUPERBLOCK_ALIGNMENT must be one of: %s", strings.Join(validSuperBlockAlignments, ", "))
	}
	if c.Analytics.Workers <= 0 {
		return fmt.Errorf("ANALYTICS_WORKERS must be > 0")
	}
	if c.Benchmark.RateLimit <= 0 {
		return fmt.Errorf("BENCHMARK_RATE_LIMIT must be > 0")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

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

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
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
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
