package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8089" {
		t.Errorf("Expected Port to be 8089, got %s", cfg.Port)
	}

	if cfg.Analytics.RiskFreeRate != 2.0 {
		t.Errorf("Expected RiskFreeRate to be 2.0, got %v", cfg.Analytics.RiskFreeRate)
	}

	if cfg.Analytics.DefaultCapital != 10000 {
		t.Errorf("Expected DefaultCapital to be 10000, got %v", cfg.Analytics.DefaultCapital)
	}

	if cfg.Analytics.SnapshotTTL != 6*time.Hour {
		t.Errorf("Expected SnapshotTTL to be 6h, got %v", cfg.Analytics.SnapshotTTL)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("ANALYTICS_RISK_FREE_RATE", "4.5")
	t.Setenv("ANALYTICS_CORRELATION_METHOD", "Spearman")
	t.Setenv("ANALYTICS_SUPERBLOCK_ALIGNMENT", "union")
	t.Setenv("SCHEDULER_BLOCK_IDS", "alpha, beta,,gamma")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}
	if cfg.Analytics.RiskFreeRate != 4.5 {
		t.Errorf("Expected RiskFreeRate to be 4.5, got %v", cfg.Analytics.RiskFreeRate)
	}
	if cfg.Analytics.CorrelationMethod != "spearman" {
		t.Errorf("Expected CorrelationMethod to be spearman, got %s", cfg.Analytics.CorrelationMethod)
	}
	if cfg.Analytics.SuperBlockAlignment != "union" {
		t.Errorf("Expected SuperBlockAlignment to be union, got %s", cfg.Analytics.SuperBlockAlignment)
	}
	if len(cfg.Scheduler.BlockIDs) != 3 || cfg.Scheduler.BlockIDs[2] != "gamma" {
		t.Errorf("Expected 3 block ids, got %v", cfg.Scheduler.BlockIDs)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"invalid env", func(c *Config) { c.Env = "invalid" }, true},
		{"unknown method", func(c *Config) { c.Analytics.CorrelationMethod = "kendall" }, true},
		{"unknown correlation alignment", func(c *Config) { c.Analytics.CorrelationAlignment = "outer" }, true},
		{"unknown superblock alignment", func(c *Config) { c.Analytics.SuperBlockAlignment = "all" }, true},
		{"non-positive capital", func(c *Config) { c.Analytics.DefaultCapital = 0 }, true},
		{"risk free rate too low", func(c *Config) { c.Analytics.RiskFreeRate = -100 }, true},
		{"zero workers", func(c *Config) { c.Analytics.Workers = 0 }, true},
		{"zero rate limit", func(c *Config) { c.Benchmark.RateLimit = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "2h")

	duration := getEnvAsDuration("TEST_DURATION", "1h")
	expected := 2 * time.Hour

	if duration != expected {
		t.Errorf("Expected duration to be %v, got %v", expected, duration)
	}

	t.Setenv("TEST_DURATION", "not-a-duration")
	if got := getEnvAsDuration("TEST_DURATION", "1h"); got != time.Hour {
		t.Errorf("Expected fallback duration 1h, got %v", got)
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.25")

	if value := getEnvAsFloat("TEST_FLOAT", 1); value != 0.25 {
		t.Errorf("Expected value to be 0.25, got %v", value)
	}

	t.Setenv("TEST_FLOAT", "abc")
	if value := getEnvAsFloat("TEST_FLOAT", 1); value != 1 {
		t.Errorf("Expected fallback value 1, got %v", value)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")

	value := getEnvAsBool("TEST_BOOL", false)
	if value != true {
		t.Errorf("Expected value to be true, got %v", value)
	}
}
