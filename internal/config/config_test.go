package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8081" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.DataBackend != "memory" {
		t.Errorf("DataBackend = %q", cfg.DataBackend)
	}
	if cfg.CacheSize != 256 || cfg.CacheTTL != 30*time.Second {
		t.Errorf("cache defaults = %d, %v", cfg.CacheSize, cfg.CacheTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "mongo")
	t.Setenv("MONGO_URI", "mongodb+srv://cluster.example.net")
	t.Setenv("MONGO_DATABASE", "spendwise_prod")
	t.Setenv("CACHE_TTL", "2m")

	cfg := Load()
	if cfg.Port != "9090" || cfg.DataBackend != "mongo" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.MongoURI != "mongodb+srv://cluster.example.net" || cfg.MongoDatabase != "spendwise_prod" {
		t.Errorf("mongo settings not applied: %+v", cfg)
	}
	if cfg.CacheTTL != 2*time.Minute {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestValidateAccumulatesErrors(t *testing.T) {
	cfg := Load()
	cfg.Port = "not-a-port"
	cfg.DataBackend = "postgres"
	cfg.RateLimitPerMinute = 0
	cfg.LogLevel = "verbose"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	msg := err.Error()
	for _, want := range []string{"invalid port", "invalid data backend", "invalid rate limit", "invalid log level"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error missing %q:\n%s", want, msg)
		}
	}
}

func TestValidateMongoBackend(t *testing.T) {
	cfg := Load()
	cfg.DataBackend = "mongo"
	cfg.MongoURI = "http://wrong-scheme"
	cfg.MongoDatabase = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	if !strings.Contains(err.Error(), "Mongo URI scheme") {
		t.Errorf("missing scheme error: %v", err)
	}
	if !strings.Contains(err.Error(), "Mongo database name") {
		t.Errorf("missing database error: %v", err)
	}
}
