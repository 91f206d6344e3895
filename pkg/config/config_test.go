package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PLUGGY_BASE_URL", "PLUGGY_PAGE_SIZE", "PLUGGY_KEY_CACHE_MINUTES",
		"REDIS_ADDR", "RABBITMQ_URL", "SYNC_SCHEDULE", "SYNC_REFRESH_BALANCES",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Pluggy.BaseURL != "https://api.pluggy.ai" {
		t.Fatalf("unexpected base url %q", cfg.Pluggy.BaseURL)
	}
	if cfg.Pluggy.PageSize != 500 {
		t.Fatalf("expected page size 500, got %d", cfg.Pluggy.PageSize)
	}
	if cfg.Pluggy.KeyCacheTTL != 0 {
		t.Fatalf("expected key cache disabled by default, got %s", cfg.Pluggy.KeyCacheTTL)
	}
	if cfg.Redis.Addr != "" || cfg.RabbitMQ.URL != "" {
		t.Fatalf("expected optional brokers disabled by default")
	}
	if !cfg.Sync.RefreshBalances {
		t.Fatalf("expected balance refresh on by default")
	}
	if cfg.Sync.Schedule != "@every 6h" {
		t.Fatalf("unexpected schedule %q", cfg.Sync.Schedule)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PLUGGY_PAGE_SIZE", "100")
	t.Setenv("PLUGGY_KEY_CACHE_MINUTES", "90")
	t.Setenv("SYNC_REFRESH_BALANCES", "false")
	t.Setenv("SYNC_TIMEOUT_SECONDS", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Pluggy.PageSize != 100 {
		t.Fatalf("expected page size 100, got %d", cfg.Pluggy.PageSize)
	}
	if cfg.Pluggy.KeyCacheTTL != 90*time.Minute {
		t.Fatalf("expected 90m key ttl, got %s", cfg.Pluggy.KeyCacheTTL)
	}
	if cfg.Sync.RefreshBalances {
		t.Fatalf("expected balance refresh disabled")
	}
	if cfg.Sync.Timeout != time.Minute {
		t.Fatalf("expected 1m sync timeout, got %s", cfg.Sync.Timeout)
	}
}

func TestLoad_InvalidPageSizeFallsBack(t *testing.T) {
	t.Setenv("PLUGGY_PAGE_SIZE", "-3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Pluggy.PageSize != 500 {
		t.Fatalf("expected fallback page size 500, got %d", cfg.Pluggy.PageSize)
	}
}
