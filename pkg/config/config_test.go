package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}

	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}

	if got := cfg.EventStore.RequestTimeout; got != 30*time.Second {
		t.Fatalf("expected 30s request timeout, got %v", got)
	}

	if got := cfg.Cache.TTL; got != 5*time.Minute {
		t.Fatalf("expected 5m cache ttl, got %v", got)
	}

	cutover := time.Date(2025, 1, 26, 0, 0, 0, 0, time.UTC)
	if !cfg.Historical.Cutover.Time().Equal(cutover) {
		t.Fatalf("unexpected cutover date %v", cfg.Historical.Cutover.Time())
	}
	liveStart := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	if !cfg.Historical.LiveStart.Time().Equal(liveStart) {
		t.Fatalf("unexpected live start date %v", cfg.Historical.LiveStart.Time())
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsInvertedHistoricalDates(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvHistoricalLiveStart, "2025-02-01")

	if _, err := Load(); err == nil {
		t.Fatal("expected live start after cutover to fail validation")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvEventStoreEndpoint, "https://search.internal:9200")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "PRODUCTION"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}

func TestDateDecode(t *testing.T) {
	var d Date
	if err := d.Decode("2024-10-01"); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	want := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	if !d.Time().Equal(want) {
		t.Fatalf("expected %v, got %v", want, d.Time())
	}
	if err := d.Decode("not-a-date"); err == nil {
		t.Fatal("expected invalid date to fail")
	}
}
