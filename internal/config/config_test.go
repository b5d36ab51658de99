package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BASE_URL", "")
	t.Setenv("VALID_EMAIL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://petfriends.skillfactory.ru" {
		t.Fatalf("unexpected base url %q", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("unexpected request timeout %v", cfg.RequestTimeout)
	}
	if cfg.HasValidCredentials() {
		t.Fatalf("expected no valid credentials by default")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("BASE_URL", "http://localhost:8080/")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("VALID_EMAIL", "qa@example.com")
	t.Setenv("VALID_PASSWORD", "secret")
	t.Setenv("STRICT_DEFECTS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("unexpected request timeout %v", cfg.RequestTimeout)
	}
	if !cfg.HasValidCredentials() {
		t.Fatalf("expected valid credentials from env")
	}
	if !cfg.StrictDefects {
		t.Fatalf("expected strict defects from env")
	}
}

func TestNormalizeRejectsRelativeBaseURL(t *testing.T) {
	cfg := Config{
		BaseURL:               "petfriends/api",
		RequestTimeoutSeconds: 1,
		HistoryTTLSeconds:     1,
		HistoryCleanupSeconds: 1,
	}
	if err := cfg.normalize(); err == nil {
		t.Fatalf("expected error for relative base url")
	}
}

func TestNormalizeRejectsNonPositiveTimeout(t *testing.T) {
	cfg := Config{
		BaseURL:               "https://example.com",
		RequestTimeoutSeconds: 0,
		HistoryTTLSeconds:     1,
		HistoryCleanupSeconds: 1,
	}
	if err := cfg.normalize(); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
}
