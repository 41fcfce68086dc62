package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "host=localhost user=test password=test dbname=test port=5432 sslmode=disable")
	t.Setenv("WEBHOOK_SECRET", "shared-secret")
	t.Setenv("FCM_SERVER_KEY", "AAAAtest-server-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIPort != 8080 {
		t.Errorf("APIPort = %d, want 8080", cfg.APIPort)
	}
	if cfg.MetricsPort != 9090 {
		t.Errorf("MetricsPort = %d, want 9090", cfg.MetricsPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
	if cfg.SignatureEnforce {
		t.Error("SignatureEnforce should default to false")
	}
	if cfg.DedupWindowSeconds != 300 {
		t.Errorf("DedupWindowSeconds = %d, want 300", cfg.DedupWindowSeconds)
	}
	if cfg.FCMEndpoint != "https://fcm.googleapis.com/fcm/send" {
		t.Errorf("FCMEndpoint = %s, want FCM send URL", cfg.FCMEndpoint)
	}
	if cfg.PushTimeoutSeconds != 10 {
		t.Errorf("PushTimeoutSeconds = %d, want 10", cfg.PushTimeoutSeconds)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SIGNATURE_ENFORCE", "true")
	t.Setenv("DEDUP_WINDOW_SECONDS", "120")
	t.Setenv("SKIP_STATUSES", "pending, Checkout-Draft")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIPort != 9999 {
		t.Errorf("APIPort = %d, want 9999", cfg.APIPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if !cfg.SignatureEnforce {
		t.Error("SignatureEnforce = false, want true")
	}
	if cfg.DedupWindow() != 2*time.Minute {
		t.Errorf("DedupWindow() = %v, want 2m", cfg.DedupWindow())
	}

	skip := cfg.SkipStatusSet()
	if _, ok := skip["pending"]; !ok {
		t.Error("SkipStatusSet should contain pending")
	}
	if _, ok := skip["checkout-draft"]; !ok {
		t.Error("SkipStatusSet should lowercase and trim entries")
	}
	if len(skip) != 2 {
		t.Errorf("SkipStatusSet size = %d, want 2", len(skip))
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_DSN", "host=localhost")
	t.Setenv("WEBHOOK_SECRET", "shared-secret")
	t.Setenv("FCM_SERVER_KEY", "placeholder")
	os.Unsetenv("FCM_SERVER_KEY")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing required env vars, got nil")
	}
}

func TestConfig_DurationFallbacks(t *testing.T) {
	cfg := Config{DedupWindowSeconds: 0, PushTimeoutSeconds: -1}

	if cfg.DedupWindow() != 5*time.Minute {
		t.Errorf("DedupWindow() = %v, want 5m fallback", cfg.DedupWindow())
	}
	if cfg.PushTimeout() != 10*time.Second {
		t.Errorf("PushTimeout() = %v, want 10s fallback", cfg.PushTimeout())
	}
}

func TestConfig_EmptySkipStatuses(t *testing.T) {
	cfg := Config{SkipStatuses: ""}

	if len(cfg.SkipStatusSet()) != 0 {
		t.Errorf("SkipStatusSet() = %v, want empty", cfg.SkipStatusSet())
	}
}
