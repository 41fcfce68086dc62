package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN        string `env:"DATABASE_DSN,required=true"`
	RedisURL           string `env:"REDIS_URL"`
	WebhookSecret      string `env:"WEBHOOK_SECRET,required=true"`
	SignatureEnforce   bool   `env:"SIGNATURE_ENFORCE,default=false"`
	DedupWindowSeconds int    `env:"DEDUP_WINDOW_SECONDS,default=300"`
	SkipStatuses       string `env:"SKIP_STATUSES"`
	TemplateOverrides  string `env:"TEMPLATE_OVERRIDES_PATH"`
	FCMServerKey       string `env:"FCM_SERVER_KEY,required=true"`
	FCMEndpoint        string `env:"FCM_ENDPOINT,default=https://fcm.googleapis.com/fcm/send"`
	PushTimeoutSeconds int    `env:"PUSH_TIMEOUT_SECONDS,default=10"`
	APIPort            int    `env:"API_PORT,default=8080"`
	MetricsPort        int    `env:"METRICS_PORT,default=9090"`
	LogLevel           string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// DedupWindow returns the trailing deduplication window as a duration.
func (c *Config) DedupWindow() time.Duration {
	if c.DedupWindowSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.DedupWindowSeconds) * time.Second
}

// PushTimeout returns the push transport call timeout.
func (c *Config) PushTimeout() time.Duration {
	if c.PushTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.PushTimeoutSeconds) * time.Second
}

// SkipStatusSet parses the comma-separated skip-list into a lookup set.
// Statuses listed here are accepted and logged but never dispatched.
func (c *Config) SkipStatusSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, status := range strings.Split(c.SkipStatuses, ",") {
		status = strings.ToLower(strings.TrimSpace(status))
		if status != "" {
			set[status] = struct{}{}
		}
	}
	return set
}
