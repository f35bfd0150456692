package config

import (
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func load(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	return LoadFrom(envconfig.MapLookuper(env))
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"DATABASE_URL": "postgres://u:p@localhost:5432/db?sslmode=disable",
	})
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.Database.Driver != "pgx" {
		t.Fatalf("unexpected Database.Driver default: %q", cfg.Database.Driver)
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("unexpected Server.Address default: %q", cfg.Server.Address)
	}
	if cfg.Server.MetricsAddress != ":9090" {
		t.Fatalf("unexpected Server.MetricsAddress default: %q", cfg.Server.MetricsAddress)
	}
	if cfg.Carrier.ContentMax != 1600 {
		t.Fatalf("unexpected ContentMax default: %d", cfg.Carrier.ContentMax)
	}
	if cfg.Carrier.BaseURL != "https://api.twilio.com" {
		t.Fatalf("unexpected Carrier.BaseURL default: %q", cfg.Carrier.BaseURL)
	}
	if cfg.Pool.ResetInterval != 5*time.Minute || !cfg.Pool.ResetEnabled {
		t.Fatalf("unexpected pool reset defaults: %+v", cfg.Pool)
	}
	if cfg.Pool.DefaultDailyLimit != 200 {
		t.Fatalf("unexpected Pool.DefaultDailyLimit default: %d", cfg.Pool.DefaultDailyLimit)
	}
	if cfg.Campaign.DispatchConcurrency != 4 {
		t.Fatalf("unexpected DispatchConcurrency default: %d", cfg.Campaign.DispatchConcurrency)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("expected Redis disabled when REDIS_ADDR not set")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"DATABASE_DRIVER":     "sqlite3",
		"DATABASE_URL":        "file:dev.db",
		"REDIS_ADDR":          "localhost:6379",
		"REDIS_DB":            "2",
		"REDIS_TTL":           "1h",
		"TWILIO_ACCOUNT_SID":  "AC123",
		"TWILIO_AUTH_TOKEN":   "secret",
		"TWILIO_PHONE_NUMBER": "+15550009999",
		"TWILIO_TIMEOUT":      "3s",
		"POOL_RESET_ENABLED":  "false",
		"POOL_RESET_INTERVAL": "0s",
		"INSTANTLY_API_KEY":   "ik",
		"OPENAI_MODEL":        "gpt-4o",
	})
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if !cfg.Redis.Enabled() || cfg.Redis.DB != 2 || cfg.Redis.TTL != time.Hour {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.Carrier.DefaultNumber != "+15550009999" || cfg.Carrier.Timeout != 3*time.Second {
		t.Fatalf("unexpected carrier config: %+v", cfg.Carrier)
	}
	if cfg.Pool.ResetEnabled {
		t.Fatalf("expected pool reset disabled")
	}
	if cfg.Mailer.APIKey != "ik" || cfg.Composer.Model != "gpt-4o" {
		t.Fatalf("unexpected mailer/composer config: %+v %+v", cfg.Mailer, cfg.Composer)
	}
}

func TestLoadFrom_MissingDatabaseURL(t *testing.T) {
	_, err := load(t, map[string]string{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected error to mention DATABASE_URL, got: %v", err)
	}
}

func TestLoadFrom_InvalidInt(t *testing.T) {
	_, err := load(t, map[string]string{
		"DATABASE_URL":    "postgres://x",
		"SMS_CONTENT_MAX": "abc",
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "SMS_CONTENT_MAX") {
		t.Fatalf("expected error to mention SMS_CONTENT_MAX, got: %v", err)
	}
}

func TestLoadFrom_ParseErrorsNameTheVariable(t *testing.T) {
	cases := map[string]string{
		"REDIS_DB":           "two",
		"TWILIO_TIMEOUT":     "soon",
		"POOL_RESET_ENABLED": "maybe",
	}
	for key, value := range cases {
		_, err := load(t, map[string]string{
			"DATABASE_URL": "postgres://x",
			key:            value,
		})
		if err == nil {
			t.Fatalf("%s=%q: expected error", key, value)
		}
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected error to mention %s, got: %v", key, err)
		}
	}
}

func TestLoadFrom_ReportsEveryInvalidValue(t *testing.T) {
	_, err := load(t, map[string]string{
		"DATABASE_URL":                  "postgres://x",
		"DATABASE_DRIVER":               "mysql",
		"SMS_CONTENT_MAX":               "0",
		"CAMPAIGN_DISPATCH_CONCURRENCY": "-1",
		"POOL_RESET_INTERVAL":           "0s",
	})
	if err == nil {
		t.Fatalf("expected error")
	}

	msg := err.Error()
	for _, want := range []string{
		"DATABASE_DRIVER",
		"SMS_CONTENT_MAX",
		"CAMPAIGN_DISPATCH_CONCURRENCY",
		"POOL_RESET_INTERVAL",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected error to mention %s, got: %v", want, msg)
		}
	}
}
