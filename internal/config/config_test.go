package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "KAFKA_BROKERS", "REDIS_URL", "DEDUP_TTL_SEC", "LOG_LEVEL", "WEBHOOK_PATH"} {
		t.Setenv(key, "")
	}
	c := Load()
	if c.HTTPPort != "8080" {
		t.Fatalf("HTTPPort = %q, want 8080", c.HTTPPort)
	}
	if c.WebhookPath != "/webhook" {
		t.Fatalf("WebhookPath = %q", c.WebhookPath)
	}
	if c.KafkaBrokers != nil {
		t.Fatalf("KafkaBrokers = %v, want nil", c.KafkaBrokers)
	}
	if c.DedupTTL != 300 {
		t.Fatalf("DedupTTL = %d, want 300", c.DedupTTL)
	}
	if c.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", c.LogLevel)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")
	t.Setenv("DEDUP_TTL_SEC", "not-a-number")
	t.Setenv("EVENT_BUFFER", "16")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("TODO_APP_ID", "app-1")

	c := Load()
	if want := []string{"a:9092", "b:9092"}; !reflect.DeepEqual(c.KafkaBrokers, want) {
		t.Fatalf("KafkaBrokers = %v, want %v", c.KafkaBrokers, want)
	}
	if c.DedupTTL != 300 {
		t.Fatalf("DedupTTL = %d, want fallback 300", c.DedupTTL)
	}
	if c.EventBuffer != 16 {
		t.Fatalf("EventBuffer = %d, want 16", c.EventBuffer)
	}
	if c.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", c.LogLevel)
	}
	if c.AppID != "app-1" {
		t.Fatalf("AppID = %q", c.AppID)
	}
}

func TestOverride(t *testing.T) {
	Override(&Config{HTTPPort: "9999"})
	if got := Get().HTTPPort; got != "9999" {
		t.Fatalf("Get().HTTPPort = %q, want 9999", got)
	}
}
