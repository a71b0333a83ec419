package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds application configuration from environment.
type Config struct {
	HTTPPort        string
	WebhookPath     string
	AppID           string
	AppSecret       string
	WebhookSecret   string
	APIURL          string
	RedisURL        string
	DedupTTL        int // seconds
	KafkaBrokers    []string
	KafkaTopic      string
	KafkaPartitions int
	EventBuffer     int
	LogLevel        string
}

var (
	cfg     *Config
	cfgOnce sync.Once
)

// Get returns the application config (loads once from env).
func Get() *Config {
	cfgOnce.Do(func() {
		cfg = Load()
	})
	return cfg
}

// Load reads a fresh Config from the environment without touching the cached one.
func Load() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		WebhookPath:     getEnv("WEBHOOK_PATH", "/webhook"),
		AppID:           os.Getenv("TODO_APP_ID"),
		AppSecret:       os.Getenv("TODO_APP_SECRET"),
		WebhookSecret:   os.Getenv("TODO_WEBHOOK_SECRET"),
		APIURL:          getEnv("WORKSPACE_API_URL", "https://api.watsonwork.ibm.com"),
		RedisURL:        os.Getenv("REDIS_URL"),
		DedupTTL:        getIntEnv("DEDUP_TTL_SEC", 300),
		KafkaBrokers:    getSliceEnv("KAFKA_BROKERS"),
		KafkaTopic:      getEnv("KAFKA_EVENT_TOPIC", "todo-events"),
		KafkaPartitions: getIntEnv("KAFKA_PARTITIONS", 1),
		EventBuffer:     getIntEnv("EVENT_BUFFER", 256),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
}

// Override replaces the cached config. main uses it after applying command line flags.
func Override(c *Config) {
	cfgOnce.Do(func() {})
	cfg = c
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}

// getSliceEnv splits a comma separated list; empty entries are dropped and an
// unset variable yields nil.
func getSliceEnv(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
