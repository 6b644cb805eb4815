package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-based settings. DatabaseURL, BrokerURL and
// RedisAddress are all optional: the service runs fully offline from the local
// state directory when they are absent.
type Config struct {
	ServerAddress string
	StateDir      string

	DatabaseURL string

	BrokerURL   string
	TopicPrefix string

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	EventTimezone string
	EventDates    []string

	NotifyInterval time.Duration
}

// Load reads configuration from environment variables, consulting a local
// .env file first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddress: os.Getenv("SERVER_ADDRESS"),
		StateDir:      os.Getenv("STATE_DIR"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		BrokerURL:     os.Getenv("MQTT_BROKER_URL"),
		TopicPrefix:   os.Getenv("MQTT_TOPIC_PREFIX"),
		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		EventTimezone: os.Getenv("EVENT_TIMEZONE"),
	}
	if cfg.ServerAddress == "" {
		cfg.ServerAddress = ":8080"
	}
	if cfg.StateDir == "" {
		cfg.StateDir = "./state"
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "showdesk"
	}
	if cfg.EventTimezone == "" {
		cfg.EventTimezone = "America/Los_Angeles"
	}

	dates := os.Getenv("EVENT_DATES")
	if dates == "" {
		return nil, fmt.Errorf("EVENT_DATES is required (comma-separated YYYY-MM-DD)")
	}
	for _, d := range strings.Split(dates, ",") {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, fmt.Errorf("invalid event date %q: %w", d, err)
		}
		cfg.EventDates = append(cfg.EventDates, d)
	}
	if len(cfg.EventDates) == 0 {
		return nil, fmt.Errorf("EVENT_DATES is required (comma-separated YYYY-MM-DD)")
	}

	cfg.NotifyInterval = 30 * time.Second
	if v := os.Getenv("NOTIFY_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid NOTIFY_INTERVAL: %w", err)
		}
		cfg.NotifyInterval = d
	}

	return cfg, nil
}
