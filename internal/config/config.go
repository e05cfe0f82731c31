// Package config reads settings from the environment, after loading a .env
// file from the working directory when one exists.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Client struct {
	BaseURL string
	// Timeout bounds one upload or probe. Zero leaves it unbounded.
	Timeout  time.Duration
	LogLevel string
}

type Store struct {
	Addr           string
	DatabaseURL    string
	VideoDir       string
	MaxUploadBytes int64
	LogLevel       string

	KafkaBrokers    []string
	KafkaTopic      string
	OutboxInterval  time.Duration
	OutboxBatchSize int
}

// OutboxEnabled reports whether stored-video events should be relayed.
// The outbox lives in postgres, so both postgres and kafka are required.
func (s Store) OutboxEnabled() bool {
	return s.DatabaseURL != "" && len(s.KafkaBrokers) > 0
}

func LoadClient() (Client, error) {
	_ = godotenv.Load()
	return clientFromEnv(os.Getenv)
}

func LoadStore() (Store, error) {
	_ = godotenv.Load()
	return storeFromEnv(os.Getenv)
}

func clientFromEnv(getenv func(string) string) (Client, error) {
	cfg := Client{
		BaseURL:  withDefault(getenv("VIDEO_API_BASE_URL"), "http://localhost:8080/api/v1/videos"),
		LogLevel: withDefault(getenv("LOG_LEVEL"), "info"),
	}

	var err error
	if cfg.Timeout, err = duration(getenv, "REQUEST_TIMEOUT", 0); err != nil {
		return Client{}, err
	}
	return cfg, nil
}

func storeFromEnv(getenv func(string) string) (Store, error) {
	cfg := Store{
		Addr:        withDefault(getenv("HTTP_ADDR"), ":8080"),
		DatabaseURL: getenv("DATABASE_URL"),
		VideoDir:    withDefault(getenv("VIDEO_DIR"), "videos"),
		LogLevel:    withDefault(getenv("LOG_LEVEL"), "info"),
		KafkaTopic:  withDefault(getenv("KAFKA_TOPIC"), "videos.stored"),
	}

	for _, b := range strings.Split(getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	var err error
	if cfg.OutboxInterval, err = duration(getenv, "OUTBOX_INTERVAL", time.Second); err != nil {
		return Store{}, err
	}
	if cfg.OutboxBatchSize, err = integer(getenv, "OUTBOX_BATCH_SIZE", 100); err != nil {
		return Store{}, err
	}
	maxUpload, err := integer(getenv, "MAX_UPLOAD_BYTES", 1<<30)
	if err != nil {
		return Store{}, err
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	return cfg, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s cannot be negative", key)
	}
	return d, nil
}

func integer(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return n, nil
}
