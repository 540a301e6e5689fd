package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr     string
	PostgresURL  string
	RedisAddr    string
	KafkaBrokers []string
	JWTSecret    string
	ServiceName  string
	OTLPEndpoint string
	MaxDBConns   int
	CutoffHour   int
	CutoffMinute int
}

// Load reads configuration from the environment. KafkaBrokers and RedisAddr
// are optional; everything else falls back to development defaults except
// POSTGRES_URL, which the caller must check before connecting.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		PostgresURL:  os.Getenv("POSTGRES_URL"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		JWTSecret:    getenv("JWT_SECRET", "dev-secret-change-me"),
		ServiceName:  getenv("SERVICE_NAME", "wholesale-api"),
		OTLPEndpoint: getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	var err error
	if cfg.MaxDBConns, err = getint("MAX_DB_CONNS", 16); err != nil {
		return Config{}, err
	}
	if cfg.CutoffHour, err = getint("CUTOFF_HOUR", 16); err != nil {
		return Config{}, err
	}
	if cfg.CutoffMinute, err = getint("CUTOFF_MINUTE", 0); err != nil {
		return Config{}, err
	}

	if cfg.CutoffHour < 0 || cfg.CutoffHour > 23 {
		return Config{}, fmt.Errorf("CUTOFF_HOUR out of range: %d", cfg.CutoffHour)
	}
	if cfg.CutoffMinute < 0 || cfg.CutoffMinute > 59 {
		return Config{}, fmt.Errorf("CUTOFF_MINUTE out of range: %d", cfg.CutoffMinute)
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
