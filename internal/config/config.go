// Package config loads runtime settings from the environment.
// A .env file in the working directory is read first when present.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds settings for the hexroute binaries.
type Config struct {
	DBPath      string
	Port        int
	Seed        int64
	Radius      int
	WrapWidth   int           // 0 generates an island world without wraparound
	TimeUnit    time.Duration // wall-clock length of one movement cost unit
	RateLimit   float64       // route requests per second per client
	CORSOrigins []string
}

// Load reads the configuration from the environment.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	return Config{
		DBPath:      envOrDefault("HEXROUTE_DB_PATH", "data/hexroute.db"),
		Port:        envIntOrDefault("HEXROUTE_PORT", 8080),
		Seed:        int64(envIntOrDefault("HEXROUTE_SEED", 42)),
		Radius:      envIntOrDefault("HEXROUTE_RADIUS", 22),
		WrapWidth:   envIntOrDefault("HEXROUTE_WRAP_WIDTH", 0),
		TimeUnit:    envDurationOrDefault("HEXROUTE_TIME_UNIT", time.Minute),
		RateLimit:   envFloatOrDefault("HEXROUTE_RATE_LIMIT", 5),
		CORSOrigins: envList("HEXROUTE_CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envFloatOrDefault(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("invalid number in environment, using default", "key", key, "value", v, "default", def)
		return def
	}
	return f
}

func envDurationOrDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
