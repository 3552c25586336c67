package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr          string
	DBPath        string
	TokenTTL      time.Duration
	AdminUser     string
	AdminPassword string
	RateLimits    RateLimits
	Version       string
	Commit        string
	BuildTime     string
}

type RateLimits struct {
	LoginPerMinute   int
	PostPerMinute    int
	CommentPerMinute int
}

func Load() Config {
	addr := envString("INKWELL_ADDR", "")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = ":8080"
		}
	}
	cfg := Config{
		Addr: addr,
		// Empty selects the in-memory store; set a path for SQLite.
		DBPath:        envString("INKWELL_DB", ""),
		TokenTTL:      envDuration("INKWELL_TOKEN_TTL", time.Hour),
		AdminUser:     envString("INKWELL_ADMIN_USER", "admin"),
		AdminPassword: envString("INKWELL_ADMIN_PASSWORD", "dev-admin-password"),
		RateLimits: RateLimits{
			LoginPerMinute:   envInt("INKWELL_RL_LOGIN_PER_MIN", 20),
			PostPerMinute:    envInt("INKWELL_RL_POST_PER_MIN", 10),
			CommentPerMinute: envInt("INKWELL_RL_COMMENT_PER_MIN", 30),
		},
		Version: "0.1.0",
	}

	return cfg
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
