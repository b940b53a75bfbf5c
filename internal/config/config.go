package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort   string
	DBDriver     string
	DatabaseDSN  string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	SecretKey    string
	TokenTTL     time.Duration
	CookieSecure bool
	AllowOrigins []string
	LogLevel     string
	ResetDB      bool
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort:   getEnv("SERVER_PORT", "8000"),
		DBDriver:     strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DatabaseDSN:  getEnv("DATABASE_DSN", "user:password@tcp(localhost:3306)/kairos?charset=utf8mb4&parseTime=True&loc=UTC"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		RedisPass:    os.Getenv("REDIS_PASSWORD"),
		SecretKey:    getEnv("SECRET_KEY", "dev_secret_change_me"),
		TokenTTL:     time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 120)) * time.Minute,
		CookieSecure: getEnvBool("COOKIE_SECURE", false),
		AllowOrigins: getEnvList("ALLOW_ORIGINS", []string{"http://localhost:5173"}),
		LogLevel:     strings.ToLower(getEnv("LOG_LEVEL", "info")),
		ResetDB:      getEnvBool("RESET_DB", false),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, def []string) []string {
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
	if len(out) == 0 {
		return def
	}
	return out
}
