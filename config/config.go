package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup. Values come
// from the environment, with a .env file loaded first when present.
type Config struct {
	Addr      string
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration
	LogLevel  string
	Seed      bool
}

// Load reads configuration from the environment. A missing .env file
// is fine; a missing JWT secret is not.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:      getEnv("HR_ADDR", ":8080"),
		DBPath:    getEnv("HR_DB_PATH", "hr.db"),
		JWTSecret: getEnv("HR_JWT_SECRET", ""),
		TokenTTL:  getEnvAsDuration("HR_TOKEN_TTL", 12*time.Hour),
		LogLevel:  getEnv("HR_LOG_LEVEL", "info"),
		Seed:      getEnvAsBool("HR_SEED", false),
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("HR_JWT_SECRET must be set")
	}
	return cfg, nil
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	if val, err := strconv.ParseBool(getEnv(name, "")); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	if val, err := time.ParseDuration(getEnv(name, "")); err == nil {
		return val
	}
	return defaultVal
}
