package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"blogapi/internal/logging"
)

type Config struct {
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxOpenConns int

	ServerPort string

	JWTSecret string
	// JWTLifetime is the access token lifetime in seconds.
	JWTLifetime int

	// RedisURL is optional. When empty, activity events are not published.
	RedisURL string

	LogLevel  string
	LogFormat string
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		logging.Log.Debug("No .env file found or error loading it, relying on environment variables")
	}

	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),

		ServerPort: getEnv("SERVER_PORT", "8080"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTLifetime: getEnvInt("JWT_LIFETIME", 86400),

		RedisURL: os.Getenv("REDIS_URL"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt falls back on missing, malformed or non-positive values.
func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
