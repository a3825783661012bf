package api

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	Environment       string
	PrometheusEnabled bool
}

// LoadConfig reads a local .env file when present, then the environment,
// applying defaults where nothing is set.
func LoadConfig() Config {
	_ = godotenv.Load()
	return Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		Environment:       envDefault("ENVIRONMENT", "development"),
		PrometheusEnabled: isTruthy(os.Getenv("PROMETHEUS_ENABLED")),
	}
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
