package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Load reads .env when present; real environment variables win over it.
func Load() {
	_ = godotenv.Load()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Port returns the HTTP listen port.
func Port() string {
	return envOr("PORT", "8080")
}

// DataFile returns the path of the YAML snapshot seed file.
func DataFile() string {
	return envOr("DATA_FILE", "seed.yaml")
}

// LogLevel returns the configured logrus level name.
func LogLevel() string {
	return envOr("LOG_LEVEL", "info")
}
