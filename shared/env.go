package shared

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads a .env file from the working directory when one exists.
// Variables already present in the environment win.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Error loading .env file", "err", err)
	}
}

func EnvOrDefault(name, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func EnvSeconds(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		slog.Warn("Ignoring invalid duration", "name", name, "value", raw)
		return fallback
	}
	return time.Duration(v) * time.Second
}

// HostPort joins host and port from the environment, returning "" unless both are set.
func HostPort(hostVar, portVar string) string {
	host := strings.TrimSpace(os.Getenv(hostVar))
	port := strings.TrimSpace(os.Getenv(portVar))
	if host == "" || port == "" {
		return ""
	}
	return host + ":" + port
}
