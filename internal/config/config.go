package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string

	APIBaseURL         string
	APIToken           string
	TokenFile          string
	RateLimitRPS       int
	TimeoutMs          int
	APIMaxAttempts     int
	RefreshConcurrency int

	WatchIntervalSec int
	WatchAutoExport  bool

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "vademecum.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		APIBaseURL:         getEnv("VADE_MECUM_API_BASE_URL", "http://localhost:3333"),
		APIToken:           strings.TrimSpace(getEnv("VADE_MECUM_API_TOKEN", "")),
		TokenFile:          getEnv("VADE_MECUM_TOKEN_FILE", filepath.Join(cwd, "data", "token")),
		RateLimitRPS:       getEnvInt("VADE_MECUM_RATE_LIMIT_RPS", 5),
		TimeoutMs:          getEnvInt("VADE_MECUM_TIMEOUT_MS", 30000),
		APIMaxAttempts:     getEnvInt("VADE_MECUM_API_MAX_ATTEMPTS", 1),
		RefreshConcurrency: getEnvInt("VADE_MECUM_REFRESH_CONCURRENCY", 4),

		WatchIntervalSec: getEnvInt("VADE_MECUM_WATCH_INTERVAL_SEC", 300),
		WatchAutoExport:  getEnvBool("VADE_MECUM_WATCH_AUTO_EXPORT", true),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if cfg.APIToken == "" {
		token, err := readTokenFile(cfg.TokenFile)
		if err != nil {
			return Config{}, err
		}
		cfg.APIToken = token
	}
	if cfg.APIMaxAttempts < 1 {
		cfg.APIMaxAttempts = 1
	}
	if cfg.RefreshConcurrency < 1 {
		cfg.RefreshConcurrency = 1
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

// readTokenFile returns the persisted session token, or "" when the file does not exist.
func readTokenFile(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	blob, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(blob)), nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
