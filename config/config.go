package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	StartURL string
	MaxPages int

	DataDir    string
	ParamsPath string

	MaxRetries    int
	RetryDelayMs  int
	WaitTimeout   time.Duration
	HTTPTimeout   time.Duration
	LifespanYears int

	Headless  bool
	ChromeBin string
	LogLevel  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		StartURL: getEnv("START_URL", ""),
		MaxPages: getEnvInt("MAX_PAGES", 20),

		DataDir:    getEnv("DATA_DIR", "data"),
		ParamsPath: getEnv("PARAMS_PATH", "params.yaml"),

		MaxRetries:    getEnvInt("MAX_RETRIES", 5),
		RetryDelayMs:  getEnvInt("RETRY_DELAY_MS", 1000),
		WaitTimeout:   time.Duration(getEnvInt("WAIT_TIMEOUT_SEC", 20)) * time.Second,
		HTTPTimeout:   time.Duration(getEnvInt("HTTP_TIMEOUT_SEC", 30)) * time.Second,
		LifespanYears: getEnvInt("LIFESPAN_YEARS", 10),

		Headless:  getEnvBool("HEADLESS", true),
		ChromeBin: getEnv("CHROME_BIN", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}
}

// RetryDelay returns the fixed pause between extraction attempts.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err == nil {
			return b
		}
	}
	return fallback
}
