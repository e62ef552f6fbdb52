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
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBSSLMode        string
	DBConnectTimeout time.Duration

	StartURL     string
	PageCeiling  int
	WaitTimeout  time.Duration
	SearchSettle time.Duration
	PageSettle   time.Duration

	Headless  bool
	ChromeBin string

	RawCSVPath  string
	MetricsPort string
	LogLevel    string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", "mojehaslo"),
		DBName:           getEnv("DB_NAME", "postgres"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		DBConnectTimeout: getEnvSeconds("DB_CONNECT_TIMEOUT_SEC", 10),

		StartURL:     getEnv("START_URL", "https://www.otodom.pl"),
		PageCeiling:  getEnvInt("PAGE_CEILING", 999),
		WaitTimeout:  getEnvSeconds("WAIT_TIMEOUT_SEC", 10),
		SearchSettle: getEnvSeconds("SEARCH_SETTLE_SEC", 2),
		PageSettle:   getEnvSeconds("PAGE_SETTLE_SEC", 5),

		Headless:  getEnvBool("HEADLESS", false),
		ChromeBin: getEnv("CHROME_BIN", ""),

		RawCSVPath:  getEnv("RAW_CSV_PATH", ""),
		MetricsPort: getEnv("METRICS_PORT", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=" + c.DBSSLMode
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

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}

func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
