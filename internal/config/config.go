package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT (verification only; tokens are issued by the auth service)
	JWTSecret string

	// Admin
	AdminEmails  string
	AdminUserIDs string
	AdminToken   string

	// Redis snapshot cache (empty addr disables caching)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SnapshotTTL   time.Duration

	// Scan worker
	WorkerEnabled       bool
	WorkerInterval      time.Duration
	ScanWindowHours     int
	AnalyticsWindowDays int

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "moderation_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		SnapshotTTL:   parseDuration(getEnv("SNAPSHOT_TTL", "10m"), 10*time.Minute),

		WorkerEnabled:       getEnv("WORKER_ENABLED", "true") == "true",
		WorkerInterval:      parseDuration(getEnv("WORKER_INTERVAL", "5m"), 5*time.Minute),
		ScanWindowHours:     parseInt(getEnv("SCAN_WINDOW_HOURS", "24"), 24),
		AnalyticsWindowDays: parseInt(getEnv("ANALYTICS_WINDOW_DAYS", "30"), 30),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
