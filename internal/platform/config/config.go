package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BlobBackendGCS   = "gcs"
	BlobBackendLocal = "local"
)

type Config struct {
	Addr                string
	DatabaseURL         string
	JWTSecret           string
	TokenTTL            time.Duration
	Environment         string
	LogLevel            string
	MigrationsDir       string
	RunMigrations       bool
	RunSeed             bool
	SeedAdminEmail      string
	SeedAdminPassword   string
	MaxBodyBytes        int64
	MaxUploadBytes      int64
	RateLimitPerMinute  int
	AllowedOrigins      []string
	BlobBackend         string
	BlobFolder          string
	BlobPublicBaseURL   string
	BlobLocalDir        string
	GCSBucket           string
	GCSCredentialsFile  string
	GCSEmulatorHost     string
	RedisAddr           string
	RedisChannel        string
	ChatEnforceContacts bool
	EmailFrom           string
	EmailEnabled        bool
	SMTPHost            string
	SMTPPort            int
	SMTPUser            string
	SMTPPassword        string
	SMTPUseTLS          bool
	MetricsEnabled      bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; variables already set in the process win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("dotenv load failed", "err", err)
	}
	return Config{
		Addr:                getEnv("APP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		TokenTTL:            getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
		Environment:         getEnv("APP_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		MigrationsDir:       getEnv("MIGRATIONS_DIR", "migrations"),
		RunMigrations:       getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:             getEnvBool("RUN_SEED", true),
		SeedAdminEmail:      getEnv("SEED_ADMIN_EMAIL", "admin@example.com"),
		SeedAdminPassword:   getEnv("SEED_ADMIN_PASSWORD", ""),
		MaxBodyBytes:        int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		MaxUploadBytes:      int64(getEnvInt("MAX_UPLOAD_BYTES", 5*1024*1024)),
		RateLimitPerMinute:  getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		AllowedOrigins:      getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		BlobBackend:         getEnv("BLOB_BACKEND", BlobBackendLocal),
		BlobFolder:          getEnv("BLOB_FOLDER", "hr_onboarding"),
		BlobPublicBaseURL:   getEnv("BLOB_PUBLIC_BASE_URL", ""),
		BlobLocalDir:        getEnv("BLOB_LOCAL_DIR", "storage/uploads"),
		GCSBucket:           getEnv("GCS_BUCKET", ""),
		GCSCredentialsFile:  getEnv("GCS_CREDENTIALS_FILE", ""),
		GCSEmulatorHost:     getEnv("GCS_EMULATOR_HOST", ""),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisChannel:        getEnv("REDIS_CHANNEL", "hireflow-live"),
		ChatEnforceContacts: getEnvBool("CHAT_ENFORCE_CONTACTS", true),
		EmailFrom:           getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailEnabled:        getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            getEnvInt("SMTP_PORT", 587),
		SMTPUser:            getEnv("SMTP_USER", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:          getEnvBool("SMTP_USE_TLS", true),
		MetricsEnabled:      getEnvBool("METRICS_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be set or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	switch c.BlobBackend {
	case BlobBackendGCS:
		if strings.TrimSpace(c.GCSBucket) == "" {
			return fmt.Errorf("GCS_BUCKET must be set when BLOB_BACKEND is gcs")
		}
	case BlobBackendLocal:
		if strings.TrimSpace(c.BlobLocalDir) == "" {
			return fmt.Errorf("BLOB_LOCAL_DIR must be set when BLOB_BACKEND is local")
		}
	default:
		return fmt.Errorf("BLOB_BACKEND must be %q or %q", BlobBackendGCS, BlobBackendLocal)
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
