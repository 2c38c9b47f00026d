package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Gemini
	AIAPIKey string
	GenModel string

	// HTTP
	Port        string
	CorsOrigins []string
	WebDir      string

	// pipeline
	MaxUploadMB    int
	Workers        int
	QueueSize      int
	SessionTTL     time.Duration
	ExtractTimeout time.Duration

	// history and accounts
	DatabaseURL string
	SslCertPath string
	JWTSecret   string

	// archive
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	LogLevel  string
	LogFormat string
}

// LoadConfig loads .env (if present) and the process environment into a Config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	return &Config{
		AIAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GenModel:       getEnv("GEN_MODEL", "gemini-2.5-flash"),
		Port:           getEnv("PORT", "8080"),
		CorsOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		WebDir:         getEnv("WEB_DIR", ""),
		MaxUploadMB:    getEnvInt("MAX_UPLOAD_MB", 20),
		Workers:        getEnvInt("WORKERS", 2),
		QueueSize:      getEnvInt("QUEUE_SIZE", 64),
		SessionTTL:     getEnvDuration("SESSION_TTL", 30*time.Minute),
		ExtractTimeout: getEnvDuration("EXTRACT_TIMEOUT", 0),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SslCertPath:    getEnv("SSL_CERT_PATH", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AwsAccessKey:   getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:   getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:      getEnv("AWS_REGION", "us-east-2"),
		BucketName:     getEnv("BUCKET_NAME", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.AIAPIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY not set"))
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be positive"))
	}
	if c.Workers <= 0 {
		errs = append(errs, errors.New("WORKERS must be positive"))
	}
	if c.JWTSecret != "" && c.DatabaseURL == "" {
		errs = append(errs, errors.New("JWT_SECRET requires DATABASE_URL for accounts"))
	}
	return errors.Join(errs...)
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// HistoryEnabled reports whether conversions are recorded in Postgres.
func (c *Config) HistoryEnabled() bool { return c.DatabaseURL != "" }

// ArchiveEnabled reports whether finished files are copied to S3.
func (c *Config) ArchiveEnabled() bool {
	return c.BucketName != "" && c.AwsAccessKey != "" && c.AwsSecretKey != ""
}

// AuthEnabled reports whether /api routes require a bearer token.
func (c *Config) AuthEnabled() bool { return c.JWTSecret != "" }

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config.invalid_int", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config.invalid_duration", "key", key, "value", v, "default", def.String())
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
