package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	DatabaseURL string
	RedisURL    string

	SupabaseJWTSecret string
	AdminJWTSecret    string
	AdminTokenTTL     time.Duration

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryUploadFolder string

	LogLevel  string
	LogFormat string

	// DailyResetLocation anchors the daily login bonus to a fixed timezone.
	DailyResetLocation *time.Location

	RoleCheckTimeout   time.Duration
	ProfileReadTimeout time.Duration
	LedgerTimeout      time.Duration
	WriteTimeout       time.Duration

	RateLimitGlobal time.Duration
	RateLimitPost   time.Duration
	PinDuration     time.Duration

	SeedSuperadminEmail    string
	SeedSuperadminPassword string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		SupabaseJWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),
		AdminJWTSecret:    os.Getenv("ADMIN_JWT_SECRET"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "campus_forum"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		SeedSuperadminEmail:    os.Getenv("SEED_SUPERADMIN_EMAIL"),
		SeedSuperadminPassword: os.Getenv("SEED_SUPERADMIN_PASSWORD"),
	}

	if cfg.SupabaseJWTSecret == "" {
		return nil, fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if cfg.AdminJWTSecret == "" {
		cfg.AdminJWTSecret = cfg.SupabaseJWTSecret
	}

	loc, err := time.LoadLocation(getEnv("DAILY_RESET_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid DAILY_RESET_TIMEZONE: %w", err)
	}
	cfg.DailyResetLocation = loc

	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"ADMIN_TOKEN_TTL", "12h", &cfg.AdminTokenTTL},
		{"ROLE_CHECK_TIMEOUT", "2s", &cfg.RoleCheckTimeout},
		{"PROFILE_READ_TIMEOUT", "2s", &cfg.ProfileReadTimeout},
		{"LEDGER_TIMEOUT", "5s", &cfg.LedgerTimeout},
		{"WRITE_TIMEOUT", "10s", &cfg.WriteTimeout},
		{"RATE_LIMIT_GLOBAL", "5s", &cfg.RateLimitGlobal},
		{"RATE_LIMIT_POST", "30s", &cfg.RateLimitPost},
		{"PIN_DURATION", "168h", &cfg.PinDuration},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.fallback))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
