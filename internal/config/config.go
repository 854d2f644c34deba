package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"carwash_backend/pkg/utils"
)

// Config holds application configuration values.
type Config struct {
	AppPort            string
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	DBSSLMode          string
	DBApplySchema      bool
	JWTSecret          string
	TokenExpires       time.Duration
	CORSAllowedOrigins []string
	UploadDir          string
	LogLevel           string
	LogPretty          bool
	BusinessTimezone   *time.Location
	SuperadminUsername string
	SuperadminPassword string
}

// Load reads .env (when present) and environment variables into a Config.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:            utils.Getenv("APP_PORT", "8080"),
		DBHost:             utils.Getenv("DB_HOST", "localhost"),
		DBPort:             utils.Getenv("DB_PORT", "5432"),
		DBUser:             utils.Getenv("DB_USER", "carwash"),
		DBPassword:         utils.Getenv("DB_PASSWORD", "carwash"),
		DBName:             utils.Getenv("DB_NAME", "carwash"),
		DBSSLMode:          utils.Getenv("DB_SSLMODE", "disable"),
		DBApplySchema:      utils.GetenvBool("DB_APPLY_SCHEMA", true),
		JWTSecret:          utils.Getenv("JWT_SECRET", ""),
		TokenExpires:       time.Duration(utils.GetenvInt("JWT_TTL_HOURS", 24)) * time.Hour,
		CORSAllowedOrigins: splitList(utils.Getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		UploadDir:          utils.Getenv("UPLOAD_DIR", "uploads"),
		LogLevel:           utils.Getenv("LOG_LEVEL", "info"),
		LogPretty:          utils.GetenvBool("LOG_PRETTY", true),
		SuperadminUsername: utils.Getenv("SUPERADMIN_USERNAME", ""),
		SuperadminPassword: utils.Getenv("SUPERADMIN_PASSWORD", ""),
	}

	tz := utils.Getenv("BUSINESS_TIMEZONE", "Asia/Jakarta")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("unknown BUSINESS_TIMEZONE %q, falling back to UTC: %v", tz, err)
		loc = time.UTC
	}
	cfg.BusinessTimezone = loc

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	return cfg
}

// DatabaseDSN builds the lib/pq connection string.
func (c *Config) DatabaseDSN() string {
	return "host=" + c.DBHost + " port=" + c.DBPort + " user=" + c.DBUser +
		" password=" + c.DBPassword + " dbname=" + c.DBName + " sslmode=" + c.DBSSLMode
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
