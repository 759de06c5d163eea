package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DBType            string
	DBDSN             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// Files
	UploadDir string
	PublicDir string

	// Auth
	JWTSecret     string
	TokenTTL      time.Duration
	SessionSecret string

	// CORS
	CORSOrigin string

	// Mail
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	ContactTo    string
}

func Load() *Config {
	maxOpen, _ := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "10"))
	maxIdle, _ := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "5"))
	lifetime, _ := strconv.Atoi(getEnv("DB_CONN_MAX_LIFETIME_MINUTES", "30"))
	tokenHours, _ := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "24"))
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))

	return &Config{
		Port:        getEnv("APP_PORT", "5000"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DBType:            getEnv("DB_TYPE", "mysql"),
		DBDSN:             os.Getenv("DB_DSN"),
		DBMaxOpenConns:    maxOpen,
		DBMaxIdleConns:    maxIdle,
		DBConnMaxLifetime: time.Duration(lifetime) * time.Minute,

		UploadDir: getEnv("UPLOAD_DIR", "uploads"),
		PublicDir: os.Getenv("PUBLIC_DIR"),

		JWTSecret:     getEnv("JWT_SECRET", "dev_fallback_secret"),
		TokenTTL:      time.Duration(tokenHours) * time.Hour,
		SessionSecret: getEnv("SESSION_SECRET", "dev_fallback_secret"),

		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:5500"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     smtpPort,
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnv("MAIL_FROM", "info@hitaishifashion.com"),
		ContactTo:    getEnv("CONTACT_TO", "info@hitaishifashion.com"),
	}
}

// IsProduction reports whether ENVIRONMENT is "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
