package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret      string
	JWTExpireHours string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       string

	// Email Configuration
	EmailFrom     string
	EmailFromName string
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string

	// Verification code flow
	VerifyCodeTTLSeconds     string
	VerifyLimitWindowSeconds string

	// Frontend URL
	FrontendURL string

	// Service URLs
	AuthServiceURL string
	MailServiceURL string
}

var cfg *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Printf("✅ Environment loaded from: %s", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg = &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "secureweb"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTExpireHours: getEnv("JWT_EXPIRE_HOURS", "24"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),

		// Email Configuration
		EmailFrom:     getEnv("EMAIL_FROM", "noreply@secureweb.dev"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "SecureWeb"),
		SMTPHost:      getEnv("SMTP_HOST", "smtp.example.com"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),

		// Verification code flow
		VerifyCodeTTLSeconds:     getEnv("VERIFY_CODE_TTL_SECONDS", "180"),
		VerifyLimitWindowSeconds: getEnv("VERIFY_LIMIT_WINDOW_SECONDS", "60"),

		// Frontend URL
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// Service URLs
		AuthServiceURL: getEnv("AUTH_SERVICE_URL", "http://localhost:8001"),
		MailServiceURL: getEnv("MAIL_SERVICE_URL", "http://localhost:8002"),
	}

	log.Println("✅ Configuration loaded successfully")
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	if cfg == nil {
		LoadConfig()
	}
	return cfg
}

// GetJWTExpireDuration returns the access token lifetime
func (c *Config) GetJWTExpireDuration() time.Duration {
	hours, err := strconv.Atoi(c.JWTExpireHours)
	if err != nil || hours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(hours) * time.Hour
}

// GetVerifyCodeTTL returns the verification code lifetime
func (c *Config) GetVerifyCodeTTL() time.Duration {
	return getDurationSeconds(c.VerifyCodeTTLSeconds, 180*time.Second)
}

// GetVerifyLimitWindow returns the per-requester cooldown between code requests
func (c *Config) GetVerifyLimitWindow() time.Duration {
	return getDurationSeconds(c.VerifyLimitWindowSeconds, 60*time.Second)
}

func getDurationSeconds(value string, defaultValue time.Duration) time.Duration {
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
