package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	DBDriver   string
	DBDSN      string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	SessionSecret   string
	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	GinMode      string
	CORSOrigins  []string
	OpenAIAPIKey string
	UploadDir    string

	LogLevel string
	LogDir   string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	ReminderInterval  time.Duration
	HeartbeatInterval time.Duration
	DigestHour        int
}

func Load() *Config {
	return &Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		DBDriver:          getEnv("DB_DRIVER", "mysql"),
		DBDSN:             getEnv("DB_DSN", ""),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBUser:            getEnv("DB_USER", "learnflow"),
		DBPassword:        getEnv("DB_PASSWORD", "learnflow"),
		DBName:            getEnv("DB_NAME", "learnflow"),
		RedisHost:         getEnv("REDIS_HOST", ""),
		RedisPort:         getEnv("REDIS_PORT", "6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		SessionSecret:     getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		JWTSecret:         getEnv("JWT_SECRET", "default-jwt-secret-change-me"),
		JWTIssuer:         getEnv("JWT_ISSUER", "learnflow-api"),
		AccessTokenTTL:    getEnvDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL:   getEnvDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		GinMode:           getEnv("GIN_MODE", "debug"),
		CORSOrigins:       getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogDir:            getEnv("LOG_DIR", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnv("SMTP_PORT", "587"),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		MailFrom:          getEnv("MAIL_FROM", "noreply@learnflow.local"),
		ReminderInterval:  getEnvDuration("REMINDER_INTERVAL", time.Minute),
		HeartbeatInterval: getEnvDuration("HEARTBEAT_INTERVAL", 30*time.Minute),
		DigestHour:        getEnvInt("DIGEST_HOUR", 9),
	}
}

// RedisEnabled reports whether a Redis host has been configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	if value := os.Getenv(key + "_SECONDS"); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
