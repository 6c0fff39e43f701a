package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
	Mail      MailConfig
	Journal   JournalConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port                   string
	Env                    string
	LogLevel               string
	AllowedOrigins         []string
	AllowedReferrerDomains []string
	ReadTimeout            time.Duration
	WriteTimeout           time.Duration
	IdleTimeout            time.Duration
	ThrottleRequestsPerMin int
}

type RateLimitConfig struct {
	MaxSubmissions int
	Window         time.Duration
	Backend        string // "memory", "postgres" or "redis"
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
}

type MailConfig struct {
	Provider         string // "ses" or "smtp"
	FromAddress      string
	ClinicRecipients []string
	AWSRegion        string
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
}

type JournalConfig struct {
	Dir          string
	FallbackFile string
	SpamFile     string
	AuditFile    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "intake"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:                   getEnv("PORT", "8080"),
			Env:                    env,
			LogLevel:               getEnv("LOG_LEVEL", "info"),
			AllowedOrigins:         parseAllowedOrigins(env),
			AllowedReferrerDomains: getEnvAsList("ALLOWED_REFERRER_DOMAINS", defaultReferrerDomains(env)),
			ReadTimeout:            getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:           getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:            getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ThrottleRequestsPerMin: getEnvAsInt("THROTTLE_REQUESTS_PER_MIN", 60),
		},
		RateLimit: RateLimitConfig{
			MaxSubmissions: getEnvAsInt("RATE_LIMIT_MAX_SUBMISSIONS", 5),
			Window:         getEnvAsDuration("RATE_LIMIT_WINDOW", 1*time.Hour),
			Backend:        getEnv("RATE_LIMIT_BACKEND", "memory"),
			RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword:  getEnv("REDIS_PASSWORD", ""),
			RedisDB:        getEnvAsInt("REDIS_DB", 0),
		},
		Mail: MailConfig{
			Provider:         getEnv("MAIL_PROVIDER", "ses"),
			FromAddress:      getEnv("MAIL_FROM_ADDRESS", ""),
			ClinicRecipients: getEnvAsList("MAIL_CLINIC_RECIPIENTS", nil),
			AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
			SMTPHost:         getEnv("SMTP_HOST", "localhost"),
			SMTPPort:         getEnvAsInt("SMTP_PORT", 587),
			SMTPUsername:     getEnv("SMTP_USERNAME", ""),
			SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		},
		Journal: JournalConfig{
			Dir:          getEnv("JOURNAL_DIR", "data"),
			FallbackFile: getEnv("JOURNAL_FALLBACK_FILE", "fallback_submissions.log"),
			SpamFile:     getEnv("JOURNAL_SPAM_FILE", "spam.log"),
			AuditFile:    getEnv("JOURNAL_AUDIT_FILE", "submissions.log"),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.Mail.FromAddress == "" {
		return nil, fmt.Errorf("MAIL_FROM_ADDRESS is required")
	}
	if len(cfg.Mail.ClinicRecipients) == 0 {
		return nil, fmt.Errorf("MAIL_CLINIC_RECIPIENTS is required")
	}
	switch cfg.RateLimit.Backend {
	case "memory", "postgres", "redis":
	default:
		return nil, fmt.Errorf("RATE_LIMIT_BACKEND must be memory, postgres or redis (got %q)", cfg.RateLimit.Backend)
	}
	switch cfg.Mail.Provider {
	case "ses", "smtp":
	default:
		return nil, fmt.Errorf("MAIL_PROVIDER must be ses or smtp (got %q)", cfg.Mail.Provider)
	}

	return cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsList(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		originsStr := getEnv("ALLOWED_ORIGINS", "")
		if originsStr == "" {
			return []string{} // Default to no origins in production
		}
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5173", // Vite default
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}

func defaultReferrerDomains(env string) []string {
	if env == "production" {
		return []string{}
	}
	return []string{"localhost", "127.0.0.1"}
}
