package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env             string
	HTTPPort        string
	DBDriver        string
	DatabaseURL     string
	RedisAddr       string
	RedisPassword   string
	SessionBackend  string
	SessionSecret   string
	SessionIssuer   string
	SessionTTL      time.Duration
	SessionCookie   string
	CookieSecure    bool
	Timezone        string
	AutoSeed        bool
	RateLimitPerMin int
	TemplateDir     string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	TrustedProxies  []string
}

// Load returns application config populated from environment variables with sensible defaults.
// A .env file in the working directory (or the file named by ENV_FILE) is loaded first; variables
// already present in the environment win.
func Load() App {
	loadDotEnv()

	return App{
		Env:             getEnv("APP_ENV", "dev"),
		HTTPPort:        getEnv("HTTP_PORT", "3000"),
		DBDriver:        getEnv("DB_DRIVER", "sqlite3"),
		DatabaseURL:     getEnv("DATABASE_URL", "./portal.db"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		SessionBackend:  getEnv("SESSION_BACKEND", "memory"),
		SessionSecret:   getEnv("SESSION_SECRET", "dev-session-secret-change"),
		SessionIssuer:   getEnv("SESSION_ISSUER", "school-portal"),
		SessionTTL:      durationEnv("SESSION_TTL", 24*time.Hour),
		SessionCookie:   getEnv("SESSION_COOKIE", "portal_session"),
		CookieSecure:    boolEnv("COOKIE_SECURE", false),
		Timezone:        getEnv("TIMEZONE", "UTC"),
		AutoSeed:        boolEnv("AUTO_SEED", false),
		RateLimitPerMin: intEnv("RATE_LIMIT_PER_MIN", 0),
		TemplateDir:     getEnv("TEMPLATE_DIR", ""),
		ShutdownTimeout: durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
		AllowedOrigins:  listEnv("CORS_ALLOWED_ORIGINS"),
		TrustedProxies:  listEnv("TRUSTED_PROXIES"),
	}
}

// Production reports whether the app runs with production settings.
func (a App) Production() bool {
	return a.Env == "production" || a.Env == "prod"
}

// Location resolves the configured time zone used to decide what "today" is.
func (a App) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "load timezone %q", a.Timezone)
	}
	return loc, nil
}

func loadDotEnv() {
	path := getEnv("ENV_FILE", ".env")
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("config: stat %s: %v", path, err)
		}
		return
	}
	if err := godotenv.Load(path); err != nil {
		log.Printf("config: load %s: %v", path, err)
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
		log.Printf("invalid seconds for %s_SECONDS, using fallback %s", key, fallback)
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if val == "1" || val == "true" || val == "TRUE" {
			return true
		}
		if val == "0" || val == "false" || val == "FALSE" {
			return false
		}
		log.Printf("invalid bool for %s, using fallback %v", key, fallback)
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.Atoi(val)
		if err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}

// listEnv splits a comma separated variable, dropping blanks. Unset means nil.
func listEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
