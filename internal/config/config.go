package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env             string
	HTTPPort        string
	DatabaseURL     string
	RedisAddr       string
	JWTIssuer       string
	JWTSigningKey   string
	AccessTTL       time.Duration
	QueueBackend    string
	RateLimitPerMin int
	StatsTZ         string
	StaticDir       string
}

// Load returns application config populated from environment variables with
// sensible defaults. A .env file in the working directory is honored when
// present.
func Load() App {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment from .env")
	}
	return App{
		Env:             getEnv("APP_ENV", "dev"),
		HTTPPort:        getEnv("PORT", "5000"),
		DatabaseURL:     databaseURL(),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		JWTIssuer:       getEnv("JWT_ISSUER", "smartattend"),
		JWTSigningKey:   getEnv("SECRET_KEY", "secret-key"),
		AccessTTL:       durationEnv("ACCESS_TTL", 15*time.Minute),
		QueueBackend:    getEnv("QUEUE_BACKEND", "redis"),
		RateLimitPerMin: intEnv("RATE_LIMIT_PER_MIN", 120),
		StatsTZ:         getEnv("STATS_TZ", "UTC"),
		StaticDir:       getEnv("STATIC_DIR", "web"),
	}
}

// databaseURL prefers a full DATABASE_URL and otherwise assembles a Postgres
// DSN from the discrete DB_* variables, url-encoding the password so special
// characters survive.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	user := getEnv("DB_USER", "postgres")
	password := url.QueryEscape(getEnv("DB_PASSWORD", "password"))
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	name := getEnv("DB_NAME", "attendance_db")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
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
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
