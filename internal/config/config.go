package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int

	DatabaseURL    string
	DatabaseDriver string

	JWTSecret []byte
	JWTTTL    time.Duration

	SessionTTL          time.Duration
	SessionCookieSecure bool
	RedisURL            string
	CSRFEnabled         bool

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	GoogleClientID     string
	GoogleClientSecret string
	BackendURL         string
	FrontendURL        string
	CORSOrigins        []string

	RiderPolicy string

	LogLevel  string
	LogFormat string
}

// Load reads .env (if any) and then the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env not loaded: %v, using system environment", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "delivery_shop"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 5000),

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DatabaseDriver: EnvDefault("DB_DRIVER", "pgx"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		JWTTTL:    EnvDurationDefault("JWT_TTL", 30*24*time.Hour),

		SessionTTL:          EnvDurationDefault("SESSION_TTL", 24*time.Hour),
		SessionCookieSecure: EnvBoolDefault("SESSION_COOKIE_SECURE", false),
		RedisURL:            os.Getenv("REDIS_URL"),
		CSRFEnabled:         EnvBoolDefault("CSRF_ENABLED", true),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		BackendURL:         EnvDefault("BACKEND_URL", "http://localhost:5000"),
		FrontendURL:        EnvDefault("FRONTEND_URL", "http://localhost:5173"),
		CORSOrigins:        CSV(EnvDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173,http://127.0.0.1:5173")),

		RiderPolicy: EnvDefault("RIDER_POLICY", "first_available"),

		LogLevel:  EnvDefault("LOG_LEVEL", "info"),
		LogFormat: EnvDefault("LOG_FORMAT", "json"),
	}
}

// GoogleEnabled reports whether both OAuth client credentials are present.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func (c Config) GoogleRedirectURL() string {
	return strings.TrimRight(c.BackendURL, "/") + "/auth/google/callback"
}

func (c Config) FrontendCallbackURL() string {
	return strings.TrimRight(c.FrontendURL, "/") + "/auth/callback"
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
