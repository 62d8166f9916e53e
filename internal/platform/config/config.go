package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration so main stays lean.
type Server struct {
	HTTP           HTTP
	JWTSigningKey  string
	JWTIssuer      string
	JWTAudience    string
	PostgresDSN    string
	Redis          Redis
	Kafka          Kafka
	AllowedOrigins []string
	PrimaryOrigin  string
	Security       Security
}

// HTTP holds the listener address and server timeouts. Write timeout is the
// ceiling for one dispatch round-trip including its store queries.
type HTTP struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

// Redis holds the advisory rate-hit recorder configuration. Empty URL means
// the recorder is disabled.
type Redis struct {
	URL          string
	HitWindow    time.Duration
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka holds the best-effort audit mirror configuration. Empty broker list
// disables publishing.
type Kafka struct {
	Brokers    []string
	AuditTopic string
}

// Security tunes the event queries. Defaults match the documented pipeline
// behavior; override only with care since monitoring dashboards assume them.
type Security struct {
	BruteForceWindow    time.Duration
	BruteForceThreshold int
	BruteForceLimit     int
	AlertsLimit         int
	SuspiciousWindow    time.Duration
	SuspiciousLimit     int
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		HTTP: HTTP{
			Addr:              envOr("SENTINELA_ADDR", ":8080"),
			ReadHeaderTimeout: envDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       envDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:      envDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:       envDuration("HTTP_IDLE_TIMEOUT", 120*time.Second),
		},
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     envOr("JWT_ISSUER", "sentinela"),
		JWTAudience:   envOr("JWT_AUDIENCE", "sentinela-api"),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			HitWindow:    envDuration("RATE_HIT_WINDOW", time.Minute),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{
			Brokers:    splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: envOr("KAFKA_AUDIT_TOPIC", "sentinela.audit"),
		},
		PrimaryOrigin: envOr("PRIMARY_ORIGIN", "https://dashboardmbk.com.br"),
		Security: Security{
			BruteForceWindow:    envDuration("BRUTEFORCE_WINDOW", 24*time.Hour),
			BruteForceThreshold: envInt("BRUTEFORCE_THRESHOLD", 5),
			BruteForceLimit:     envInt("BRUTEFORCE_LIMIT", 50),
			AlertsLimit:         envInt("ALERTS_LIMIT", 100),
			SuspiciousWindow:    envDuration("SUSPICIOUS_WINDOW", 7*24*time.Hour),
			SuspiciousLimit:     envInt("SUSPICIOUS_LIMIT", 100),
		},
	}

	origins := splitNonEmpty(os.Getenv("ALLOWED_ORIGINS"))
	if len(origins) == 0 {
		origins = []string{
			cfg.PrimaryOrigin,
			"https://www.dashboardmbk.com.br",
			"http://localhost:8080",
			"http://localhost:5173",
		}
	}
	cfg.AllowedOrigins = origins

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
