package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory    = "memory"
	BackendSupabase  = "supabase"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"

	StateMemory = "memory"
	StateSQLite = "sqlite"

	AuthLocal    = "local"
	AuthFirebase = "firebase"

	PolicyEager   = "eager"
	PolicyConfirm = "confirm"
)

type Config struct {
	// Transaction store
	DataBackend       string
	SupabaseURL       string
	SupabaseKey       string
	FirebaseProjectID string
	FirebaseCredsFile string
	DatabaseURL       string

	// Local state
	StateBackend string
	StateDBPath  string

	// Identity
	AuthMode  string
	JWTSecret string

	// Presentation
	TelegramToken  string
	Port           string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration

	// Ledger behaviour
	ApplyPolicy       string
	ResetEnabled      bool
	StrictDates       bool
	HealthCriticalPct float64
	HealthLowPct      float64
	HealthStablePct   float64
	TrailingPoints    int
	MaxSessions       int

	LogLevel string
}

// LoadConfig reads .env when present and builds the configuration from the
// environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		DataBackend:       getEnv("DATA_BACKEND", BackendMemory),
		SupabaseURL:       os.Getenv("SUPABASE_URL"),
		SupabaseKey:       os.Getenv("SUPABASE_KEY"),
		FirebaseProjectID: os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),

		StateBackend: getEnv("STATE_BACKEND", StateMemory),
		StateDBPath:  getEnv("STATE_DB_PATH", "./data/state.db"),

		AuthMode:  getEnv("AUTH_MODE", AuthLocal),
		JWTSecret: getEnv("JWT_SECRET", "keloladuit-dev-secret"),

		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),

		ApplyPolicy:       getEnv("APPLY_POLICY", PolicyEager),
		ResetEnabled:      getEnvBool("RESET_ENABLED", true),
		StrictDates:       getEnvBool("STRICT_DATES", false),
		HealthCriticalPct: getEnvFloat("HEALTH_CRITICAL_PCT", 1),
		HealthLowPct:      getEnvFloat("HEALTH_LOW_PCT", 10),
		HealthStablePct:   getEnvFloat("HEALTH_STABLE_PCT", 30),
		TrailingPoints:    getEnvInt("TRAILING_POINTS", 12),
		MaxSessions:       getEnvInt("MAX_SESSIONS", 10000),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	return cfg, nil
}

// Validate reports every configuration problem at once
func (c *Config) Validate() error {
	var problems []string

	switch c.DataBackend {
	case BackendMemory:
	case BackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			problems = append(problems, "SUPABASE_URL and SUPABASE_KEY are required for the supabase backend")
		}
	case BackendFirestore:
		if c.FirebaseProjectID == "" {
			problems = append(problems, "FIREBASE_PROJECT_ID is required for the firestore backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required for the postgres backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend %q: must be one of memory, supabase, firestore, postgres", c.DataBackend))
	}

	switch c.StateBackend {
	case StateMemory:
	case StateSQLite:
		if c.StateDBPath == "" {
			problems = append(problems, "STATE_DB_PATH cannot be empty for the sqlite state backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid state backend %q: must be memory or sqlite", c.StateBackend))
	}

	switch c.AuthMode {
	case AuthLocal:
		if len(c.JWTSecret) < 8 {
			problems = append(problems, "JWT_SECRET must be at least 8 characters for local auth")
		}
	case AuthFirebase:
		if c.FirebaseProjectID == "" {
			problems = append(problems, "FIREBASE_PROJECT_ID is required for firebase auth")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid auth mode %q: must be local or firebase", c.AuthMode))
	}

	if c.ApplyPolicy != PolicyEager && c.ApplyPolicy != PolicyConfirm {
		problems = append(problems, fmt.Sprintf("invalid apply policy %q: must be eager or confirm", c.ApplyPolicy))
	}

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %q", c.Port))
	}

	if !(c.HealthCriticalPct <= c.HealthLowPct && c.HealthLowPct <= c.HealthStablePct) {
		problems = append(problems, fmt.Sprintf("health thresholds must be ascending, got %v/%v/%v",
			c.HealthCriticalPct, c.HealthLowPct, c.HealthStablePct))
	}

	if c.TrailingPoints < 1 {
		problems = append(problems, fmt.Sprintf("invalid trailing points %d: must be at least 1", c.TrailingPoints))
	}

	if c.MaxSessions < 1 {
		problems = append(problems, fmt.Sprintf("invalid max sessions %d: must be at least 1", c.MaxSessions))
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		problems = append(problems, "rate limit must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
