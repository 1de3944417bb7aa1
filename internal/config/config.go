package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported persistence backends.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port         string
	DataBackend  string
	DatabaseURL  string
	SQLiteDBPath string

	JWTSecret     string
	JWTIssuer     string
	JWTTTL        time.Duration
	JWTRefreshTTL time.Duration
	CORSOrigins   []string

	// Location is the zone used to decide where "this month" starts.
	Location *time.Location

	LogLevel  string
	LogFormat string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	LegacyCSV           bool
	LegacyMonthlyChange bool
}

func read() (Config, error) {
	cfg := Config{
		Port:         fallback(os.Getenv("PORT"), "8080"),
		DataBackend:  strings.ToLower(fallback(os.Getenv("DATA_BACKEND"), BackendPostgres)),
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLiteDBPath: fallback(os.Getenv("SQLITE_DB_PATH"), "./data/fintrack.db"),
		JWTSecret:    strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:    fallback(os.Getenv("JWT_ISSUER"), "fintrack-backend"),
		CORSOrigins:  parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		LogLevel:     strings.ToLower(fallback(os.Getenv("LOG_LEVEL"), "info")),
		LogFormat:    strings.ToLower(fallback(os.Getenv("LOG_FORMAT"), "json")),
		AMQPURL:      strings.TrimSpace(os.Getenv("AMQP_URL")),
		AMQPExchange: fallback(os.Getenv("AMQP_EXCHANGE"), "fintrack"),
		AMQPQueue:    fallback(os.Getenv("AMQP_QUEUE"), "budget_alerts"),

		LegacyCSV:           parseBool(os.Getenv("REPORTS_LEGACY_CSV")),
		LegacyMonthlyChange: parseBool(os.Getenv("DASHBOARD_LEGACY_MONTHLY_CHANGE")),
	}

	cfg.JWTTTL = time.Duration(positiveInt(os.Getenv("JWT_TTL_MINUTES"), 60)) * time.Minute
	cfg.JWTRefreshTTL = time.Duration(positiveInt(os.Getenv("JWT_REFRESH_TTL_HOURS"), 168)) * time.Hour

	cfg.Location = time.Local
	if tz := strings.TrimSpace(os.Getenv("TZ")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return Config{}, fmt.Errorf("load TZ %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	return cfg, nil
}

// Load reads configuration from the environment and performs validation.
func Load() (Config, error) {
	cfg, err := read()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadWorker reads the subset of configuration the alerts worker needs.
func LoadWorker() (Config, error) {
	cfg, err := read()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.ValidateWorker(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLITE_DB_PATH is required")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]", c.DataBackend, BackendPostgres, BackendSQLite))
	}

	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be json or console", c.LogFormat))
	}
	if c.AMQPURL != "" && !strings.HasPrefix(c.AMQPURL, "amqp://") && !strings.HasPrefix(c.AMQPURL, "amqps://") {
		problems = append(problems, "AMQP_URL must use the amqp or amqps scheme")
	}

	if len(problems) > 0 {
		return errors.New("configuration validation failed:\n- " + strings.Join(problems, "\n- "))
	}
	return nil
}

// ValidateWorker checks the settings used by the alerts worker.
func (c Config) ValidateWorker() error {
	var problems []string
	if c.AMQPURL == "" {
		problems = append(problems, "AMQP_URL is required")
	} else if !strings.HasPrefix(c.AMQPURL, "amqp://") && !strings.HasPrefix(c.AMQPURL, "amqps://") {
		problems = append(problems, "AMQP_URL must use the amqp or amqps scheme")
	}
	if c.AMQPQueue == "" {
		problems = append(problems, "AMQP_QUEUE is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be json or console", c.LogFormat))
	}
	if len(problems) > 0 {
		return errors.New("configuration validation failed:\n- " + strings.Join(problems, "\n- "))
	}
	return nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(value string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		return n
	}
	return def
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && b
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
