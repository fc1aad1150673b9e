package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// TeamMember is one entry of the /api/about listing.
type TeamMember struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

type Config struct {
	// HTTP Server
	Port               string        `yaml:"port" env:"PORT"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	ExposeErrorDetails bool          `yaml:"expose_error_details" env:"API_EXPOSE_ERROR_DETAILS"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Backend selection
	DataBackend string `yaml:"data_backend" env:"DATA_BACKEND"`

	// Database
	SQLiteDBPath  string `yaml:"sqlite_db_path" env:"SQLITE_DB_PATH"`
	PostgresDSN   string `yaml:"postgres_dsn" env:"POSTGRES_DSN"`
	MongoURI      string `yaml:"mongodb_uri" env:"MONGODB_URI"`
	MongoDatabase string `yaml:"mongodb_db" env:"MONGODB_DB"`
	UsersSeedFile string `yaml:"users_seed_file" env:"USERS_SEED_FILE"`

	// Reports
	ReportTimezone string        `yaml:"report_timezone" env:"REPORT_TIMEZONE"`
	CacheBackend   string        `yaml:"cache_backend" env:"CACHE_BACKEND"`
	CacheTTL       time.Duration `yaml:"cache_ttl" env:"CACHE_TTL"`
	CacheSize      int           `yaml:"cache_size" env:"CACHE_SIZE"`
	MemcachedHosts []string      `yaml:"memcached_hosts" env:"MEMCACHED_HOSTS" envSeparator:","`

	// AMQP
	AMQPURL      string `yaml:"amqp_url" env:"AMQP_URL"`
	AMQPExchange string `yaml:"amqp_exchange" env:"AMQP_EXCHANGE"`
	AMQPQueue    string `yaml:"amqp_queue" env:"AMQP_QUEUE"`

	// Reconciler
	ReconcileSchedule string `yaml:"reconcile_schedule" env:"RECONCILE_SCHEDULE"`

	// Logging
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	// Static info, file only
	Team []TeamMember `yaml:"team"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:               "8080",
		ShutdownTimeout:    10 * time.Second,
		CORSAllowedOrigins: []string{"*"},

		DataBackend:   "memory",
		SQLiteDBPath:  "./data/costs.db",
		MongoDatabase: "costs",

		ReportTimezone: "UTC",
		CacheBackend:   "memory",
		CacheTTL:       5 * time.Minute,
		CacheSize:      1000,

		AMQPExchange: "costs",
		AMQPQueue:    "cost_events",

		ReconcileSchedule: "0 3 * * *",

		LogLevel:  "info",
		LogFormat: "text",

		Team: []TeamMember{
			{FirstName: "Pavel", LastName: "Sagalov"},
			{FirstName: "Ofir", LastName: "Cohen"},
		},
	}
}

// Load layers the configuration: defaults, then the YAML file named by
// CONFIG_FILE, then the process environment. A .env file is loaded into the
// environment first, without overriding variables already set, so it may
// name CONFIG_FILE too.
func Load() (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Location resolves ReportTimezone.
func (c *Config) Location() (*time.Location, error) {
	if c.ReportTimezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.ReportTimezone)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}

	validBackends := []string{"memory", "sqlite", "postgres", "mongo"}
	if !contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			errors = append(errors, "POSTGRES_DSN is required when using postgres backend")
		}
	case "mongo":
		if c.MongoURI == "" {
			errors = append(errors, "MONGODB_URI is required when using mongo backend")
		}
		if c.MongoDatabase == "" {
			errors = append(errors, "MONGODB_DB cannot be empty when using mongo backend")
		}
	}

	if _, err := c.Location(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid report timezone '%s': %v", c.ReportTimezone, err))
	}

	validCaches := []string{"none", "memory", "memcached"}
	if !contains(validCaches, c.CacheBackend) {
		errors = append(errors, fmt.Sprintf("invalid cache backend '%s': must be one of %v", c.CacheBackend, validCaches))
	}
	if c.CacheBackend != "none" && c.CacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be positive", c.CacheTTL))
	}
	if c.CacheBackend == "memory" && c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheBackend == "memcached" && len(c.MemcachedHosts) == 0 {
		errors = append(errors, "MEMCACHED_HOSTS is required when using memcached cache")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := cron.ParseStandard(c.ReconcileSchedule); err != nil {
		errors = append(errors, fmt.Sprintf("invalid reconcile schedule '%s': %v", c.ReconcileSchedule, err))
	}

	if !contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	if !contains([]string{"text", "json"}, strings.ToLower(c.LogFormat)) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	for i, m := range c.Team {
		if strings.TrimSpace(m.FirstName) == "" && strings.TrimSpace(m.LastName) == "" {
			errors = append(errors, fmt.Sprintf("team member %d has no name", i))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
