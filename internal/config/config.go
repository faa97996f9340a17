package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Jirawatp058/random-buddy/internal/model"
)

// DefaultPath is the config file read when BUDDY_CONFIG is unset
const DefaultPath = "config.yaml"

// Config holds all server configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Admin    AdminConfig    `yaml:"admin"`
	Storage  StorageConfig  `yaml:"storage"`
	Exchange ExchangeConfig `yaml:"exchange"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host               string   `yaml:"host"`
	Port               int      `yaml:"port"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

// AdminConfig configures the shared admin credential
type AdminConfig struct {
	Password   string `yaml:"password"`
	SessionTTL string `yaml:"session_ttl"`
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type       string         `yaml:"type"` // memory, redis, sqlite, dynamodb
	RedisURL   string         `yaml:"redis_url"`
	SQLitePath string         `yaml:"sqlite_path"`
	DynamoDB   DynamoDBConfig `yaml:"dynamodb"`
}

// DynamoDBConfig configures the DynamoDB backend
type DynamoDBConfig struct {
	Table    string `yaml:"table"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// ExchangeConfig tunes matching and reset behavior
type ExchangeConfig struct {
	ResetPolicy   string `yaml:"reset_policy"` // clear_roster, keep_roster
	MaxAttempts   int    `yaml:"max_attempts"`
	ExactFallback bool   `yaml:"exact_fallback"`
	BcryptCost    int    `yaml:"bcrypt_cost"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// ValidStorageTypes lists the supported storage backends
var ValidStorageTypes = []string{"memory", "redis", "sqlite", "dynamodb"}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Admin: AdminConfig{
			SessionTTL: "12h",
		},
		Storage: StorageConfig{
			Type:       "memory",
			RedisURL:   "redis://localhost:6379",
			SQLitePath: "data/buddy.db",
			DynamoDB: DynamoDBConfig{
				Table:  "random-buddy",
				Region: "ap-southeast-1",
			},
		},
		Exchange: ExchangeConfig{
			ResetPolicy:   string(model.DefaultResetPolicy),
			MaxAttempts:   1000,
			ExactFallback: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from a YAML file and applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by BUDDY_CONFIG, or DefaultPath
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("BUDDY_CONFIG")
	if path == "" {
		path = DefaultPath
	}
	return Load(path)
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("BUDDY_ADMIN_PASSWORD"); v != "" {
		c.Admin.Password = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.CORSAllowedOrigins = splitList(v)
	}

	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Storage.RedisURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Storage.SQLitePath = v
	}
	if v := os.Getenv("DYNAMODB_TABLE"); v != "" {
		c.Storage.DynamoDB.Table = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.Storage.DynamoDB.Region = v
	}
	if v := os.Getenv("DYNAMODB_ENDPOINT"); v != "" {
		c.Storage.DynamoDB.Endpoint = v
	}

	if v := os.Getenv("RESET_POLICY"); v != "" {
		c.Exchange.ResetPolicy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Admin.Password == "" {
		return fmt.Errorf("admin password not configured (set admin.password or BUDDY_ADMIN_PASSWORD)")
	}
	if !slices.Contains(ValidStorageTypes, c.Storage.Type) {
		return fmt.Errorf("invalid storage type: %s (valid: %v)", c.Storage.Type, ValidStorageTypes)
	}
	if _, err := model.ParseResetPolicy(c.Exchange.ResetPolicy); err != nil {
		return err
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Exchange.MaxAttempts < 0 {
		return fmt.Errorf("invalid max_attempts: %d", c.Exchange.MaxAttempts)
	}
	if _, err := time.ParseDuration(c.Admin.SessionTTL); err != nil && c.Admin.SessionTTL != "" {
		return fmt.Errorf("invalid admin session_ttl %q: %w", c.Admin.SessionTTL, err)
	}
	if _, ok := parseLevel(c.Logging.Level); !ok {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	return nil
}

// SessionTTL returns the admin session lifetime
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Admin.SessionTTL)
	if err != nil || d <= 0 {
		return 12 * time.Hour
	}
	return d
}

// ResetPolicy returns the parsed reset policy, falling back to the default
func (c *Config) ResetPolicy() model.ResetPolicy {
	p, err := model.ParseResetPolicy(c.Exchange.ResetPolicy)
	if err != nil {
		return model.DefaultResetPolicy
	}
	return p
}

// NewLogger builds the application logger from the logging settings
func (c *Config) NewLogger() *slog.Logger {
	level, _ := parseLevel(c.Logging.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Logging.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
