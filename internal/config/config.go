// ABOUTME: Configuration loading and parsing for finance-bot and rate-service
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied by Read when a value is absent
const (
	DefaultDatabaseDriver  = "sqlite"
	DefaultDatabaseTimeout = 5 * time.Second
	DefaultRatesURL        = "http://localhost:5000/rate"
	DefaultRatesTimeout    = 5 * time.Second
	DefaultBaseCurrency    = "RUB"
	DefaultIdleTimeout     = 30 * time.Minute
	DefaultKafkaTopic      = "entry.recorded"
	DefaultRateServiceAddr = ":5000"
)

// DefaultCurrencies are the foreign display currencies offered by default
var DefaultCurrencies = []string{"EUR", "USD"}

// Config represents the complete finance-bot configuration
type Config struct {
	Matrix      MatrixConfig      `yaml:"matrix" toml:"matrix"`
	Database    DatabaseConfig    `yaml:"database" toml:"database"`
	Rates       RatesConfig       `yaml:"rates" toml:"rates"`
	Dialog      DialogConfig      `yaml:"dialog" toml:"dialog"`
	Events      EventsConfig      `yaml:"events" toml:"events"`
	RateService RateServiceConfig `yaml:"rate_service" toml:"rate_service"`
	Logging     LoggingConfig     `yaml:"logging" toml:"logging"`
}

// MatrixConfig holds Matrix connection and bridge behaviour settings
type MatrixConfig struct {
	Homeserver  string `yaml:"homeserver" toml:"homeserver"`
	Username    string `yaml:"username" toml:"username"`
	Password    string `yaml:"password" toml:"password"`
	UserID      string `yaml:"user_id" toml:"user_id"`
	AccessToken string `yaml:"access_token" toml:"access_token"`
	RecoveryKey string `yaml:"recovery_key" toml:"recovery_key"`

	AllowedRooms    []string `yaml:"allowed_rooms" toml:"allowed_rooms"`
	CommandPrefix   string   `yaml:"command_prefix" toml:"command_prefix"`
	TypingIndicator bool     `yaml:"typing_indicator" toml:"typing_indicator"`
}

// DatabaseConfig selects and configures the ledger storage
type DatabaseConfig struct {
	Driver string `yaml:"driver" toml:"driver"` // sqlite or postgres
	Path   string `yaml:"path" toml:"path"`     // sqlite file
	DSN    string `yaml:"dsn" toml:"dsn"`       // postgres connection string

	Timeout    time.Duration `yaml:"-" toml:"-"`
	TimeoutRaw string        `yaml:"timeout" toml:"timeout"`
}

// RatesConfig configures the exchange rate client and display currencies
type RatesConfig struct {
	URL          string   `yaml:"url" toml:"url"`
	BaseCurrency string   `yaml:"base_currency" toml:"base_currency"`
	Currencies   []string `yaml:"currencies" toml:"currencies"`

	Timeout    time.Duration `yaml:"-" toml:"-"`
	TimeoutRaw string        `yaml:"timeout" toml:"timeout"`
}

// DialogConfig holds conversation settings
type DialogConfig struct {
	IdleTimeout    time.Duration `yaml:"-" toml:"-"`
	IdleTimeoutRaw string        `yaml:"idle_timeout" toml:"idle_timeout"`
}

// EventsConfig holds downstream event publishing settings
type EventsConfig struct {
	Kafka KafkaConfig `yaml:"kafka" toml:"kafka"`
}

// KafkaConfig holds Kafka publisher settings
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled" toml:"enabled"`
	Brokers []string `yaml:"brokers" toml:"brokers"`
	Topic   string   `yaml:"topic" toml:"topic"`
}

// RateServiceConfig configures the standalone rate service
type RateServiceConfig struct {
	Addr  string             `yaml:"addr" toml:"addr"`
	Rates map[string]float64 `yaml:"rates" toml:"rates"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Load reads a configuration file, applies defaults and validates the bot
// settings. Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Read parses a configuration file without validating it. Files ending in
// .toml are decoded as TOML, everything else as YAML.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Defaults returns a configuration with every default applied
func Defaults() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// LoadDotEnv loads KEY=VALUE pairs from a .env file into the environment.
// Variables already set are kept. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DefaultDatabaseDriver
	}
	if c.Database.Driver == DefaultDatabaseDriver && c.Database.Path == "" {
		c.Database.Path = filepath.Join(DataDir(), "finance.db")
	}
	if c.Database.TimeoutRaw == "" {
		c.Database.Timeout = DefaultDatabaseTimeout
	}

	if c.Rates.URL == "" {
		c.Rates.URL = DefaultRatesURL
	}
	if c.Rates.BaseCurrency == "" {
		c.Rates.BaseCurrency = DefaultBaseCurrency
	}
	c.Rates.BaseCurrency = strings.ToUpper(strings.TrimSpace(c.Rates.BaseCurrency))
	if len(c.Rates.Currencies) == 0 {
		c.Rates.Currencies = slices.Clone(DefaultCurrencies)
	}
	for i, code := range c.Rates.Currencies {
		c.Rates.Currencies[i] = strings.ToUpper(strings.TrimSpace(code))
	}
	if c.Rates.TimeoutRaw == "" {
		c.Rates.Timeout = DefaultRatesTimeout
	}

	if c.Dialog.IdleTimeoutRaw == "" {
		c.Dialog.IdleTimeout = DefaultIdleTimeout
	}

	if c.Events.Kafka.Topic == "" {
		c.Events.Kafka.Topic = DefaultKafkaTopic
	}

	if c.RateService.Addr == "" {
		c.RateService.Addr = DefaultRateServiceAddr
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if err := validateHTTPURL("matrix.homeserver", c.Matrix.Homeserver); err != nil {
		return err
	}
	if c.Matrix.AccessToken != "" {
		if c.Matrix.UserID == "" {
			return fmt.Errorf("matrix.user_id is required with matrix.access_token")
		}
	} else {
		if c.Matrix.Username == "" {
			return fmt.Errorf("matrix.username is required (or set matrix.access_token)")
		}
		if c.Matrix.Password == "" {
			return fmt.Errorf("matrix.password is required (or set matrix.access_token)")
		}
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.Timeout <= 0 {
		return fmt.Errorf("database.timeout must be positive")
	}

	if err := validateHTTPURL("rates.url", c.Rates.URL); err != nil {
		return err
	}
	if err := c.validateCurrencies(); err != nil {
		return err
	}
	if c.Rates.Timeout <= 0 {
		return fmt.Errorf("rates.timeout must be positive")
	}

	if c.Dialog.IdleTimeout <= 0 {
		return fmt.Errorf("dialog.idle_timeout must be positive")
	}

	if c.Events.Kafka.Enabled && len(c.Events.Kafka.Brokers) == 0 {
		return fmt.Errorf("events.kafka.brokers is required when kafka is enabled")
	}

	return c.validateLogging()
}

// ValidateRateService checks the settings used by the rate service
func (c *Config) ValidateRateService() error {
	if c.RateService.Addr == "" {
		return fmt.Errorf("rate_service.addr is required")
	}
	for code, rate := range c.RateService.Rates {
		if !knownCurrency(code) {
			return fmt.Errorf("rate_service.rates: unknown currency %q", code)
		}
		if rate <= 0 {
			return fmt.Errorf("rate_service.rates.%s must be positive", code)
		}
	}
	return c.validateLogging()
}

func (c *Config) validateCurrencies() error {
	base := c.Rates.BaseCurrency
	if !knownCurrency(base) {
		return fmt.Errorf("rates.base_currency %q is not an ISO 4217 code", base)
	}
	if len(c.Rates.Currencies) != 2 {
		return fmt.Errorf("rates.currencies must list exactly two currencies, got %d", len(c.Rates.Currencies))
	}
	for i, code := range c.Rates.Currencies {
		if !knownCurrency(code) {
			return fmt.Errorf("rates.currencies: %q is not an ISO 4217 code", code)
		}
		if code == base {
			return fmt.Errorf("rates.currencies: %s is the base currency", code)
		}
		if slices.Contains(c.Rates.Currencies[:i], code) {
			return fmt.Errorf("rates.currencies: %s is listed twice", code)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json")
	}
	return nil
}

func knownCurrency(code string) bool {
	return code != "" && money.GetCurrency(strings.ToUpper(code)) != nil
}

func validateHTTPURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https scheme", field)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host", field)
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Database.TimeoutRaw != "" {
		cfg.Database.Timeout, err = time.ParseDuration(cfg.Database.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing database.timeout %q: %w", cfg.Database.TimeoutRaw, err)
		}
	}

	if cfg.Rates.TimeoutRaw != "" {
		cfg.Rates.Timeout, err = time.ParseDuration(cfg.Rates.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing rates.timeout %q: %w", cfg.Rates.TimeoutRaw, err)
		}
	}

	if cfg.Dialog.IdleTimeoutRaw != "" {
		cfg.Dialog.IdleTimeout, err = time.ParseDuration(cfg.Dialog.IdleTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing dialog.idle_timeout %q: %w", cfg.Dialog.IdleTimeoutRaw, err)
		}
	}

	return nil
}
