// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validYAML = `
matrix:
  homeserver: "https://matrix.example.org"
  username: "finance-bot"
  password: "secret"
  allowed_rooms:
    - "!room1:example.org"
  command_prefix: "!fin "

database:
  driver: "sqlite"
  path: "./test.db"
  timeout: "2s"

rates:
  url: "http://localhost:5000/rate"
  timeout: "3s"
  base_currency: "rub"
  currencies: ["usd", "eur"]

dialog:
  idle_timeout: "10m"

events:
  kafka:
    enabled: true
    brokers: ["localhost:9092"]

rate_service:
  addr: ":6000"
  rates:
    USD: 90.5

logging:
  level: "debug"
  format: "json"
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", validYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Matrix.Homeserver != "https://matrix.example.org" {
		t.Errorf("Matrix.Homeserver = %q, want %q", cfg.Matrix.Homeserver, "https://matrix.example.org")
	}
	if len(cfg.Matrix.AllowedRooms) != 1 {
		t.Errorf("Matrix.AllowedRooms len = %d, want 1", len(cfg.Matrix.AllowedRooms))
	}
	if cfg.Matrix.CommandPrefix != "!fin " {
		t.Errorf("Matrix.CommandPrefix = %q, want %q", cfg.Matrix.CommandPrefix, "!fin ")
	}
	if cfg.Database.Path != "./test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./test.db")
	}
	if cfg.Database.Timeout != 2*time.Second {
		t.Errorf("Database.Timeout = %v, want %v", cfg.Database.Timeout, 2*time.Second)
	}
	if cfg.Rates.Timeout != 3*time.Second {
		t.Errorf("Rates.Timeout = %v, want %v", cfg.Rates.Timeout, 3*time.Second)
	}
	if cfg.Rates.BaseCurrency != "RUB" {
		t.Errorf("Rates.BaseCurrency = %q, want %q", cfg.Rates.BaseCurrency, "RUB")
	}
	if strings.Join(cfg.Rates.Currencies, ",") != "USD,EUR" {
		t.Errorf("Rates.Currencies = %v, want [USD EUR]", cfg.Rates.Currencies)
	}
	if cfg.Dialog.IdleTimeout != 10*time.Minute {
		t.Errorf("Dialog.IdleTimeout = %v, want %v", cfg.Dialog.IdleTimeout, 10*time.Minute)
	}
	if !cfg.Events.Kafka.Enabled {
		t.Error("Events.Kafka.Enabled = false, want true")
	}
	if cfg.Events.Kafka.Topic != DefaultKafkaTopic {
		t.Errorf("Events.Kafka.Topic = %q, want %q", cfg.Events.Kafka.Topic, DefaultKafkaTopic)
	}
	if cfg.RateService.Addr != ":6000" {
		t.Errorf("RateService.Addr = %q, want %q", cfg.RateService.Addr, ":6000")
	}
	if cfg.RateService.Rates["USD"] != 90.5 {
		t.Errorf("RateService.Rates[USD] = %v, want 90.5", cfg.RateService.Rates["USD"])
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
}

func TestLoad_ValidTOML(t *testing.T) {
	content := `
[matrix]
homeserver = "https://matrix.example.org"
user_id = "@bot:example.org"
access_token = "token"

[database]
driver = "postgres"
dsn = "postgres://localhost/finance?sslmode=disable"

[rates]
url = "https://rates.example.org/rate"
currencies = ["EUR", "USD"]

[logging]
level = "warn"
`
	cfg, err := Load(writeConfig(t, "config.toml", content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Matrix.AccessToken != "token" {
		t.Errorf("Matrix.AccessToken = %q, want %q", cfg.Matrix.AccessToken, "token")
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Database.Driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Database.Path != "" {
		t.Errorf("Database.Path = %q, want empty for postgres", cfg.Database.Path)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_MATRIX_PASSWORD", "from-env")
	t.Setenv("TEST_RATES_URL", "http://rates.internal/rate")

	content := strings.Replace(validYAML, `password: "secret"`, `password: "${TEST_MATRIX_PASSWORD}"`, 1)
	content = strings.Replace(content, `url: "http://localhost:5000/rate"`, `url: "${TEST_RATES_URL}"`, 1)

	cfg, err := Load(writeConfig(t, "config.yaml", content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Matrix.Password != "from-env" {
		t.Errorf("Matrix.Password = %q, want %q", cfg.Matrix.Password, "from-env")
	}
	if cfg.Rates.URL != "http://rates.internal/rate" {
		t.Errorf("Rates.URL = %q, want %q", cfg.Rates.URL, "http://rates.internal/rate")
	}
}

func TestLoad_UnsetEnvVarIsEmpty(t *testing.T) {
	content := strings.Replace(validYAML, `password: "secret"`, `password: "${TEST_UNSET_PASSWORD_VAR}"`, 1)

	_, err := Load(writeConfig(t, "config.yaml", content))
	if err == nil {
		t.Fatal("Load() expected error for empty password")
	}
	if !strings.Contains(err.Error(), "matrix.password") {
		t.Errorf("error = %v, want mention of matrix.password", err)
	}
}

func TestRead_Defaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	cfg, err := Read(writeConfig(t, "config.yaml", "matrix:\n  homeserver: https://m.org\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if cfg.Database.Driver != DefaultDatabaseDriver {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DefaultDatabaseDriver)
	}
	if want := filepath.Join("/tmp/xdg-data", "finance-bot", "finance.db"); cfg.Database.Path != want {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, want)
	}
	if cfg.Database.Timeout != DefaultDatabaseTimeout {
		t.Errorf("Database.Timeout = %v, want %v", cfg.Database.Timeout, DefaultDatabaseTimeout)
	}
	if cfg.Rates.URL != DefaultRatesURL {
		t.Errorf("Rates.URL = %q, want %q", cfg.Rates.URL, DefaultRatesURL)
	}
	if cfg.Rates.BaseCurrency != "RUB" {
		t.Errorf("Rates.BaseCurrency = %q, want RUB", cfg.Rates.BaseCurrency)
	}
	if strings.Join(cfg.Rates.Currencies, ",") != "EUR,USD" {
		t.Errorf("Rates.Currencies = %v, want [EUR USD]", cfg.Rates.Currencies)
	}
	if cfg.Dialog.IdleTimeout != DefaultIdleTimeout {
		t.Errorf("Dialog.IdleTimeout = %v, want %v", cfg.Dialog.IdleTimeout, DefaultIdleTimeout)
	}
	if cfg.RateService.Addr != DefaultRateServiceAddr {
		t.Errorf("RateService.Addr = %q, want %q", cfg.RateService.Addr, DefaultRateServiceAddr)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v, want info/text", cfg.Logging)
	}
}

func TestDefaults_DoNotShareCurrencySlice(t *testing.T) {
	cfg := Defaults()
	cfg.Rates.Currencies[0] = "GBP"
	if DefaultCurrencies[0] != "EUR" {
		t.Errorf("DefaultCurrencies mutated: %v", DefaultCurrencies)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	content := strings.Replace(validYAML, `idle_timeout: "10m"`, `idle_timeout: "soon"`, 1)

	_, err := Load(writeConfig(t, "config.yaml", content))
	if err == nil {
		t.Fatal("Load() expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "idle_timeout") {
		t.Errorf("error = %v, want mention of idle_timeout", err)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for nonexistent file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "config.yaml", "matrix: [unclosed"))
	if err == nil {
		t.Error("Load() expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing homeserver", func(c *Config) { c.Matrix.Homeserver = "" }, "matrix.homeserver"},
		{"bad homeserver scheme", func(c *Config) { c.Matrix.Homeserver = "ftp://m.org" }, "http or https"},
		{"token without user id", func(c *Config) {
			c.Matrix.AccessToken = "tok"
			c.Matrix.UserID = ""
		}, "matrix.user_id"},
		{"missing username", func(c *Config) { c.Matrix.Username = "" }, "matrix.username"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }, "database.dsn"},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"negative db timeout", func(c *Config) { c.Database.Timeout = -time.Second }, "database.timeout"},
		{"missing rates url", func(c *Config) { c.Rates.URL = "" }, "rates.url"},
		{"unknown base", func(c *Config) { c.Rates.BaseCurrency = "XYZ" }, "base_currency"},
		{"one currency", func(c *Config) { c.Rates.Currencies = []string{"USD"} }, "exactly two"},
		{"unknown currency", func(c *Config) { c.Rates.Currencies = []string{"USD", "QQQ"} }, "QQQ"},
		{"base in currencies", func(c *Config) { c.Rates.Currencies = []string{"USD", "RUB"} }, "base currency"},
		{"duplicate currency", func(c *Config) { c.Rates.Currencies = []string{"USD", "USD"} }, "twice"},
		{"zero rates timeout", func(c *Config) { c.Rates.Timeout = 0 }, "rates.timeout"},
		{"zero idle timeout", func(c *Config) { c.Dialog.IdleTimeout = 0 }, "idle_timeout"},
		{"kafka without brokers", func(c *Config) {
			c.Events.Kafka.Enabled = true
			c.Events.Kafka.Brokers = nil
		}, "brokers"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Read(writeConfig(t, "config.yaml", validYAML))
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRateService(t *testing.T) {
	cfg := Defaults()
	if err := cfg.ValidateRateService(); err != nil {
		t.Errorf("ValidateRateService() on defaults error = %v", err)
	}

	cfg.RateService.Rates = map[string]float64{"USD": -1}
	if err := cfg.ValidateRateService(); err == nil {
		t.Error("ValidateRateService() expected error for negative rate")
	}

	cfg.RateService.Rates = map[string]float64{"NOPE": 1}
	if err := cfg.ValidateRateService(); err == nil {
		t.Error("ValidateRateService() expected error for unknown currency")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("TEST_DOTENV_VALUE=loaded\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Setenv("TEST_DOTENV_VALUE", "")
	os.Unsetenv("TEST_DOTENV_VALUE")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("TEST_DOTENV_VALUE"); got != "loaded" {
		t.Errorf("TEST_DOTENV_VALUE = %q, want %q", got, "loaded")
	}
}

func TestLoadDotEnv_KeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TEST_DOTENV_KEEP=file\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Setenv("TEST_DOTENV_KEEP", "process")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("TEST_DOTENV_KEEP"); got != "process" {
		t.Errorf("TEST_DOTENV_KEEP = %q, want %q", got, "process")
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("LoadDotEnv() error = %v, want nil for missing file", err)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("FINANCE_BOT_CONFIG", "/etc/finance-bot.yaml")
	if got := DefaultPath(); got != "/etc/finance-bot.yaml" {
		t.Errorf("DefaultPath() = %q, want env override", got)
	}

	t.Setenv("FINANCE_BOT_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got, want := DefaultPath(), filepath.Join("/tmp/xdg", "finance-bot", "config.yaml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}
