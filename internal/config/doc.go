// Package config handles configuration loading for finance-bot and rate-service.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files with environment variable
// expansion. Files ending in .toml are decoded as TOML; anything else is YAML.
// A .env file can be loaded first with LoadDotEnv so that ${VAR} references
// resolve from it.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from FINANCE_BOT_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/finance-bot/config.yaml
//  3. ~/.config/finance-bot/config.yaml
//
// # Configuration Sections
//
//	matrix:
//	  homeserver: "https://matrix.org"
//	  username: "finance-bot"
//	  password: "${MATRIX_PASSWORD}"
//	  recovery_key: ""               # enables E2EE when set
//	  allowed_rooms: []              # empty = every joined room
//	  command_prefix: ""
//
//	database:
//	  driver: "sqlite"               # sqlite, postgres
//	  path: "/var/lib/finance-bot/finance.db"
//	  dsn: "${DATABASE_URL}"         # postgres only
//	  timeout: "5s"
//
//	rates:
//	  url: "http://localhost:5000/rate"
//	  timeout: "5s"
//	  base_currency: "RUB"
//	  currencies: ["EUR", "USD"]
//
//	dialog:
//	  idle_timeout: "30m"
//
//	events:
//	  kafka:
//	    enabled: false
//	    brokers: ["localhost:9092"]
//	    topic: "entry.recorded"
//
//	rate_service:
//	  addr: ":5000"
//	  rates:
//	    USD: 95.50
//	    EUR: 103.25
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates the bot settings: Matrix credentials, the database driver
// and its required field, ISO 4217 currency codes (exactly two foreign
// currencies, distinct from the base) and positive timeouts.
// ValidateRateService() checks only what the rate service needs.
package config
