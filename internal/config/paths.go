// ABOUTME: Default locations for the config file and data directory
// ABOUTME: Follows the XDG base directory conventions with home directory fallbacks

package config

import (
	"os"
	"path/filepath"
)

// appName is the directory name used under the XDG config and data roots
const appName = "finance-bot"

// DefaultPath returns the path to the bot config file.
// Priority: FINANCE_BOT_CONFIG env var > XDG_CONFIG_HOME/finance-bot/config.yaml > ~/.config/finance-bot/config.yaml
func DefaultPath() string {
	if envPath := os.Getenv("FINANCE_BOT_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, appName, "config.yaml")
}

// DataDir returns the directory for the ledger database and crypto store.
// Priority: XDG_DATA_HOME/finance-bot > ~/.local/share/finance-bot
func DataDir() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, appName)
}
