// ABOUTME: Interactive config writer for finance-bot
// ABOUTME: Prompts for Matrix credentials and storage settings and writes a YAML config

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/Enne678/RGZ-1SEM/internal/config"
)

func runInit() error {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println("    Interactive Setup")
	fmt.Println("    -----------------")
	fmt.Println()

	configPath := config.DefaultPath()
	reader := bufio.NewReader(os.Stdin)

	if _, err := os.Stat(configPath); err == nil {
		yellow.Printf("    Config already exists at %s\n", configPath)
		if strings.ToLower(ask(reader, "Overwrite? [y/N]", "n")) != "y" {
			fmt.Println("    Aborted.")
			return nil
		}
		fmt.Println()
	}

	cfg := config.Defaults()
	cfg.Matrix.Homeserver = ask(reader, "Matrix homeserver URL", "https://matrix.org")
	cfg.Matrix.Username = ask(reader, "Matrix username", "")
	cfg.Matrix.Password = ask(reader, "Matrix password", "")
	cfg.Matrix.RecoveryKey = ask(reader, "Matrix recovery key (optional, for E2EE)", "")
	cfg.Matrix.CommandPrefix = ask(reader, "Command prefix (optional, e.g. '!fin ')", "")

	cfg.Database.Driver = ask(reader, "Database driver (sqlite/postgres)", config.DefaultDatabaseDriver)
	if cfg.Database.Driver == "postgres" {
		cfg.Database.Path = ""
		cfg.Database.DSN = ask(reader, "Postgres DSN", "${DATABASE_URL}")
	} else {
		cfg.Database.Path = ask(reader, "SQLite path", cfg.Database.Path)
	}

	cfg.Rates.URL = ask(reader, "Rate service URL", config.DefaultRatesURL)

	// Durations are written in their raw form
	cfg.Database.TimeoutRaw = cfg.Database.Timeout.String()
	cfg.Rates.TimeoutRaw = cfg.Rates.Timeout.String()
	cfg.Dialog.IdleTimeoutRaw = cfg.Dialog.IdleTimeout.String()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	content := "# finance-bot configuration\n# Generated by finance-bot init\n\n" + string(out)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Println()
	green.Printf("    ✓ Config written to %s\n", configPath)
	fmt.Println()
	fmt.Println("    Next steps:")
	fmt.Println("    1. Run: rate-service")
	fmt.Println("    2. Run: finance-bot check")
	fmt.Println("    3. Run: finance-bot serve")
	fmt.Println()

	return nil
}

// ask prints a prompt and returns the trimmed answer, or def when it is empty
func ask(reader *bufio.Reader, prompt, def string) string {
	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	if def != "" {
		fmt.Printf("%s [%s]: ", prompt, def)
	} else {
		fmt.Printf("%s: ", prompt)
	}
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def
	}
	return answer
}
