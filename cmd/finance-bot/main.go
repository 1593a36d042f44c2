// ABOUTME: Entry point for finance-bot
// ABOUTME: Runs the Matrix finance bot, writes its config and checks its dependencies

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/Enne678/RGZ-1SEM/internal/config"
	"github.com/Enne678/RGZ-1SEM/internal/conversation"
	"github.com/Enne678/RGZ-1SEM/internal/events"
	"github.com/Enne678/RGZ-1SEM/internal/logging"
	"github.com/Enne678/RGZ-1SEM/internal/matrix"
	"github.com/Enne678/RGZ-1SEM/internal/rates"
	"github.com/Enne678/RGZ-1SEM/internal/session"
	"github.com/Enne678/RGZ-1SEM/internal/store"
)

// version is set at build time via -ldflags
var version = "dev"

const banner = `
  __ _                             _           _
 / _(_)_ __   __ _ _ __   ___ ___| |__   ___ | |_
| |_| | '_ \ / _' | '_ \ / __/ _ \ '_ \ / _ \| __|
|  _| | | | | (_| | | | | (_|  __/ |_) | (_) | |_
|_| |_|_| |_|\__,_|_| |_|\___\___|_.__/ \___/ \__|
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: finance-bot <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the bot")
		fmt.Println("  init     Create a new config file interactively")
		fmt.Println("  check    Validate the config and probe the rate service")
		fmt.Println("  version  Print the version")
		os.Exit(1)
	}

	// .env values are visible to ${VAR} expansion in the config file
	if err := config.LoadDotEnv(os.Getenv("FINANCE_BOT_DOTENV")); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "check":
		err = runCheck(ctx)
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := config.DefaultPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", configPath, err)
	}

	logger := logging.New(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	printStartup(configPath, cfg)

	dataPath := config.DataDir()
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	ledger, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer ledger.Close()

	publisher, err := newPublisher(cfg.Events, logger)
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	defer publisher.Close()

	sessions := session.NewStore(cfg.Dialog.IdleTimeout, logger)
	defer sessions.Close()

	engine, err := conversation.New(conversation.Config{
		BaseCurrency: cfg.Rates.BaseCurrency,
		Currencies:   cfg.Rates.Currencies,
		Timeout:      max(cfg.Database.Timeout, cfg.Rates.Timeout),
	},
		ledger,
		rates.NewClient(cfg.Rates.URL, cfg.Rates.Timeout, logger),
		sessions,
		publisher,
		logger,
	)
	if err != nil {
		return fmt.Errorf("creating conversation engine: %w", err)
	}

	bridge, err := matrix.NewBridge(cfg.Matrix, engine, logger)
	if err != nil {
		return fmt.Errorf("creating bridge: %w", err)
	}
	defer bridge.Close()

	// Login to Matrix (required before crypto setup)
	if err := bridge.Login(ctx); err != nil {
		return fmt.Errorf("matrix login: %w", err)
	}

	if cfg.Matrix.RecoveryKey != "" {
		crypto, err := matrix.SetupCrypto(ctx, bridge.Client(), cfg.Matrix.RecoveryKey, dataPath, logger)
		if err != nil {
			return fmt.Errorf("setting up encryption: %w", err)
		}
		defer crypto.Close()
	} else {
		logger.Info("encryption disabled (no recovery key)")
	}

	logger.Info("starting finance-bot",
		"config", configPath,
		"driver", cfg.Database.Driver,
		"base_currency", cfg.Rates.BaseCurrency,
	)
	return bridge.Run(ctx)
}

func printStartup(configPath string, cfg *config.Config) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:     %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Homeserver: %s\n", cfg.Matrix.Homeserver)
	green.Print("    ▶ ")
	fmt.Printf("Database:   %s\n", cfg.Database.Driver)
	green.Print("    ▶ ")
	fmt.Printf("Rates:      %s\n", cfg.Rates.URL)
	green.Print("    ▶ ")
	fmt.Printf("Currencies: %s + %v\n", cfg.Rates.BaseCurrency, cfg.Rates.Currencies)
	if cfg.Events.Kafka.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Kafka:      %v ", cfg.Events.Kafka.Brokers)
		yellow.Printf("[%s]\n", cfg.Events.Kafka.Topic)
	}
	if cfg.Matrix.RecoveryKey != "" {
		green.Print("    ▶ ")
		fmt.Println("Encryption: enabled")
	}
	fmt.Println()
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, error) {
	source := cfg.Path
	if cfg.Driver == store.DriverPostgres {
		source = cfg.DSN
	}
	openCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	return store.Open(openCtx, cfg.Driver, source)
}

func newPublisher(cfg config.EventsConfig, logger *slog.Logger) (events.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return events.Nop{}, nil
	}
	publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

func runCheck(ctx context.Context) error {
	configPath := config.DefaultPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("    ✓ ")
	fmt.Printf("Config valid: %s\n", configPath)

	client := rates.NewClient(cfg.Rates.URL, cfg.Rates.Timeout, slog.Default())
	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("rate service: %w", err)
	}
	green.Print("    ✓ ")
	fmt.Printf("Rate service healthy: %s\n", cfg.Rates.URL)

	for _, code := range cfg.Rates.Currencies {
		q, err := client.Lookup(ctx, code)
		if err != nil {
			return fmt.Errorf("rate for %s: %w", code, err)
		}
		green.Print("    ✓ ")
		fmt.Printf("1 %s = %s %s\n", q.Currency, q.Rate.String(), cfg.Rates.BaseCurrency)
	}
	return nil
}
