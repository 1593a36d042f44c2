// ABOUTME: Entry point for rate-service
// ABOUTME: Serves fixed exchange rates over HTTP for the finance bot

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/Enne678/RGZ-1SEM/internal/config"
	"github.com/Enne678/RGZ-1SEM/internal/logging"
	"github.com/Enne678/RGZ-1SEM/internal/rates"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "optional config file with a rate_service section")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, addr string) error {
	cfg := config.Defaults()
	if configPath != "" {
		var err error
		if cfg, err = config.Read(configPath); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}
	if addr != "" {
		cfg.RateService.Addr = addr
	}
	if err := cfg.ValidateRateService(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	table := rates.DefaultTable()
	if len(cfg.RateService.Rates) > 0 {
		var err error
		if table, err = rates.NewTable(cfg.RateService.Rates); err != nil {
			return fmt.Errorf("building rate table: %w", err)
		}
	}

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Listening: %s\n", cfg.RateService.Addr)
	for _, code := range slices.Sorted(maps.Keys(table)) {
		green.Print("    ▶ ")
		fmt.Printf("%s = %s\n", code, table[code].String())
	}
	fmt.Println()

	srv := &http.Server{
		Addr:              cfg.RateService.Addr,
		Handler:           rates.NewHandler(table, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("rate service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down rate service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
