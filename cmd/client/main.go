package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"gastos/internal/client/app"
	"gastos/internal/client/session"
	"gastos/internal/config"
	"gastos/internal/logging"
	"gastos/internal/store"
)

func main() {
	cfg := config.LoadClient()

	mode := flag.String("mode", cfg.Mode, "persistence backend: auto, remote, device or memory")
	apiURL := flag.String("api", cfg.APIBaseURL, "remote API base URL")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	cfg.Mode = *mode
	cfg.APIBaseURL = *apiURL

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx := context.Background()
	sessions := session.NewManager(cfg.SessionPath)

	s, activeMode, err := store.Open(ctx, cfg, sessions, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	logger.Debug(ctx, "store selected", "mode", activeMode)

	controller := app.New(s, activeMode, sessions, cfg.APIBaseURL, logger, os.Stdout)
	if err := controller.Run(ctx, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
