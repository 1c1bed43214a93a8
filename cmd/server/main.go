// Package main is the entry point for the GitHub statistics server.
//
// The main package stays minimal: load the configuration, build a logger,
// hand both to internal/server and block until shutdown. Everything else
// lives in the internal packages so it can be tested without a process.
//
// CONFIGURATION:
// Every setting comes from the environment (or a .env file); see
// internal/config for the variable names and defaults. The smallest useful
// setup is:
//
//	JWT_SECRET=$(openssl rand -hex 32)
//	GITHUB_CLIENT_ID=...
//	GITHUB_CLIENT_SECRET=...
//
// Without those three the server still starts, but login is disabled and
// every visitor sees empty statistics.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/sakif/gitstats/internal/config"
	"github.com/sakif/gitstats/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// Templates and static files are looked up relative to the working
	// directory; `go run ./cmd/server` from the repo root just works.
	if err := cfg.ResolvePaths(); err != nil {
		logger.Error("failed to resolve paths", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
