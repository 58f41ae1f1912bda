// Package main provides vaultctl, a demonstration host for the vault engine.
//
// Because the reference BlobStore and CryptoProvider only live for the
// lifetime of one process, vaultctl does not model a server with a
// database. Instead it wires one Engine per invocation and offers two ways
// to drive it: a scripted end-to-end walkthrough (demo) and an interactive
// shell (repl) for poking at register/login/save-secret/lock by hand.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/vaultcore/internal/config"
	"github.com/allisson/vaultcore/internal/metrics"
	"github.com/allisson/vaultcore/internal/vault/cryptoport"
	"github.com/allisson/vaultcore/internal/vault/store"
	"github.com/allisson/vaultcore/internal/vault/usecase"
)

func main() {
	cmd := &cli.Command{
		Name:    "vaultctl",
		Usage:   "Demonstration host for the client-side encrypted identity vault engine",
		Version: "1.0.0",
		Commands: []*cli.Command{
			{
				Name:  "demo",
				Usage: "Run a scripted register/login/save-secret/lock walkthrough",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runDemo(ctx)
				},
			},
			{
				Name:  "repl",
				Usage: "Start an interactive shell against a fresh in-memory vault",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runRepl(ctx)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("vaultctl error", slog.Any("error", err))
		os.Exit(1)
	}
}

// newLogger creates and configures a structured logger based on the log level.
func newLogger(cfg *config.Config) *slog.Logger {
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// buildEngine wires a fresh Engine from configuration: load config, build
// the logger, the crypto provider and blob store, then the engine itself.
func buildEngine(ctx context.Context) (usecase.Engine, *slog.Logger, error) {
	cfg := config.Load()
	logger := newLogger(cfg)

	provider := cryptoport.NewReferenceProvider(cryptoport.ArgonParams{
		Time:    cfg.Argon2Time,
		Memory:  cfg.Argon2MemoryKB,
		Threads: cfg.Argon2Threads,
	})
	blobStore := store.NewMemoryStore()
	engine := usecase.New(provider, blobStore, logger)

	if !cfg.MetricsEnabled {
		logger.Info("metrics disabled, engine running unwrapped")
		if err := engine.Init(ctx); err != nil {
			return nil, nil, err
		}
		return engine, logger, nil
	}

	metricsProvider, err := metrics.NewProvider(cfg.MetricsNamespace)
	if err != nil {
		return nil, nil, err
	}
	businessMetrics, err := metrics.NewBusinessMetrics(metricsProvider.MeterProvider(), cfg.MetricsNamespace)
	if err != nil {
		return nil, nil, err
	}
	engine = usecase.NewEngineWithMetrics(engine, businessMetrics)

	if err := engine.Init(ctx); err != nil {
		return nil, nil, err
	}
	return engine, logger, nil
}
