package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/thenoetrevino/nutriboard/internal/app"
	"github.com/thenoetrevino/nutriboard/internal/cli"
	"github.com/thenoetrevino/nutriboard/internal/config"
	"github.com/thenoetrevino/nutriboard/internal/daemon"
	"github.com/thenoetrevino/nutriboard/internal/logging"
)

func main() {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, daemon.ErrAlreadyRunning) {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Fprintf(os.Stderr, "nutriboard daemon: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logCloser, err := logging.Init(cfg.SlogLevel())
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() {
		_ = logCloser.Close()
	}()

	socketPath, err := cfg.Socket()
	if err != nil {
		return err
	}

	lock, err := daemon.AcquireLock(daemon.LockPath(socketPath))
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			slog.Error("failed to release daemon lock", "error", err)
		}
	}()

	var opts []daemon.Option
	if cfg.RepairInterval > 0 {
		// repair passes are announced by the server itself, so the app
		// gets no event publisher
		store, err := cli.OpenStore(ctx, cfg)
		if err != nil {
			return err
		}
		application := app.New(store)
		defer func() {
			if err := application.Close(); err != nil {
				slog.Error("error closing store", "error", err)
			}
		}()
		opts = append(opts, daemon.WithRepair(application.RepairJob(), cfg.RepairInterval))
	}

	server, err := daemon.NewServer(socketPath, opts...)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	slog.Info("nutriboard daemon starting",
		"socket_path", socketPath,
		"pid", os.Getpid(),
		"store", cfg.Store,
		"repair_interval", cfg.RepairInterval)

	// Start blocks until shutdown
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("daemon error: %w", err)
	}

	m := server.Metrics().GetSnapshot()
	slog.Info("nutriboard daemon shutting down gracefully",
		"events_received", m.EventsReceived,
		"repairs_run", m.RepairsRun,
		"repair_failures", m.RepairFailures)
	return nil
}
