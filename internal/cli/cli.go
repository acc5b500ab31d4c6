// Package cli holds the shared plumbing for the nutriboard commands: store
// selection, the optional daemon connection, output formatting and exit codes.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/thenoetrevino/nutriboard/internal/app"
	"github.com/thenoetrevino/nutriboard/internal/config"
	"github.com/thenoetrevino/nutriboard/internal/database"
	"github.com/thenoetrevino/nutriboard/internal/database/postgres"
	"github.com/thenoetrevino/nutriboard/internal/events"
)

// daemonDialTimeout bounds how long a command waits for the daemon
const daemonDialTimeout = 500 * time.Millisecond

// CLI represents the CLI application context
type CLI struct {
	App    *app.App // Application container with services
	Config *config.Config
	owned  bool // App was created here and must be closed here
}

// NewCLI loads the configuration, opens the configured store and connects
// to the daemon if one is running
func NewCLI(ctx context.Context) (*CLI, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var opts []app.Option
	if publisher := connectDaemon(ctx, cfg); publisher != nil {
		opts = append(opts, app.WithEventPublisher(publisher))
	}

	return &CLI{
		App:    app.New(store, opts...),
		Config: cfg,
		owned:  true,
	}, nil
}

// OpenStore opens the store selected by cfg.Store
func OpenStore(ctx context.Context, cfg *config.Config) (database.DataStore, error) {
	switch cfg.Store {
	case config.StorePostgres:
		store, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return store, nil
	case config.StoreSQLite, "":
		db, err := database.InitDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return database.NewRepository(db), nil
	}
	return nil, fmt.Errorf("%w: %q", config.ErrInvalidStore, cfg.Store)
}

// connectDaemon returns a connected event client, or nil when the daemon
// is not running. Commands work the same without it; other sessions just
// are not told to refresh.
func connectDaemon(ctx context.Context, cfg *config.Config) events.EventPublisher {
	socketPath, err := cfg.Socket()
	if err != nil {
		slog.Debug("no daemon socket", "error", err)
		return nil
	}

	client := events.NewClient(socketPath, cfg.EventDebounce)
	dialCtx, cancel := context.WithTimeout(ctx, daemonDialTimeout)
	defer cancel()

	if err := client.Connect(dialCtx); err != nil {
		daemonErr := events.ClassifyDaemonError(err)
		slog.Debug("daemon not reachable", "socket", socketPath, "message", daemonErr.Message, "hint", daemonErr.Hint)
		_ = client.Close()
		return nil
	}
	return client
}

// Close cleans up CLI resources
func (c *CLI) Close() error {
	if c == nil || !c.owned {
		return nil
	}
	return c.App.Close()
}
