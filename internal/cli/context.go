package cli

import (
	"context"

	"github.com/thenoetrevino/nutriboard/internal/app"
	"github.com/thenoetrevino/nutriboard/internal/config"
)

type appKey struct{}

// WithApp returns a context carrying an existing App. Commands run with it
// use that App instead of opening the configured store.
func WithApp(ctx context.Context, a *app.App) context.Context {
	return context.WithValue(ctx, appKey{}, a)
}

// GetCLIFromContext returns a CLI over the App stored in ctx, or a new CLI
// built from the configuration
func GetCLIFromContext(ctx context.Context) (*CLI, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if a, ok := ctx.Value(appKey{}).(*app.App); ok && a != nil {
		return &CLI{App: a, Config: config.Default()}, nil
	}
	return NewCLI(ctx)
}
