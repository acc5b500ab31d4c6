// Package launcher runs a command tree with logging, styles and signal
// handling set up from the configuration.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/nutriboard/internal/cli"
	"github.com/thenoetrevino/nutriboard/internal/cli/styles"
	"github.com/thenoetrevino/nutriboard/internal/config"
	"github.com/thenoetrevino/nutriboard/internal/logging"
)

// Launch executes root and returns the process exit code
func Launch(root *cobra.Command) int {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	logDir, err := logging.DefaultDir()
	if err != nil {
		logDir = ""
	}
	return Run(ctx, root, os.Args[1:], logDir)
}

// Run executes root with args, logging to logDir. A configuration error is
// reported but does not stop the command; the command reports it again
// when it opens the store.
func Run(ctx context.Context, root *cobra.Command, args []string, logDir string) int {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}

	closer := initLogging(logDir, cfg.SlogLevel())
	defer func() {
		if err := closer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}()

	styles.Init(cfg.ColorScheme)

	root.SetArgs(args)
	err = root.ExecuteContext(ctx)
	if err == nil {
		return cli.ExitSuccess
	}

	var coded *cli.CodedError
	if !errors.As(err, &coded) {
		// cobra usage errors and anything a command did not report itself
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		if errors.Is(err, context.Canceled) {
			return cli.ExitError
		}
		slog.Debug("command failed", "error", err)
		return cli.ExitUsage
	}
	slog.Debug("command failed", "exit_code", coded.Code, "error", err)
	return coded.Code
}

// initLogging sends slog output to the log file, or discards it when the
// file cannot be opened so command output stays clean
func initLogging(dir string, level slog.Level) io.Closer {
	if dir == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return nopCloser{}
	}
	closer, err := logging.InitDir(dir, level)
	if err != nil {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return nopCloser{}
	}
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
