// Package logging sets up the process-wide slog logger.
package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
)

// Logger is the global slog instance for the application
var Logger *slog.Logger

// DefaultDir returns ~/.nutriboard/logs
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".nutriboard", "logs"), nil
}

// Init writes logs at or above level to ~/.nutriboard/logs/nutriboard.log.
// Uses text format for human readability. The returned closer flushes the file.
func Init(level slog.Level) (io.Closer, error) {
	logDir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return InitDir(logDir, level)
}

// InitDir is Init with an explicit log directory
func InitDir(logDir string, level slog.Level) (io.Closer, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	logPath := filepath.Join(logDir, "nutriboard.log")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	handler := slog.NewTextHandler(file, &slog.HandlerOptions{
		Level: level,
	})

	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	// Redirect standard log package output to the same file
	log.SetOutput(file)
	log.SetFlags(log.LstdFlags)

	return file, nil
}
