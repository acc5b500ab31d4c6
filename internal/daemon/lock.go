package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning is returned when another daemon holds the lock
var ErrAlreadyRunning = errors.New("daemon already running")

// Lock is an exclusive lock on a file next to the socket
type Lock struct {
	fl *flock.Flock
}

// LockPath returns the lock file used for a socket path
func LockPath(socketPath string) string {
	return socketPath + ".lock"
}

// AcquireLock takes the single-instance lock without blocking
func AcquireLock(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock held on %s)", ErrAlreadyRunning, path)
	}
	return &Lock{fl: fl}, nil
}

// Release unlocks and removes the lock file
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	_ = os.Remove(l.fl.Path())
	return nil
}
