package events

import (
	"errors"
	"io/fs"
	"syscall"
)

// Client errors
var (
	ErrNilClient    = errors.New("nil event client")
	ErrClientClosed = errors.New("event client closed")
	ErrQueueFull    = errors.New("event queue full")
	ErrNotConnected = errors.New("not connected to daemon")
)

// ErrorCode names why the daemon could not be reached
type ErrorCode int

const (
	ErrSocketNotFound ErrorCode = iota
	ErrSocketPermission
	ErrDaemonNotRunning
	ErrConnectionRefused
)

// DaemonError explains a failed daemon connection with a hint for the user
type DaemonError struct {
	Code    ErrorCode
	Message string
	Hint    string
	Err     error
}

func (e *DaemonError) Error() string {
	if e.Hint != "" {
		return e.Message + ". " + e.Hint
	}
	return e.Message
}

func (e *DaemonError) Unwrap() error {
	return e.Err
}

const startHint = "Start the daemon: nutriboard-daemon &"

// ClassifyDaemonError maps a dial or socket error to a DaemonError
func ClassifyDaemonError(err error) *DaemonError {
	if err == nil {
		return nil
	}

	var errno syscall.Errno
	isErrno := errors.As(err, &errno)

	switch {
	case errors.Is(err, fs.ErrNotExist) || (isErrno && errno == syscall.ENOENT):
		return &DaemonError{Code: ErrSocketNotFound, Message: "daemon socket not found", Hint: startHint, Err: err}
	case errors.Is(err, fs.ErrPermission) || (isErrno && (errno == syscall.EACCES || errno == syscall.EPERM)):
		return &DaemonError{
			Code:    ErrSocketPermission,
			Message: "permission denied on daemon socket",
			Hint:    "Check ~/.nutriboard/ permissions: chmod 700 ~/.nutriboard/",
			Err:     err,
		}
	case isErrno && errno == syscall.ECONNREFUSED:
		return &DaemonError{
			Code:    ErrConnectionRefused,
			Message: "daemon refused the connection",
			Hint:    "The daemon may have crashed; remove the stale socket and restart it",
			Err:     err,
		}
	}
	return &DaemonError{Code: ErrDaemonNotRunning, Message: "daemon not running", Hint: startHint, Err: err}
}
