// Package lock serializes soundctl processes that change device state, so
// that two quick increase presses add up instead of racing on the same
// read-modify-write.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// retryDelay is the polling interval while another process holds the lock
const retryDelay = 20 * time.Millisecond

// ErrNotAcquired means ctx ended before the lock became free
var ErrNotAcquired = errors.New("lock not acquired")

// FileLock wraps github.com/gofrs/flock with logging
type FileLock struct {
	path  string
	flock *flock.Flock
}

// New creates a lock on path. The file is created on first use.
func New(path string) *FileLock {
	return &FileLock{
		path:  path,
		flock: flock.New(path),
	}
}

// Path returns the lock file path
func (l *FileLock) Path() string {
	return l.path
}

// Acquire blocks until the lock is held or ctx is done
func (l *FileLock) Acquire(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	locked, err := l.flock.TryLockContext(ctx, retryDelay)
	if err != nil && ctx.Err() == nil {
		slog.Error("failed to acquire file lock", "file_path", l.path, "error", err)
		return fmt.Errorf("lock %s: %w", l.path, err)
	}
	if !locked {
		return fmt.Errorf("%w: %s: %w", ErrNotAcquired, l.path, ctx.Err())
	}

	slog.Debug("file lock acquired", "file_path", l.path)
	return nil
}

// TryLock takes the lock if it is free. It returns false, without error,
// when another holder has it.
func (l *FileLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("create lock directory: %w", err)
	}
	locked, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("lock %s: %w", l.path, err)
	}
	slog.Debug("try-lock result", "file_path", l.path, "locked", locked)
	return locked, nil
}

// Unlock releases the lock
func (l *FileLock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		slog.Error("failed to release file lock", "file_path", l.path, "error", err)
		return err
	}
	slog.Debug("file lock released", "file_path", l.path)
	return nil
}
