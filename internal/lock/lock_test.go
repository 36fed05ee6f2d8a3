package lock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "soundctl", "soundctl.lock")
	l := New(path)

	require.NoError(t, l.Acquire(context.Background()))
	_, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, path, l.Path())
	require.NoError(t, l.Unlock())
}

func TestTryLockExcludesOtherHolders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soundctl.lock")
	first, second := New(path), New(path)

	locked, err := first.TryLock()
	require.NoError(t, err)
	require.True(t, locked)

	locked, err = second.TryLock()
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, first.Unlock())

	locked, err = second.TryLock()
	require.NoError(t, err)
	assert.True(t, locked)
	require.NoError(t, second.Unlock())
}

func TestAcquireTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soundctl.lock")
	holder := New(path)
	require.NoError(t, holder.Acquire(context.Background()))
	defer holder.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := New(path).Acquire(ctx)
	assert.True(t, errors.Is(err, ErrNotAcquired), "got %v", err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAcquireWaitsForRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soundctl.lock")
	holder := New(path)
	require.NoError(t, holder.Acquire(context.Background()))

	go func() {
		time.Sleep(50 * time.Millisecond)
		holder.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	waiter := New(path)
	require.NoError(t, waiter.Acquire(ctx))
	require.NoError(t, waiter.Unlock())
}
