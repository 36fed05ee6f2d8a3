//go:build !cgo

package chime

import (
	"context"
	"fmt"
	"log/slog"
)

type stubPlayer struct {
	err error
}

// NewPlayer returns a system command player. Without cgo miniaudio is not
// linked, so the chime cannot target a device.
func NewPlayer() Player {
	player, err := NewCommandPlayer()
	if err != nil {
		slog.Debug("no chime player available", "error", err)
		return stubPlayer{err: fmt.Errorf("chime playback needs a cgo build or a playback command: %w", err)}
	}
	return player
}

func (p stubPlayer) Play(context.Context, *Sound, string) error {
	return p.err
}

func (stubPlayer) Close() error {
	return nil
}
