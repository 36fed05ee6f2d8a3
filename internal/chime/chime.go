package chime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"
)

// Player plays decoded sounds on a named output device. An empty device
// name, or one the player cannot find, means the system default.
type Player interface {
	Play(ctx context.Context, sound *Sound, device string) error
	Close() error
}

// Options selects the chime sound
type Options struct {
	File        string // resolved path; empty plays the generated tone
	Volume      float64
	FrequencyHz int
	DurationMs  int
}

// Chime loads and plays the confirmation sound
type Chime struct {
	fs       afero.Fs
	registry *DecoderRegistry
	player   Player
	opts     Options
}

// New creates a chime reading sound files through fsys
func New(fsys afero.Fs, player Player, opts Options) *Chime {
	return &Chime{
		fs:       fsys,
		registry: NewDefaultRegistry(),
		player:   player,
		opts:     opts,
	}
}

// Load decodes the configured file, or generates the tone when no file is
// configured
func (c *Chime) Load() (*Sound, error) {
	if c.opts.File == "" {
		return Tone(float64(c.opts.FrequencyHz), time.Duration(c.opts.DurationMs)*time.Millisecond, c.opts.Volume)
	}

	f, err := c.fs.Open(c.opts.File)
	if err != nil {
		return nil, fmt.Errorf("open chime file: %w", err)
	}
	defer f.Close()

	sound, err := c.registry.DecodeFile(c.opts.File, f)
	if err != nil {
		return nil, err
	}
	applyGain(sound.Samples, sound.Format, c.opts.Volume)
	return sound, nil
}

// Play loads the sound and plays it on device, blocking until playback
// ends or ctx is done
func (c *Chime) Play(ctx context.Context, device string) error {
	sound, err := c.Load()
	if err != nil {
		return err
	}

	slog.Debug("playing chime",
		"device", device,
		"file", c.opts.File,
		"duration_ms", sound.Duration().Milliseconds())

	if err := c.player.Play(ctx, sound, device); err != nil {
		return fmt.Errorf("play chime: %w", err)
	}
	return nil
}

// Close releases the player
func (c *Chime) Close() error {
	return c.player.Close()
}
