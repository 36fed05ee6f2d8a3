//go:build cgo

package chime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unsafe"

	"github.com/gen2brain/malgo"
)

// MalgoPlayer plays sounds through miniaudio
type MalgoPlayer struct {
	mu  sync.Mutex
	ctx *malgo.AllocatedContext
}

// NewPlayer creates a miniaudio player. The audio context is created on
// first use.
func NewPlayer() Player {
	return &MalgoPlayer{}
}

func (p *MalgoPlayer) audioContext() (*malgo.AllocatedContext, error) {
	if p.ctx != nil {
		return p.ctx, nil
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		slog.Debug("malgo internal", "message", message)
	})
	if err != nil {
		slog.Error("failed to initialize audio context", "error", err)
		return nil, fmt.Errorf("initialize audio context: %w", err)
	}
	p.ctx = ctx
	return ctx, nil
}

// deviceID finds the playback device named name, or nil for the default
func deviceID(ctx *malgo.AllocatedContext, name string) unsafe.Pointer {
	if name == "" {
		return nil
	}

	devices, err := ctx.Devices(malgo.Playback)
	if err != nil {
		slog.Debug("cannot enumerate playback devices, using default", "error", err)
		return nil
	}
	for _, dev := range devices {
		if dev.Name() == name {
			slog.Debug("chime device found", "device", name)
			return dev.ID.Pointer()
		}
	}

	slog.Debug("chime device not found, using default", "device", name)
	return nil
}

func malgoFormat(f SampleFormat) (malgo.FormatType, error) {
	switch f {
	case FormatS16:
		return malgo.FormatS16, nil
	case FormatS24:
		return malgo.FormatS24, nil
	case FormatS32:
		return malgo.FormatS32, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

// Play implements Player
func (p *MalgoPlayer) Play(ctx context.Context, sound *Sound, device string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	format, err := malgoFormat(sound.Format)
	if err != nil {
		return err
	}

	audioCtx, err := p.audioContext()
	if err != nil {
		return err
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = format
	deviceConfig.Playback.Channels = sound.Channels
	deviceConfig.SampleRate = sound.SampleRate
	deviceConfig.Alsa.NoMMap = 1
	if id := deviceID(audioCtx, device); id != nil {
		deviceConfig.Playback.DeviceID = id
	}

	var (
		pos      int
		done     = make(chan struct{})
		doneOnce sync.Once
	)

	onSamples := func(output, _ []byte, _ uint32) {
		n := copy(output, sound.Samples[min(pos, len(sound.Samples)):])
		pos += n

		// the whole buffer must be written or the tail plays garbage
		clear(output[n:])

		if pos >= len(sound.Samples) {
			doneOnce.Do(func() { close(done) })
		}
	}

	dev, err := malgo.InitDevice(audioCtx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onSamples})
	if err != nil {
		return fmt.Errorf("initialize playback device: %w", err)
	}
	defer dev.Uninit()

	if err := dev.Start(); err != nil {
		return fmt.Errorf("start playback: %w", err)
	}

	timer := time.NewTimer(sound.Duration() + 500*time.Millisecond)
	defer timer.Stop()

	select {
	case <-done:
		// let the device drain its last period
		time.Sleep(100 * time.Millisecond)
	case <-timer.C:
		slog.Debug("chime playback timed out")
	case <-ctx.Done():
		slog.Debug("chime playback cancelled")
	}

	_ = dev.Stop()
	return ctx.Err()
}

// Close releases the audio context
func (p *MalgoPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx == nil {
		return nil
	}
	err := p.ctx.Uninit()
	p.ctx.Free()
	p.ctx = nil
	return err
}
