package chime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/youpy/go-wav"
)

// playbackCommands are tried in order by NewCommandPlayer
var playbackCommands = []string{"paplay", "aplay", "afplay", "pw-play"}

// CommandPlayer plays sounds by handing a temporary WAV file to a system
// command. It cannot choose a device; every sound plays on the system
// default.
type CommandPlayer struct {
	command string
}

// NewCommandPlayer returns a player for the first playback command found on
// PATH
func NewCommandPlayer() (*CommandPlayer, error) {
	for _, command := range playbackCommands {
		if path, err := exec.LookPath(command); err == nil {
			slog.Debug("playback command found", "command", command, "path", path)
			return &CommandPlayer{command: path}, nil
		}
	}
	return nil, fmt.Errorf("no playback command found, tried %v", playbackCommands)
}

// NewCommandPlayerWith uses command as the playback command
func NewCommandPlayerWith(command string) *CommandPlayer {
	return &CommandPlayer{command: command}
}

// Play writes sound to a temporary WAV file and runs the command on it
func (p *CommandPlayer) Play(ctx context.Context, sound *Sound, device string) error {
	if device != "" {
		slog.Debug("playback command ignores the device, using system default", "device", device)
	}

	tempFile, err := os.CreateTemp("", "soundctl-chime-*.wav")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	if err := writeWav(tempFile, sound); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	cmd := exec.CommandContext(ctx, p.command, tempPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		slog.Error("playback command failed", "command", p.command, "output", string(out), "error", err)
		return fmt.Errorf("playback command %s failed: %w", p.command, err)
	}
	return nil
}

// Close implements Player
func (p *CommandPlayer) Close() error {
	return nil
}

// writeWav encodes sound as 16-bit PCM WAV. Only mono and stereo sounds are
// supported.
func writeWav(w io.Writer, sound *Sound) error {
	if sound.Channels < 1 || sound.Channels > 2 {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, sound.Channels)
	}
	size := sound.Format.BytesPerSample()
	if size == 0 {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, sound.Format)
	}

	frames := sound.Frames()
	samples := make([]wav.Sample, frames)
	frameSize := size * int(sound.Channels)
	for i := range samples {
		for ch := 0; ch < int(sound.Channels); ch++ {
			off := i*frameSize + ch*size
			samples[i].Values[ch] = to16(sound.Samples[off:off+size], sound.Format)
		}
	}

	writer := wav.NewWriter(w, uint32(frames), uint16(sound.Channels), sound.SampleRate, 16)
	if err := writer.WriteSamples(samples); err != nil {
		return fmt.Errorf("write WAV samples: %w", err)
	}
	return nil
}

// to16 reads one little endian sample and scales it to 16 bits
func to16(b []byte, format SampleFormat) int {
	switch format {
	case FormatS16:
		return int(int16(uint16(b[0]) | uint16(b[1])<<8))
	case FormatS24:
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if v&0x800000 != 0 {
			v |= ^0xFFFFFF
		}
		return int(v >> 8)
	default:
		v := int32(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
		return int(v >> 16)
	}
}
