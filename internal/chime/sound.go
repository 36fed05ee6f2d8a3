// Package chime plays the confirmation sound after a render device change.
// The sound is either a decoded WAV, MP3 or AIFF file or a short generated
// tone, and it plays on the device that was just changed when miniaudio can
// find it by name.
package chime

import (
	"errors"
	"io"
	"log/slog"
	"time"
)

// Common decoder errors
var (
	ErrInvalidData       = errors.New("invalid audio data")
	ErrReadFailure       = errors.New("failed to read audio data")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// SampleFormat is the encoding of one PCM sample
type SampleFormat int

// Supported sample formats, all signed little endian
const (
	FormatS16 SampleFormat = iota + 1
	FormatS24
	FormatS32
)

func (f SampleFormat) String() string {
	switch f {
	case FormatS16:
		return "s16"
	case FormatS24:
		return "s24"
	case FormatS32:
		return "s32"
	default:
		return "unknown"
	}
}

// BytesPerSample returns the size of one sample, or 0 for an unknown format
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FormatS16:
		return 2
	case FormatS24:
		return 3
	case FormatS32:
		return 4
	default:
		return 0
	}
}

// formatForBits maps a bit depth to its sample format
func formatForBits(bits int) (SampleFormat, error) {
	switch bits {
	case 16:
		return FormatS16, nil
	case 24:
		return FormatS24, nil
	case 32:
		return FormatS32, nil
	default:
		slog.Error("unsupported bit depth", "bits", bits)
		return 0, ErrUnsupportedFormat
	}
}

// Sound is decoded interleaved PCM ready for playback
type Sound struct {
	Samples    []byte
	Channels   uint32
	SampleRate uint32
	Format     SampleFormat
}

// Frames returns the number of sample frames
func (s *Sound) Frames() int {
	frameSize := int(s.Channels) * s.Format.BytesPerSample()
	if frameSize == 0 {
		return 0
	}
	return len(s.Samples) / frameSize
}

// Duration returns the playback length
func (s *Sound) Duration() time.Duration {
	if s.SampleRate == 0 {
		return 0
	}
	return time.Duration(s.Frames()) * time.Second / time.Duration(s.SampleRate)
}

// Decoder decodes one audio file format
type Decoder interface {
	// Decode reads audio data from reader and returns decoded PCM data
	Decode(reader io.Reader) (*Sound, error)

	// CanDecode checks if this decoder can handle the given filename
	CanDecode(filename string) bool

	// FormatName returns the name of the format this decoder handles
	FormatName() string
}
