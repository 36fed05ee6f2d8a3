package chime

import (
	"io"
	"log/slog"
	"strings"

	"github.com/hajimehoshi/go-mp3"
)

// Mp3Decoder handles MP3 audio format decoding
type Mp3Decoder struct{}

// NewMp3Decoder creates a new MP3 decoder instance
func NewMp3Decoder() *Mp3Decoder {
	return &Mp3Decoder{}
}

// Decode reads MP3 audio data from reader. go-mp3 always produces 16-bit
// stereo.
func (d *Mp3Decoder) Decode(reader io.Reader) (*Sound, error) {
	decoder, err := mp3.NewDecoder(reader)
	if err != nil {
		slog.Error("failed to create MP3 decoder", "error", err)
		return nil, ErrInvalidData
	}

	sampleRate := decoder.SampleRate()
	if sampleRate <= 0 {
		slog.Error("invalid MP3 sample rate", "sample_rate", sampleRate)
		return nil, ErrInvalidData
	}

	samples, err := io.ReadAll(decoder)
	if err != nil {
		slog.Error("failed to read MP3 PCM data", "error", err)
		return nil, ErrReadFailure
	}
	if len(samples) == 0 {
		slog.Error("no audio data found in MP3 file")
		return nil, ErrInvalidData
	}

	sound := &Sound{
		Samples:    samples,
		Channels:   2,
		SampleRate: uint32(sampleRate),
		Format:     FormatS16,
	}

	slog.Debug("MP3 decode completed",
		"bytes", len(samples),
		"sample_rate", sound.SampleRate,
		"duration_ms", sound.Duration().Milliseconds())

	return sound, nil
}

// CanDecode checks if this decoder can handle the given filename
func (d *Mp3Decoder) CanDecode(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".mp3") || strings.HasSuffix(lower, ".mpeg")
}

// FormatName returns the name of the format this decoder handles
func (d *Mp3Decoder) FormatName() string {
	return "MP3"
}
