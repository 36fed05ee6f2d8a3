package chime

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	"github.com/youpy/go-wav"
)

// WavDecoder handles WAV audio format decoding
type WavDecoder struct{}

// NewWavDecoder creates a new WAV decoder instance
func NewWavDecoder() *WavDecoder {
	return &WavDecoder{}
}

// Decode reads WAV audio data from reader and returns decoded PCM data
func (d *WavDecoder) Decode(reader io.Reader) (*Sound, error) {
	// go-wav needs a ReadSeeker
	data, err := io.ReadAll(reader)
	if err != nil {
		slog.Error("failed to read WAV data", "error", err)
		return nil, ErrReadFailure
	}
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	wavReader := wav.NewReader(bytes.NewReader(data))

	format, err := wavReader.Format()
	if err != nil {
		slog.Error("failed to read WAV format", "error", err)
		return nil, ErrInvalidData
	}
	if format.NumChannels == 0 || format.SampleRate == 0 {
		slog.Error("invalid WAV format parameters",
			"channels", format.NumChannels,
			"sample_rate", format.SampleRate)
		return nil, ErrInvalidData
	}

	sampleFormat, err := formatForBits(int(format.BitsPerSample))
	if err != nil {
		return nil, err
	}

	var raw []byte
	frames := 0
	for {
		samples, err := wavReader.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Error("failed to read WAV samples", "error", err)
			return nil, ErrReadFailure
		}
		if len(samples) == 0 {
			break
		}

		for _, sample := range samples {
			for ch := 0; ch < int(format.NumChannels); ch++ {
				val := 0
				if ch < len(sample.Values) {
					val = sample.Values[ch]
				}
				raw = putSample(raw, sampleFormat, val)
			}
		}
		frames += len(samples)
	}

	if frames == 0 {
		slog.Error("no audio data found in WAV file")
		return nil, ErrInvalidData
	}

	sound := &Sound{
		Samples:    raw,
		Channels:   uint32(format.NumChannels),
		SampleRate: uint32(format.SampleRate),
		Format:     sampleFormat,
	}

	slog.Debug("WAV decode completed",
		"frames", frames,
		"channels", sound.Channels,
		"sample_rate", sound.SampleRate,
		"format", sampleFormat)

	return sound, nil
}

// CanDecode checks if this decoder can handle the given filename
func (d *WavDecoder) CanDecode(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".wav") || strings.HasSuffix(lower, ".wave")
}

// FormatName returns the name of the format this decoder handles
func (d *WavDecoder) FormatName() string {
	return "WAV"
}
