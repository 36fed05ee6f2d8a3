package chime

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
)

// AiffDecoder handles AIFF audio format decoding
type AiffDecoder struct{}

// NewAiffDecoder creates a new AIFF decoder instance
func NewAiffDecoder() *AiffDecoder {
	return &AiffDecoder{}
}

// FormatName returns the name of the format this decoder handles
func (d *AiffDecoder) FormatName() string {
	return "AIFF"
}

// CanDecode checks if this decoder can handle the given filename
func (d *AiffDecoder) CanDecode(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".aiff") || strings.HasSuffix(lower, ".aif")
}

// Decode reads AIFF audio data from reader and returns decoded PCM data
func (d *AiffDecoder) Decode(reader io.Reader) (*Sound, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		slog.Error("failed to read AIFF data", "error", err)
		return nil, ErrReadFailure
	}
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	decoder := aiff.NewDecoder(bytes.NewReader(data))
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		slog.Error("invalid AIFF file format")
		return nil, ErrInvalidData
	}

	sampleRate := uint32(decoder.SampleRate)
	channels := uint32(decoder.NumChans)
	bitDepth := int(decoder.SampleBitDepth())
	if channels == 0 || sampleRate == 0 {
		slog.Error("invalid AIFF format parameters", "channels", channels, "sample_rate", sampleRate)
		return nil, ErrInvalidData
	}

	sampleFormat, err := formatForBits(bitDepth)
	if err != nil {
		return nil, err
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		slog.Error("failed to read AIFF samples", "error", err)
		return nil, ErrReadFailure
	}
	if pcm == nil || len(pcm.Data) == 0 {
		slog.Error("no audio data found in AIFF file")
		return nil, ErrInvalidData
	}

	sound := &Sound{
		Samples:    intBufferBytes(pcm, sampleFormat),
		Channels:   channels,
		SampleRate: sampleRate,
		Format:     sampleFormat,
	}

	slog.Debug("AIFF decode completed",
		"samples", len(pcm.Data),
		"channels", channels,
		"sample_rate", sampleRate,
		"format", sampleFormat)

	return sound, nil
}

// intBufferBytes packs an interleaved go-audio buffer as little endian PCM
func intBufferBytes(buf *audio.IntBuffer, format SampleFormat) []byte {
	raw := make([]byte, 0, len(buf.Data)*format.BytesPerSample())
	for _, sample := range buf.Data {
		raw = putSample(raw, format, sample)
	}
	return raw
}
