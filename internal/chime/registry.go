package chime

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DecoderRegistry manages audio format decoders and provides format detection
type DecoderRegistry struct {
	decoders []Decoder
}

// NewDecoderRegistry creates a new empty decoder registry
func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{}
}

// NewDefaultRegistry creates a registry with WAV, MP3 and AIFF decoders
func NewDefaultRegistry() *DecoderRegistry {
	registry := NewDecoderRegistry()
	registry.Register(NewWavDecoder())
	registry.Register(NewMp3Decoder())
	registry.Register(NewAiffDecoder())
	return registry
}

// Register adds a decoder to the registry. Earlier registrations win ties.
func (r *DecoderRegistry) Register(decoder Decoder) {
	if decoder == nil {
		slog.Warn("attempted to register nil decoder")
		return
	}
	r.decoders = append(r.decoders, decoder)
	slog.Debug("decoder registered", "format", decoder.FormatName(), "total_decoders", len(r.decoders))
}

// SupportedFormats returns the format names of every registered decoder
func (r *DecoderRegistry) SupportedFormats() []string {
	formats := make([]string, 0, len(r.decoders))
	for _, decoder := range r.decoders {
		formats = append(formats, decoder.FormatName())
	}
	return formats
}

// DetectFormat detects the decoder by filename extension only
func (r *DecoderRegistry) DetectFormat(filename string) Decoder {
	if filename == "" {
		return nil
	}
	for _, decoder := range r.decoders {
		if decoder.CanDecode(filename) {
			return decoder
		}
	}
	return nil
}

// DetectFormatWithContent detects the decoder from magic bytes in header,
// falling back to the filename extension
func (r *DecoderRegistry) DetectFormatWithContent(filename string, header []byte) Decoder {
	if len(header) == 0 {
		return r.DetectFormat(filename)
	}

	detected := strings.ToLower(mimetype.Detect(header).String())

	var format string
	switch {
	case strings.Contains(detected, "wav") || detected == "audio/vnd.wave":
		format = "WAV"
	case strings.Contains(detected, "mpeg") || strings.Contains(detected, "mp3"):
		format = "MP3"
	case strings.Contains(detected, "aiff"):
		format = "AIFF"
	}

	if decoder := r.findDecoderByFormat(format); decoder != nil {
		slog.Debug("format detected by magic bytes",
			"filename", filename,
			"format", decoder.FormatName(),
			"mime_type", detected)
		return decoder
	}

	slog.Debug("magic detection failed, falling back to extension", "filename", filename, "mime_type", detected)
	return r.DetectFormat(filename)
}

func (r *DecoderRegistry) findDecoderByFormat(formatName string) Decoder {
	if formatName == "" {
		return nil
	}
	for _, decoder := range r.decoders {
		if strings.EqualFold(decoder.FormatName(), formatName) {
			return decoder
		}
	}
	return nil
}

// DecodeFile buffers reader and decodes it with the detected decoder
func (r *DecoderRegistry) DecodeFile(filename string, reader io.Reader) (*Sound, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	header := content
	if len(header) > 512 {
		header = header[:512]
	}

	decoder := r.DetectFormatWithContent(filename, header)
	if decoder == nil {
		slog.Error("no suitable decoder found", "filename", filename)
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}

	sound, err := decoder.Decode(bytes.NewReader(content))
	if err != nil {
		slog.Error("decode operation failed",
			"filename", filename,
			"decoder_format", decoder.FormatName(),
			"error", err)
		return nil, fmt.Errorf("decode %s as %s: %w", filename, decoder.FormatName(), err)
	}
	return sound, nil
}
