package chime

import (
	"bytes"
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWavRoundTrip(t *testing.T) {
	tone, err := Tone(440, 20*time.Millisecond, 0.8)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeWav(&buf, tone))

	decoded, err := NewWavDecoder().Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, tone.Channels, decoded.Channels)
	assert.Equal(t, tone.SampleRate, decoded.SampleRate)
	assert.Equal(t, FormatS16, decoded.Format)
	assert.Equal(t, tone.Samples, decoded.Samples)
}

func TestWriteWavScales24Bit(t *testing.T) {
	sound := &Sound{
		Samples:    []byte{0x00, 0x00, 0x40, 0x00, 0x00, 0xc0}, // 4194304, -4194304
		Channels:   1,
		SampleRate: 8000,
		Format:     FormatS24,
	}

	var buf bytes.Buffer
	require.NoError(t, writeWav(&buf, sound))

	decoded, err := NewWavDecoder().Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x40, 0x00, 0xc0}, decoded.Samples)
}

func TestWriteWavRejectsSurround(t *testing.T) {
	sound := &Sound{Samples: make([]byte, 12), Channels: 6, SampleRate: 48000, Format: FormatS16}
	assert.ErrorIs(t, writeWav(&bytes.Buffer{}, sound), ErrUnsupportedFormat)
}

func TestCommandPlayer(t *testing.T) {
	path, err := exec.LookPath("true")
	if err != nil {
		t.Skip("no true command on this system")
	}

	tone, err := Tone(440, 10*time.Millisecond, 0.5)
	require.NoError(t, err)

	require.NoError(t, NewCommandPlayerWith(path).Play(context.Background(), tone, "Speakers"))

	err = NewCommandPlayerWith("/nonexistent/player").Play(context.Background(), tone, "")
	assert.Error(t, err)
}
