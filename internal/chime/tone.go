package chime

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// ToneSampleRate is the sample rate of generated tones
const ToneSampleRate = beep.SampleRate(44100)

// fadeFrames ramps the tone in and out to avoid clicks
const fadeFrames = 441

// Tone generates a stereo 16-bit sine tone at frequency for duration, scaled
// by gain
func Tone(frequency float64, duration time.Duration, gain float64) (*Sound, error) {
	if frequency <= 0 || duration <= 0 {
		return nil, fmt.Errorf("%w: tone of %.0f Hz for %s", ErrInvalidData, frequency, duration)
	}

	sine, err := generators.SineTone(ToneSampleRate, frequency)
	if err != nil {
		return nil, fmt.Errorf("generate sine tone: %w", err)
	}

	frames := ToneSampleRate.N(duration)
	volume := &effects.Volume{
		Streamer: beep.Take(frames, sine),
		Base:     2,
		Volume:   math.Log2(gain),
		Silent:   gain <= 0,
	}

	buf := make([][2]float64, 512)
	raw := make([]byte, 0, frames*4)
	pos := 0
	for {
		n, ok := volume.Stream(buf)
		for i := 0; i < n; i++ {
			fade := envelope(pos, frames)
			for ch := 0; ch < 2; ch++ {
				raw = putSample(raw, FormatS16, int(clamp(buf[i][ch]*fade)*math.MaxInt16))
			}
			pos++
		}
		if !ok || n == 0 {
			break
		}
	}

	return &Sound{
		Samples:    raw,
		Channels:   2,
		SampleRate: uint32(ToneSampleRate),
		Format:     FormatS16,
	}, nil
}

func envelope(pos, frames int) float64 {
	fade := min(fadeFrames, frames/2)
	if fade == 0 {
		return 1
	}
	switch {
	case pos < fade:
		return float64(pos) / float64(fade)
	case pos >= frames-fade:
		return float64(frames-pos) / float64(fade)
	default:
		return 1
	}
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
