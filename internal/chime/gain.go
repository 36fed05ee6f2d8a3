package chime

import "log/slog"

// applyGain scales samples in place by gain
func applyGain(samples []byte, format SampleFormat, gain float64) {
	if gain == 1.0 {
		return
	}

	switch format {
	case FormatS16:
		for i := 0; i+1 < len(samples); i += 2 {
			sample := int16(samples[i]) | int16(samples[i+1])<<8
			sample = int16(float64(sample) * gain)
			samples[i] = byte(sample)
			samples[i+1] = byte(sample >> 8)
		}
	case FormatS24:
		for i := 0; i+2 < len(samples); i += 3 {
			sample := int32(samples[i]) | int32(samples[i+1])<<8 | int32(samples[i+2])<<16
			// sign extend from 24 bits
			if sample&0x800000 != 0 {
				sample |= ^0xFFFFFF
			}
			sample = int32(float64(sample) * gain)
			samples[i] = byte(sample)
			samples[i+1] = byte(sample >> 8)
			samples[i+2] = byte(sample >> 16)
		}
	case FormatS32:
		for i := 0; i+3 < len(samples); i += 4 {
			sample := int32(samples[i]) | int32(samples[i+1])<<8 | int32(samples[i+2])<<16 | int32(samples[i+3])<<24
			sample = int32(float64(sample) * gain)
			samples[i] = byte(sample)
			samples[i+1] = byte(sample >> 8)
			samples[i+2] = byte(sample >> 16)
			samples[i+3] = byte(sample >> 24)
		}
	default:
		slog.Warn("gain not implemented for format", "format", format)
	}
}

// putSample writes val little endian at the width of format
func putSample(dst []byte, format SampleFormat, val int) []byte {
	switch format {
	case FormatS16:
		return append(dst, byte(val), byte(val>>8))
	case FormatS24:
		return append(dst, byte(val), byte(val>>8), byte(val>>16))
	default:
		return append(dst, byte(val), byte(val>>8), byte(val>>16), byte(val>>24))
	}
}
