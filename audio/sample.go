// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DecodeSample reads one little-endian sample from b and scales it to
// [-1, 1]. Float formats are returned as stored.
func (f SampleFormat) DecodeSample(b []byte) float64 {
	switch f.Packed() {
	case FormatU8:
		return (float64(b[0]) - 128) / 128
	case FormatS16:
		return float64(int16(binary.LittleEndian.Uint16(b))) / (1 << 15)
	case FormatS32:
		return float64(int32(binary.LittleEndian.Uint32(b))) / (1 << 31)
	case FormatS64:
		return float64(int64(binary.LittleEndian.Uint64(b))) / (1 << 63)
	case FormatFLT:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case FormatDBL:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	default:
		return 0
	}
}

// EncodeSample writes v into b, clamping integer formats to their range.
func (f SampleFormat) EncodeSample(b []byte, v float64) {
	switch f.Packed() {
	case FormatU8:
		b[0] = uint8(clampRound(v*128+128, 0, math.MaxUint8))
	case FormatS16:
		binary.LittleEndian.PutUint16(b, uint16(int16(clampRound(v*(1<<15), math.MinInt16, math.MaxInt16))))
	case FormatS32:
		binary.LittleEndian.PutUint32(b, uint32(int32(clampRound(v*(1<<31), math.MinInt32, math.MaxInt32))))
	case FormatS64:
		// float64 cannot hold MaxInt64, so clamp against the nearest value below it.
		x := math.Round(v * (1 << 63))
		var i int64
		switch {
		case x >= 1<<63:
			i = math.MaxInt64
		case x <= -(1 << 63):
			i = math.MinInt64
		default:
			i = int64(x)
		}
		binary.LittleEndian.PutUint64(b, uint64(i))
	case FormatFLT:
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
	case FormatDBL:
		binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	}
}

func clampRound(v, lo, hi float64) float64 {
	v = math.Round(v)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DecodeSamples converts nbSamples per channel of data into one float64
// slice per channel.
func DecodeSamples(data [][]byte, nbSamples, channels int, f SampleFormat) ([][]float64, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, f)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}

	bps := f.BytesPerSample()
	out := make([][]float64, channels)
	for c := range out {
		out[c] = make([]float64, nbSamples)
	}

	if f.IsPlanar() {
		if len(data) < channels {
			return nil, fmt.Errorf("%w: %d planes for %d channels", ErrShortBuffer, len(data), channels)
		}
		for c := range channels {
			if len(data[c]) < nbSamples*bps {
				return nil, ErrShortBuffer
			}
			for i := range nbSamples {
				out[c][i] = f.DecodeSample(data[c][i*bps:])
			}
		}
		return out, nil
	}

	if len(data) == 0 || len(data[0]) < SamplesBufferSize(channels, nbSamples, f) {
		return nil, ErrShortBuffer
	}
	buf := data[0]
	for i := range nbSamples {
		for c := range channels {
			out[c][i] = f.DecodeSample(buf[(i*channels+c)*bps:])
		}
	}
	return out, nil
}

// EncodeSamples writes the first nbSamples of each channel in src into dst,
// which must be laid out for f (see AllocSamples).
func EncodeSamples(dst [][]byte, src [][]float64, nbSamples int, f SampleFormat) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, f)
	}

	channels := len(src)
	bps := f.BytesPerSample()

	if f.IsPlanar() {
		if len(dst) < channels {
			return ErrShortBuffer
		}
		for c := range channels {
			if len(dst[c]) < nbSamples*bps || len(src[c]) < nbSamples {
				return ErrShortBuffer
			}
			for i := range nbSamples {
				f.EncodeSample(dst[c][i*bps:], src[c][i])
			}
		}
		return nil
	}

	if len(dst) == 0 || len(dst[0]) < SamplesBufferSize(channels, nbSamples, f) {
		return ErrShortBuffer
	}
	buf := dst[0]
	for c := range channels {
		if len(src[c]) < nbSamples {
			return ErrShortBuffer
		}
		for i := range nbSamples {
			f.EncodeSample(buf[(i*channels+c)*bps:], src[c][i])
		}
	}
	return nil
}
