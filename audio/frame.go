// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// StreamFormat describes one side of a PCM stream.
type StreamFormat struct {
	SampleRate int
	Layout     ChannelLayout
	Format     SampleFormat
}

// Channels returns the channel count implied by the layout.
func (s StreamFormat) Channels() int { return s.Layout.Channels() }

func (s StreamFormat) String() string {
	return fmt.Sprintf("%d Hz, %s, %s", s.SampleRate, s.Layout, s.Format)
}

// Frame is a block of decoded PCM owned by the caller. Data holds one buffer
// per channel when Format is planar and a single interleaved buffer
// otherwise. Samples are little-endian.
type Frame struct {
	NbSamples  int
	Format     SampleFormat
	Layout     ChannelLayout
	Channels   int
	SampleRate int
	Data       [][]byte
}

// Size returns the total number of bytes across all buffers.
func (f *Frame) Size() int {
	n := 0
	for _, p := range f.Data {
		n += len(p)
	}
	return n
}

// StreamFormat returns the frame's rate, layout and sample format.
func (f *Frame) StreamFormat() StreamFormat {
	return StreamFormat{SampleRate: f.SampleRate, Layout: f.Layout, Format: f.Format}
}

// SamplesBufferSize returns the bytes needed for nbSamples per channel.
func SamplesBufferSize(channels, nbSamples int, f SampleFormat) int {
	return channels * nbSamples * f.BytesPerSample()
}

// AllocSamples allocates zeroed buffers for nbSamples per channel laid out
// the way f requires.
func AllocSamples(channels, nbSamples int, f SampleFormat) [][]byte {
	if f.IsPlanar() {
		planes := make([][]byte, channels)
		for c := range planes {
			planes[c] = make([]byte, nbSamples*f.BytesPerSample())
		}
		return planes
	}
	return [][]byte{make([]byte, SamplesBufferSize(channels, nbSamples, f))}
}

// Shape copies nbSamples per channel out of raw into freshly allocated
// buffers: one per channel for planar formats, one in total otherwise.
//
// For planar formats raw may hold either one buffer per channel or a single
// buffer with the planes stored back to back.
func Shape(raw [][]byte, nbSamples, channels int, f SampleFormat) ([][]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, f)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}
	if nbSamples < 0 || len(raw) == 0 {
		return nil, ErrShortBuffer
	}

	total := SamplesBufferSize(channels, nbSamples, f)

	if !f.IsPlanar() {
		if len(raw[0]) < total {
			return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(raw[0]), total)
		}
		out := make([]byte, total)
		copy(out, raw[0])
		return [][]byte{out}, nil
	}

	per := total / channels
	out := make([][]byte, channels)

	switch len(raw) {
	case channels:
		for c := range out {
			if len(raw[c]) < per {
				return nil, fmt.Errorf("%w: plane %d has %d bytes, need %d", ErrShortBuffer, c, len(raw[c]), per)
			}
			out[c] = make([]byte, per)
			copy(out[c], raw[c])
		}
	case 1:
		if len(raw[0]) < total {
			return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(raw[0]), total)
		}
		for c := range out {
			out[c] = make([]byte, per)
			copy(out[c], raw[0][c*per:])
		}
	default:
		return nil, fmt.Errorf("%w: %d planes for %d channels", ErrShortBuffer, len(raw), channels)
	}

	return out, nil
}

// NewFrame shapes raw into a Frame described by sf.
func NewFrame(raw [][]byte, nbSamples int, sf StreamFormat, channels int) (*Frame, error) {
	data, err := Shape(raw, nbSamples, channels, sf.Format)
	if err != nil {
		return nil, err
	}
	return &Frame{
		NbSamples:  nbSamples,
		Format:     sf.Format,
		Layout:     sf.Layout,
		Channels:   channels,
		SampleRate: sf.SampleRate,
		Data:       data,
	}, nil
}
