// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"math"

	"github.com/ik5/pcmpipe/audio"
)

// Waveform generates a sample value in [-1, 1] given sample index and channel.
type Waveform func(sample int, channel int) float64

// Silence generates all zeros.
func Silence() Waveform {
	return func(sample int, channel int) float64 { return 0 }
}

// Constant generates the same value everywhere.
func Constant(value float64) Waveform {
	return func(sample int, channel int) float64 { return value }
}

// Sine generates a sine wave, identical on every channel.
func Sine(sampleRate int, frequency float64) Waveform {
	return func(sample int, channel int) float64 {
		t := float64(sample) / float64(sampleRate)
		return math.Sin(2 * math.Pi * frequency * t)
	}
}

// PerChannel gives channel c the constant values[c].
func PerChannel(values ...float64) Waveform {
	return func(sample int, channel int) float64 { return values[channel] }
}

// Samples renders n samples per channel starting at offset.
func Samples(channels, n, offset int, w Waveform) [][]float64 {
	out := make([][]float64, channels)
	for c := range out {
		out[c] = make([]float64, n)
		for i := range n {
			out[c][i] = w(offset+i, c)
		}
	}
	return out
}

// Frame renders n samples per channel starting at offset in the layout
// sf.Format requires.
func Frame(sf audio.StreamFormat, n, offset int, w Waveform) *audio.Frame {
	channels := sf.Channels()
	buf := audio.AllocSamples(channels, n, sf.Format)
	if err := audio.EncodeSamples(buf, Samples(channels, n, offset, w), n, sf.Format); err != nil {
		panic(err)
	}
	return &audio.Frame{
		NbSamples:  n,
		Format:     sf.Format,
		Layout:     sf.Layout,
		Channels:   channels,
		SampleRate: sf.SampleRate,
		Data:       buf,
	}
}

// PCM renders n samples per channel as one contiguous buffer; planar
// formats get their planes back to back.
func PCM(f audio.SampleFormat, channels, n, offset int, w Waveform) []byte {
	buf := audio.AllocSamples(channels, n, f)
	if err := audio.EncodeSamples(buf, Samples(channels, n, offset, w), n, f); err != nil {
		panic(err)
	}
	var out []byte
	for _, p := range buf {
		out = append(out, p...)
	}
	return out
}
