// SPDX-License-Identifier: EPL-2.0

package pcmpipe

import (
	"encoding/binary"
	"fmt"

	"github.com/ik5/pcmpipe/audio"
	"github.com/ik5/pcmpipe/media"
)

// ResampleToMono16 is a high-level convenience function that resamples audio to a target
// sample rate, converts it to mono, and collects all samples as 16-bit PCM data.
//
// This function creates a processing pipeline:
//  1. Decodes every frame of src
//  2. Resamples to targetRate using cubic interpolation
//  3. Downmixes the channels to mono
//  4. Converts the samples to signed 16-bit PCM
//
// Parameters:
//   - src: An opened media source; it is read to the end but not closed
//   - targetRate: Target sample rate in Hz (e.g., 8000, 16000, 44100, 48000)
//   - bufferSize: Samples read per step (e.g., 4096).
//     Larger buffers may be more efficient but use more memory
//
// Returns:
//   - []int16: Collected PCM samples as 16-bit signed integers
//   - int: The output sample rate (same as targetRate)
//   - error: Any error from decoding or resampling
//
// Example:
//
//	src, _ := media.Open("input.mp3")
//	defer src.Close()
//	pcm16, rate, err := pcmpipe.ResampleToMono16(src, 8000, 4096)
//	if err != nil {
//	    panic(err)
//	}
//	// pcm16 now contains mono 16-bit PCM at 8kHz
func ResampleToMono16(src *media.Source, targetRate int, bufferSize int, opts ...Option) ([]int16, int, error) {
	opts = append(opts, WithOutput(audio.StreamFormat{
		SampleRate: targetRate,
		Layout:     audio.LayoutMono,
		Format:     audio.FormatS16,
	}))

	p, err := New(src, opts...)
	if err != nil {
		return nil, targetRate, err
	}
	defer p.Close()

	// Start with about two seconds and grow as needed.
	pcm16 := make([]int16, 0, targetRate*2)
	r := NewReader(p, bufferSize*2)

	for chunk, err := range r.Chunks() {
		if err != nil {
			return nil, targetRate, fmt.Errorf("%w", err)
		}

		n := len(chunk) / 2
		if cap(pcm16)-len(pcm16) < n {
			// Grow by at least n samples, or double capacity
			grown := make([]int16, len(pcm16), len(pcm16)+max(n, cap(pcm16)))
			copy(grown, pcm16)
			pcm16 = grown
		}

		start := len(pcm16)
		pcm16 = pcm16[:start+n]
		for i := range n {
			pcm16[start+i] = int16(binary.LittleEndian.Uint16(chunk[2*i:]))
		}
	}

	return pcm16, targetRate, nil
}
