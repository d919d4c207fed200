// SPDX-License-Identifier: EPL-2.0

// Package resample converts PCM frames between sample rates, channel layouts
// and sample formats.
//
// A Resampler is built once per conversion and fed frames in order:
//
//	r, err := resample.New(resample.Options{
//	    InputRate:    44100,
//	    OutputRate:   22050,
//	    InputLayout:  audio.LayoutStereo,
//	    OutputLayout: audio.LayoutMono,
//	})
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	out, err := r.Convert(frame)
//
// # Delay
//
// The interpolation kernel needs samples after the point it is producing, so
// the tail of each input frame is kept until the next call. Convert sizes
// its output as ceil((input + Delay) * outRate / inRate), which keeps the
// output length from drifting over a long run of small frames. Call Flush
// (or Convert with an empty frame) at end of stream to emit what is left.
//
// # Engines
//
// Rate conversion is done by an Engine. The default uses Catmull-Rom cubic
// interpolation, or linear interpolation with Options.Linear, and a
// one-pole low-pass filter when downsampling. WithEngine plugs in another
// implementation.
//
// # Channel Mixing
//
// Layouts are remixed before rate conversion. Downmixing to mono averages
// every channel, mono input is copied to every output channel, and other
// combinations route each speaker to the same position or its nearest
// neighbour.
package resample
