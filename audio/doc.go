// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM data model and the contracts a codec
// engine implements.
//
// This package contains the core building blocks:
//   - SampleFormat, with its bytes-per-sample and planar tables
//   - ChannelLayout bitmasks and named layouts
//   - Frame and Shape, which copy decoded samples into one buffer per
//     channel (planar) or a single interleaved buffer
//   - Metadata, an ordered tag map
//   - Demuxer, Container and Codec, implemented by the formats packages
//   - Registry, which detects the right demuxer from a file's first bytes
//
// # Sample Formats
//
// Every format has a packed and a planar variant with identical samples:
//
//	audio.FormatS16.BytesPerSample()  // 2
//	audio.FormatS16P.IsPlanar()       // true
//	audio.FormatFLTP.Packed()         // audio.FormatFLT
//
// Whether a format is planar is a table lookup and is never inferred from
// the sample size.
//
// # Frames
//
// A Frame holds NbSamples per channel. Planar frames carry one buffer per
// channel, packed frames a single buffer, and the total byte count always
// equals SamplesBufferSize(channels, NbSamples, format). Samples are
// little-endian.
//
//	raw := codecOutput.Data
//	data, err := audio.Shape(raw, nbSamples, channels, audio.FormatFLTP)
//
// Shape always copies; the caller owns the result.
//
// # Codec Engine
//
// A Demuxer scores a file header, opens a Container and builds a Codec for
// a Stream. Containers return packets until io.EOF; codecs turn packets
// into RawFrames and may absorb a packet without output. Passing a nil
// packet drains a codec.
//
// # Format Registry
//
// The registry maps names to demuxers and picks one by content:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Demuxer{})
//	demuxer, err := registry.Detect(header)
//
// formats.Init fills DefaultRegistry with every built-in format.
//
// # Error Handling
//
// Failures wrap one of three kinds, ErrFile, ErrDecode or ErrResample, and
// usually a more specific cause:
//
//	if errors.Is(err, audio.ErrDecode) {
//	    // stream discovery or decoding failed
//	}
//
// End of stream is io.EOF and is never wrapped.
package audio
