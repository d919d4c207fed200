// SPDX-License-Identifier: EPL-2.0

// Package pcmpipe decodes audio files into raw PCM and optionally converts
// it to another sample rate, channel layout or sample format.
//
// # Supported Formats
//
// Containers are detected by content, not by file extension:
//   - WAV (8/16/24/32-bit integer, 32/64-bit float) via formats/wav
//   - AIFF and AIFC (8/16/24/32-bit) via formats/aiff
//   - FLAC via formats/flac
//   - Ogg Vorbis via formats/vorbis
//   - MP3 via formats/mp3
//   - AAC in ADTS framing via formats/aac
//
// Call formats.Init once to register all of them in audio.DefaultRegistry.
//
// # Quick Start
//
// The simplest way to get telephony-ready samples is ResampleToMono16:
//
//	formats.Init()
//	src, _ := media.Open("audio.flac")
//	defer src.Close()
//
//	// Resample to 8kHz mono, 16-bit PCM
//	samples, rate, _ := pcmpipe.ResampleToMono16(src, 8000, 4096)
//
// # Audio Processing Pipeline
//
// A Pipeline yields frames in the requested output format. Fields left zero
// in WithOutput keep the source's value:
//
//	p, _ := pcmpipe.Open("song.mp3", pcmpipe.WithOutput(audio.StreamFormat{
//	    SampleRate: 48000,
//	    Format:     audio.FormatFLTP,
//	}))
//	defer p.Close()
//
//	for frame, err := range p.Frames() {
//	    // frame.Data holds one buffer per channel
//	}
//
// A Reader turns a Pipeline into fixed-size chunks of interleaved PCM and
// tracks the playback position:
//
//	r := pcmpipe.NewReader(p, 4096)
//	for chunk, err := range r.Chunks() {
//	    device.Write(chunk)
//	    fmt.Printf("%.1fs\n", r.Position())
//	}
//
// # Lower Levels
//
// media.Source and media.FrameDecoder expose the decoded stream directly,
// resample.Resampler converts frames on its own and formats/wav writes
// PCM back to disk.
package pcmpipe
