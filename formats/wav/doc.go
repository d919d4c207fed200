// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE files.
//
// Demuxer recognises files by their "RIFF....WAVE" header and exposes a
// single audio stream. Header parsing and the LIST/INFO tags come from
// github.com/go-audio/wav; the data chunk is cut into packets of 1024
// sample frames and decoded by the pcm codec.
//
// # Supported Formats
//
//   - Integer PCM at 8, 16, 24 and 32 bits
//   - IEEE float at 32 and 64 bits
//   - WAVE_FORMAT_EXTENSIBLE carrying either of the above
//   - Any channel count and sample rate
//
// # Writing WAV Files
//
// Writer encodes frames of any sample format to 16-bit PCM through the
// go-audio encoder, which patches the header on Close:
//
//	f, _ := os.Create("out.wav")
//	w, _ := wav.NewWriter(f, 16000, 1)
//	for frame := range frames {
//	    w.WriteFrame(frame)
//	}
//	w.Close()
//
// WriteWAV16 writes a complete file in one call and needs no seeking, so it
// also works on pipes and network streams.
//
// # Error Handling
//
//   - ErrNotWavFile: the input has no RIFF/WAVE header
//   - ErrUnsupportedWavLayout: the format tag is neither PCM nor float
//   - ErrUnsupportedBitDepth: no codec for the sample size
//   - ErrUnsupportedWavChunks: the data chunk is missing
package wav
