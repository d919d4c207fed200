// SPDX-License-Identifier: EPL-2.0

// Package media opens audio files and decodes their best audio stream.
//
// Open detects the container from the file's leading bytes using the
// demuxers in a registry (audio.DefaultRegistry unless WithRegistry is
// given; call formats.Init to fill it). It then reads stream information,
// picks the best audio stream and opens its codec:
//
//	formats.Init()
//	src, err := media.Open("song.flac")
//	if err != nil {
//	    // errors.Is(err, audio.ErrFile) or audio.ErrDecode
//	}
//	defer src.Close()
//
//	for frame, err := range src.Frames() {
//	    if err != nil {
//	        break
//	    }
//	    consume(frame)
//	}
//
// Frames come out in the codec's native sample format: one buffer per
// channel for planar formats, one interleaved buffer otherwise.
package media
