// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 demuxing and decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MPEG-1 and
// MPEG-2 Layer III audio. go-mp3 decodes while it reads, so the container
// hands out PCM packets of one MPEG frame each and the codec only splits
// them into planes. Output is always 16-bit stereo.
//
// ID3v1 and ID3v2 tags are read with github.com/dhowden/tag.
//
// Files starting with an ID3 tag probe with full confidence; a bare frame
// sync scores half, so a stronger match from another demuxer wins.
package mp3
