// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis demuxing and decoding.
//
// This package uses github.com/jfreymuth/oggvorbis, which decodes while it
// reads pages. The container hands out packets of interleaved float32 PCM
// and the codec splits them into planes, reordering channels from the
// Vorbis mapping to speaker-bit order (L C R becomes L R C).
//
// Vorbis comments become stream metadata with lower-cased keys.
package vorbis
