// SPDX-License-Identifier: EPL-2.0

// Package flac provides native FLAC demuxing and decoding on top of
// github.com/mewkiz/flac.
//
// mewkiz/flac decodes each frame while parsing it, so packets already hold
// PCM as one int32 plane per channel. The codec left-justifies samples into
// s16p for depths up to 16 bits and s32p above that. VORBIS_COMMENT blocks
// become stream metadata.
package flac
