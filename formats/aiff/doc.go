// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) demuxing.
//
// This package uses github.com/go-audio/aiff to parse the COMM chunk and
// read samples. AIFF is Apple's standard audio file format and stores
// big-endian integers; packets carry them in that form and the pcm codec
// converts them to little-endian.
//
// # Supported Formats
//
//   - AIFF and uncompressed AIFC
//   - Signed 8, 16, 24 and 32-bit PCM
//   - Any channel count and sample rate
package aiff
