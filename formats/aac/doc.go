// SPDX-License-Identifier: EPL-2.0

// Package aac demuxes ADTS streams and decodes AAC with
// github.com/llehouerou/go-aac.
//
// The demuxer finds frames by their 12-bit sync word, skipping a leading
// ID3v2 tag and resynchronising over garbage. FindStreamInfo walks all
// frame headers once to compute the duration. The codec emits interleaved
// s16 and swallows the first frame, which carries only decoder delay.
package aac
