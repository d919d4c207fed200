// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

// Error kinds. Every failure returned by the decode and resample pipeline
// wraps exactly one of these, so callers can branch with errors.Is.
var (
	// ErrFile means the input could not be opened or its container parsed.
	ErrFile = errors.New("file error")
	// ErrDecode means stream discovery, codec setup or packet decoding failed.
	ErrDecode = errors.New("decode error")
	// ErrResample means a conversion context could not be built or a
	// conversion call failed.
	ErrResample = errors.New("resample error")
)

var (
	ErrNoAudioStream   = errors.New("could not find an audio stream")
	ErrUnknownFormat   = errors.New("unknown container format")
	ErrShortBuffer     = errors.New("buffer too short for sample count")
	ErrInvalidFormat   = errors.New("invalid sample format")
	ErrInvalidLayout   = errors.New("invalid channel layout")
	ErrInvalidChannels = errors.New("invalid channel count")
)
