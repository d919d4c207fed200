// SPDX-License-Identifier: EPL-2.0

package resample

import "errors"

var (
	ErrClosed           = errors.New("resampler is closed")
	ErrUnsupportedRatio = errors.New("unsupported sample rate ratio")
	ErrChannelMismatch  = errors.New("channel count mismatch")
	ErrFormatMismatch   = errors.New("frame does not match input format")
)
