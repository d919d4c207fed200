// SPDX-License-Identifier: EPL-2.0

package resample

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ik5/pcmpipe/audio"
)

// DefaultCutoff is the anti-aliasing strength used when Options.Cutoff is 0.
const DefaultCutoff = 1.0

// Options describe a conversion. Only the two rates are required.
type Options struct {
	OutputRate int `validate:"required,gt=0"`
	InputRate  int `validate:"required,gt=0"`

	// Default: stereo.
	OutputLayout audio.ChannelLayout
	InputLayout  audio.ChannelLayout

	// Default: S16.
	OutputFormat audio.SampleFormat
	InputFormat  audio.SampleFormat

	// Linear selects linear instead of cubic interpolation.
	Linear bool
	// Cutoff scales the low-pass applied when downsampling, in (0, 1].
	Cutoff float64 `validate:"gte=0,lte=1"`
}

var validate = validator.New()

// withDefaults fills unset layouts and formats and validates the result.
func (o Options) withDefaults() (Options, error) {
	if err := validate.Struct(o); err != nil {
		return o, fmt.Errorf("%w: invalid options: %w", audio.ErrResample, err)
	}

	if o.OutputLayout == 0 {
		o.OutputLayout = audio.LayoutStereo
	}
	if o.InputLayout == 0 {
		o.InputLayout = audio.LayoutStereo
	}
	if o.OutputFormat == audio.FormatNone {
		o.OutputFormat = audio.FormatS16
	}
	if o.InputFormat == audio.FormatNone {
		o.InputFormat = audio.FormatS16
	}
	if o.Cutoff == 0 {
		o.Cutoff = DefaultCutoff
	}

	if !o.OutputFormat.Valid() || !o.InputFormat.Valid() {
		return o, fmt.Errorf("%w: %w: %v -> %v", audio.ErrResample, audio.ErrInvalidFormat, o.InputFormat, o.OutputFormat)
	}

	return o, nil
}

// Input returns the input side as a StreamFormat.
func (o Options) Input() audio.StreamFormat {
	return audio.StreamFormat{SampleRate: o.InputRate, Layout: o.InputLayout, Format: o.InputFormat}
}

// Output returns the output side as a StreamFormat.
func (o Options) Output() audio.StreamFormat {
	return audio.StreamFormat{SampleRate: o.OutputRate, Layout: o.OutputLayout, Format: o.OutputFormat}
}
