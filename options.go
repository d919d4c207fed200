// SPDX-License-Identifier: EPL-2.0

package pcmpipe

import (
	"log/slog"

	"github.com/ik5/pcmpipe/audio"
	"github.com/ik5/pcmpipe/media"
	"github.com/ik5/pcmpipe/resample"
)

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	output    audio.StreamFormat
	linear    bool
	cutoff    float64
	engine    resample.EngineFactory
	mediaOpts []media.Option
	logger    *slog.Logger
}

func defaultOptions() options {
	return options{logger: slog.New(slog.DiscardHandler)}
}

// WithOutput sets the format frames are converted to. Zero fields keep the
// source's value, so WithOutput(audio.StreamFormat{SampleRate: 8000}) only
// changes the rate.
func WithOutput(sf audio.StreamFormat) Option {
	return func(o *options) { o.output = sf }
}

// WithLinear switches the resampler to linear interpolation.
func WithLinear() Option {
	return func(o *options) { o.linear = true }
}

// WithCutoff sets the anti-aliasing strength used when downsampling.
func WithCutoff(c float64) Option {
	return func(o *options) { o.cutoff = c }
}

// WithEngine replaces the default resampling engine.
func WithEngine(f resample.EngineFactory) Option {
	return func(o *options) { o.engine = f }
}

// WithMediaOptions passes options to media.Open when the pipeline opens
// the file itself.
func WithMediaOptions(opts ...media.Option) Option {
	return func(o *options) { o.mediaOpts = append(o.mediaOpts, opts...) }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
