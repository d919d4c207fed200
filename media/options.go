// SPDX-License-Identifier: EPL-2.0

package media

import (
	"log/slog"

	"github.com/ik5/pcmpipe/audio"
)

// Option configures Open.
type Option func(*options)

type options struct {
	registry      *audio.Registry
	logger        *slog.Logger
	singleAttempt bool
}

func defaultOptions() options {
	return options{
		registry: audio.DefaultRegistry,
		logger:   slog.New(slog.DiscardHandler),
	}
}

// WithRegistry selects the demuxers used for probing instead of
// audio.DefaultRegistry.
func WithRegistry(reg *audio.Registry) Option {
	return func(o *options) {
		if reg != nil {
			o.registry = reg
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSingleAttempt makes ReadFrame return io.EOF, without ending the
// stream, when a packet was consumed but the codec produced no frame yet.
// By default ReadFrame keeps reading packets until a frame comes out.
func WithSingleAttempt() Option {
	return func(o *options) { o.singleAttempt = true }
}
