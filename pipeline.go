// SPDX-License-Identifier: EPL-2.0

package pcmpipe

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/ik5/pcmpipe/audio"
	"github.com/ik5/pcmpipe/media"
	"github.com/ik5/pcmpipe/resample"
)

// Pipeline decodes a media source and, when the requested output differs
// from the source, runs every frame through a resampler. At the end of the
// stream the resampler is flushed so no buffered samples are lost.
type Pipeline struct {
	src    *media.Source
	res    *resample.Resampler
	out    audio.StreamFormat
	owned  bool
	logger *slog.Logger

	done   bool
	closed bool
}

// Open opens path with media.Open and builds a pipeline that owns the
// source; Close releases both.
func Open(path string, opts ...Option) (*Pipeline, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	mediaOpts := append([]media.Option{media.WithLogger(o.logger)}, o.mediaOpts...)
	src, err := media.Open(path, mediaOpts...)
	if err != nil {
		return nil, err
	}

	p, err := newPipeline(src, o)
	if err != nil {
		src.Close()
		return nil, err
	}
	p.owned = true
	return p, nil
}

// New builds a pipeline over an already opened source. The caller keeps
// ownership of src.
func New(src *media.Source, opts ...Option) (*Pipeline, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newPipeline(src, o)
}

func newPipeline(src *media.Source, o options) (*Pipeline, error) {
	in := src.StreamFormat()
	out := o.output
	if out.SampleRate == 0 {
		out.SampleRate = in.SampleRate
	}
	if out.Layout == 0 {
		out.Layout = in.Layout
	}
	if out.Format == audio.FormatNone {
		out.Format = in.Format
	}

	p := &Pipeline{src: src, out: out, logger: o.logger}
	if out == in && !o.linear && o.cutoff == 0 && o.engine == nil {
		return p, nil
	}

	var resOpts []resample.Option
	if o.engine != nil {
		resOpts = append(resOpts, resample.WithEngine(o.engine))
	}

	res, err := resample.New(resample.Options{
		InputRate:    in.SampleRate,
		InputLayout:  in.Layout,
		InputFormat:  in.Format,
		OutputRate:   out.SampleRate,
		OutputLayout: out.Layout,
		OutputFormat: out.Format,
		Linear:       o.linear,
		Cutoff:       o.cutoff,
	}, resOpts...)
	if err != nil {
		return nil, err
	}
	p.res = res

	o.logger.Debug("resampling",
		slog.String("path", src.Path()),
		slog.String("from", in.String()),
		slog.String("to", out.String()),
	)
	return p, nil
}

func (p *Pipeline) Source() *media.Source      { return p.src }
func (p *Pipeline) Output() audio.StreamFormat { return p.out }

// Resampling reports whether frames go through a resampler.
func (p *Pipeline) Resampling() bool { return p.res != nil }

// ReadFrame returns the next frame in the output format, or io.EOF once the
// source and the resampler are both exhausted. Errors from the decoder or
// resampler are returned as is and do not end the stream.
func (p *Pipeline) ReadFrame() (*audio.Frame, error) {
	for {
		if p.done {
			return nil, io.EOF
		}

		f, err := p.src.ReadFrame()
		if errors.Is(err, io.EOF) {
			if !p.src.Decoder().Done() {
				continue
			}
			return p.flush()
		}
		if err != nil {
			return nil, err
		}

		if p.res == nil {
			return f, nil
		}
		out, err := p.res.Convert(f)
		if err != nil {
			return nil, err
		}
		if out.NbSamples == 0 {
			continue
		}
		return out, nil
	}
}

func (p *Pipeline) flush() (*audio.Frame, error) {
	p.done = true
	if p.res == nil {
		return nil, io.EOF
	}

	out, err := p.res.Flush()
	if err != nil {
		return nil, err
	}
	if out.NbSamples == 0 {
		return nil, io.EOF
	}
	return out, nil
}

// Frames yields output frames until the end of the stream. The first error
// ends the sequence.
func (p *Pipeline) Frames() iter.Seq2[*audio.Frame, error] {
	return func(yield func(*audio.Frame, error) bool) {
		for {
			f, err := p.ReadFrame()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(f, err) || err != nil {
				return
			}
		}
	}
}

// Close releases the resampler, and the source when Open created it.
func (p *Pipeline) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if p.res != nil {
		errs = append(errs, p.res.Close())
	}
	if p.owned {
		errs = append(errs, p.src.Close())
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
