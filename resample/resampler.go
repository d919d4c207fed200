// SPDX-License-Identifier: EPL-2.0

package resample

import (
	"fmt"
	"math"

	"github.com/ik5/pcmpipe/audio"
)

// State of a Resampler.
type State int

const (
	// Configured until the first Convert.
	Configured State = iota
	// Active once Convert has run at least once.
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "configured"
}

// Option customises a Resampler.
type Option func(*Resampler)

// WithEngine replaces the default cubic engine.
func WithEngine(f EngineFactory) Option {
	return func(r *Resampler) {
		r.factory = f
	}
}

// Resampler converts PCM frames between rates, layouts and sample formats.
// It keeps filter history between calls and must not be shared between
// goroutines.
type Resampler struct {
	opts    Options
	in      audio.StreamFormat
	out     audio.StreamFormat
	factory EngineFactory
	engine  Engine
	remix   *remixer
	state   State
	closed  bool
}

// New builds a conversion context. Errors wrap audio.ErrResample.
func New(opts Options, options ...Option) (*Resampler, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	r := &Resampler{
		opts:    opts,
		in:      opts.Input(),
		out:     opts.Output(),
		factory: NewCubicEngine,
	}
	for _, o := range options {
		o(r)
	}

	r.remix, err = newRemixer(opts.InputLayout, opts.OutputLayout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrResample, err)
	}

	r.engine, err = r.factory(opts.InputRate, opts.OutputRate, r.out.Channels(), opts)
	if err != nil {
		return nil, fmt.Errorf("%w: could not init resample context: %w", audio.ErrResample, err)
	}

	return r, nil
}

func (r *Resampler) State() State               { return r.state }
func (r *Resampler) Input() audio.StreamFormat  { return r.in }
func (r *Resampler) Output() audio.StreamFormat { return r.out }

// Delay returns the input samples per channel buffered inside the engine,
// rounded up.
func (r *Resampler) Delay() int64 {
	if r.closed {
		return 0
	}
	return int64(ceil(r.engine.Delay()))
}

// ceil rounds up, ignoring float residue left by accumulated positions so
// that 2205.0000000001 stays 2205.
func ceil(x float64) float64 { return math.Ceil(x - 1e-9) }

// OutputSamples is the output capacity Convert allocates for inSamples
// given the current delay.
func (r *Resampler) OutputSamples(inSamples int) int {
	d := float64(inSamples)
	if !r.closed {
		d += r.engine.Delay()
	}
	return int(ceil(d * float64(r.out.SampleRate) / float64(r.in.SampleRate)))
}

// Convert resamples one frame. A nil frame, or one without samples, drains
// whatever the engine still holds. The returned frame is newly allocated.
func (r *Resampler) Convert(in *audio.Frame) (*audio.Frame, error) {
	if r.closed {
		return nil, fmt.Errorf("%w: %w", audio.ErrResample, ErrClosed)
	}

	inCh := r.in.Channels()
	inSamples, err := r.inputSamples(in, inCh)
	if err != nil {
		return nil, err
	}

	var planes [][]float64
	if inSamples > 0 {
		planes, err = audio.DecodeSamples(in.Data, inSamples, inCh, r.in.Format)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", audio.ErrResample, err)
		}
		planes = r.remix.mix(planes)
	} else {
		planes = make([][]float64, r.out.Channels())
	}

	outCh := r.out.Channels()
	outCap := r.OutputSamples(inSamples)

	converted := make([][]float64, outCh)
	for c := range converted {
		converted[c] = make([]float64, outCap)
	}

	n, err := r.engine.Convert(converted, planes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrResample, err)
	}
	r.state = Active

	buf := audio.AllocSamples(outCh, n, r.out.Format)
	if err := audio.EncodeSamples(buf, converted, n, r.out.Format); err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrResample, err)
	}

	return audio.NewFrame(buf, n, r.out, outCh)
}

// Flush drains buffered input. It is Convert with an empty frame.
func (r *Resampler) Flush() (*audio.Frame, error) {
	return r.Convert(nil)
}

// inputSamples derives the per-channel sample count from the first buffer.
func (r *Resampler) inputSamples(in *audio.Frame, channels int) (int, error) {
	if in == nil || len(in.Data) == 0 {
		return 0, nil
	}
	if in.Format != audio.FormatNone && in.Format != r.in.Format {
		return 0, fmt.Errorf("%w: %w: got %v, want %v", audio.ErrResample, ErrFormatMismatch, in.Format, r.in.Format)
	}
	if in.Channels != 0 && in.Channels != channels {
		return 0, fmt.Errorf("%w: %w: got %d channels, want %d", audio.ErrResample, ErrChannelMismatch, in.Channels, channels)
	}

	n := len(in.Data[0]) / r.in.Format.BytesPerSample()
	if !r.in.Format.IsPlanar() {
		n /= channels
	}
	return n, nil
}

// Close releases the engine. Further calls to Convert fail.
func (r *Resampler) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.engine.Close()
}
