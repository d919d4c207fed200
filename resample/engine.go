// SPDX-License-Identifier: EPL-2.0

package resample

import (
	"fmt"
	"math"

	"github.com/ik5/pcmpipe/utils"
)

// maxRatio bounds how far apart input and output rates may be.
const maxRatio = 256

// Engine converts planar float64 audio between two sample rates. It may
// hold input back between calls; Delay reports how much.
type Engine interface {
	// Delay is the number of input samples per channel that were accepted
	// but not yet turned into output.
	Delay() float64
	// Convert consumes all of in and writes up to len(out[c]) samples per
	// channel, returning the count written. An empty in drains buffered
	// input.
	Convert(out, in [][]float64) (int, error)
	Close() error
}

// EngineFactory builds an Engine for one channel count and rate pair.
type EngineFactory func(inRate, outRate, channels int, opts Options) (Engine, error)

// cubicEngine streams from inRate to outRate using cubic interpolation.
// Includes basic anti-aliasing filtering when downsampling.
type cubicEngine struct {
	ratio    float64 // inRate / outRate - how many input samples per output sample
	channels int
	linear   bool

	// Input not yet released, one slice per channel. hist[c][0] sits one
	// sample before floor(pos) once the stream is running.
	hist [][]float64
	// Position of the next output sample, in input samples from hist[c][0].
	pos float64

	// Simple low-pass filter state for anti-aliasing (when downsampling)
	filterState  []float64
	useFilter    bool
	filterAlpha  float64
	filterPrimed bool

	closed bool
}

// NewCubicEngine is the default EngineFactory.
func NewCubicEngine(inRate, outRate, channels int, opts Options) (Engine, error) {
	if inRate <= 0 || outRate <= 0 {
		return nil, fmt.Errorf("%w: %d -> %d", ErrUnsupportedRatio, inRate, outRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrChannelMismatch, channels)
	}

	ratio := float64(inRate) / float64(outRate)
	if ratio > maxRatio || ratio < 1.0/maxRatio {
		return nil, fmt.Errorf("%w: %d -> %d", ErrUnsupportedRatio, inRate, outRate)
	}

	e := &cubicEngine{
		ratio:       ratio,
		channels:    channels,
		linear:      opts.Linear,
		hist:        make([][]float64, channels),
		filterState: make([]float64, channels),
	}

	// Enable simple low-pass filter when downsampling
	if ratio > 1.0 {
		cutoff := opts.Cutoff
		if cutoff == 0 {
			cutoff = DefaultCutoff
		}
		e.useFilter = true
		// One-pole low-pass; alpha shrinks as the rate drop grows.
		e.filterAlpha = min(cutoff/ratio, 1)
	}

	return e, nil
}

func (e *cubicEngine) Delay() float64 {
	if len(e.hist[0]) == 0 {
		return 0
	}
	return max(float64(len(e.hist[0]))-e.pos, 0)
}

func (e *cubicEngine) Close() error {
	e.closed = true
	e.hist = make([][]float64, e.channels)
	return nil
}

func (e *cubicEngine) Convert(out, in [][]float64) (int, error) {
	if e.closed {
		return 0, ErrClosed
	}
	if len(in) != e.channels || len(out) != e.channels {
		return 0, fmt.Errorf("%w: engine has %d, got %d in and %d out",
			ErrChannelMismatch, e.channels, len(in), len(out))
	}

	nIn := len(in[0])
	for c := range in {
		if len(in[c]) != nIn {
			return 0, fmt.Errorf("%w: ragged input planes", ErrChannelMismatch)
		}
	}

	e.push(in)

	flush := nIn == 0
	total := len(e.hist[0])
	capOut := len(out[0])

	written := 0
	for written < capOut {
		i := int(math.Floor(e.pos))
		frac := e.pos - float64(i)

		// Last input index this output depends on.
		need := i
		if frac > 0 {
			if e.linear {
				need = i + 1
			} else {
				need = i + 2
			}
		}

		if flush {
			if i >= total {
				break
			}
		} else if need >= total {
			break
		}

		for c := range e.channels {
			out[c][written] = e.interpolate(e.hist[c], i, frac)
		}

		written++
		e.pos += e.ratio
	}

	e.release()

	return written, nil
}

// push appends in to the history, filtering it first when downsampling.
func (e *cubicEngine) push(in [][]float64) {
	if len(in[0]) == 0 {
		return
	}

	if e.useFilter && !e.filterPrimed {
		// Initialize filter state with first sample to avoid warm-up transients
		for c := range e.channels {
			e.filterState[c] = in[c][0]
		}
		e.filterPrimed = true
	}

	for c := range e.channels {
		if !e.useFilter {
			e.hist[c] = append(e.hist[c], in[c]...)
			continue
		}
		for _, x := range in[c] {
			// y[n] = alpha * x[n] + (1-alpha) * y[n-1]
			y := e.filterAlpha*x + (1-e.filterAlpha)*e.filterState[c]
			e.filterState[c] = y
			e.hist[c] = append(e.hist[c], y)
		}
	}
}

// interpolate reads hist around i, repeating edge samples where the
// neighbours do not exist.
func (e *cubicEngine) interpolate(hist []float64, i int, frac float64) float64 {
	at := func(j int) float64 {
		return hist[max(0, min(j, len(hist)-1))]
	}

	if frac == 0 {
		return at(i)
	}
	if e.linear {
		return utils.LinearInterpolate(at(i), at(i+1), frac)
	}
	return utils.CubicInterpolate(at(i-1), at(i), at(i+1), at(i+2), frac)
}

// release drops history the next output can no longer reach, keeping one
// sample before floor(pos) for the cubic kernel.
func (e *cubicEngine) release() {
	drop := int(math.Floor(e.pos)) - 1
	if drop <= 0 {
		return
	}
	drop = min(drop, len(e.hist[0]))

	for c := range e.channels {
		n := copy(e.hist[c], e.hist[c][drop:])
		e.hist[c] = e.hist[c][:n]
	}
	e.pos -= float64(drop)
}
