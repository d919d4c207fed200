// SPDX-License-Identifier: EPL-2.0

package resample

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/ik5/pcmpipe/audio"
)

// remixer maps input channels to output channels with a fixed gain matrix.
type remixer struct {
	inCh, outCh int
	identity    bool
	// matrix[o][i] is the gain from input channel i into output channel o.
	matrix [][]float64
}

// where a channel goes when the output has no speaker at its position
var fallbacks = map[audio.ChannelLayout][]audio.ChannelLayout{
	audio.ChannelFrontCenter:        {audio.ChannelFrontLeft, audio.ChannelFrontRight},
	audio.ChannelFrontLeft:          {audio.ChannelFrontCenter},
	audio.ChannelFrontRight:         {audio.ChannelFrontCenter},
	audio.ChannelFrontLeftOfCenter:  {audio.ChannelFrontLeft, audio.ChannelFrontCenter},
	audio.ChannelFrontRightOfCenter: {audio.ChannelFrontRight, audio.ChannelFrontCenter},
	audio.ChannelSideLeft:           {audio.ChannelBackLeft, audio.ChannelFrontLeft},
	audio.ChannelSideRight:          {audio.ChannelBackRight, audio.ChannelFrontRight},
	audio.ChannelBackLeft:           {audio.ChannelSideLeft, audio.ChannelFrontLeft},
	audio.ChannelBackRight:          {audio.ChannelSideRight, audio.ChannelFrontRight},
	audio.ChannelBackCenter:         {audio.ChannelBackLeft, audio.ChannelBackRight},
}

// channelIndex returns the buffer index of position pos inside layout l.
// Channels are ordered by ascending bit.
func channelIndex(l, pos audio.ChannelLayout) int {
	return bits.OnesCount64(uint64(l & (pos - 1)))
}

func newRemixer(in, out audio.ChannelLayout) (*remixer, error) {
	inCh, outCh := in.Channels(), out.Channels()
	if inCh == 0 || outCh == 0 {
		return nil, fmt.Errorf("%w: %v -> %v", ErrChannelMismatch, in, out)
	}

	r := &remixer{inCh: inCh, outCh: outCh, matrix: make([][]float64, outCh)}
	for o := range r.matrix {
		r.matrix[o] = make([]float64, inCh)
	}

	switch {
	case in == out:
		r.identity = true
		for c := range inCh {
			r.matrix[c][c] = 1
		}
		return r, nil
	case outCh == 1:
		// Downmix to mono by averaging.
		for i := range inCh {
			r.matrix[0][i] = 1 / float64(inCh)
		}
		return r, nil
	case inCh == 1:
		for o := range outCh {
			r.matrix[o][0] = 1
		}
		return r, nil
	}

	for pos := audio.ChannelLayout(1); pos != 0 && pos <= in; pos <<= 1 {
		if in&pos == 0 {
			continue
		}
		i := channelIndex(in, pos)

		if out&pos != 0 {
			r.matrix[channelIndex(out, pos)][i] += 1
			continue
		}

		var targets []int
		for _, fb := range fallbacks[pos] {
			if out&fb != 0 {
				targets = append(targets, channelIndex(out, fb))
			}
		}
		if len(targets) == 0 {
			// LFE and positions with no neighbour in the output are dropped.
			continue
		}
		gain := 1.0
		if len(targets) > 1 {
			gain = 1 / math.Sqrt2
		}
		for _, o := range targets {
			r.matrix[o][i] += gain
		}
	}

	// Keep each output row from clipping a full-scale input.
	for o := range r.matrix {
		sum := 0.0
		for _, g := range r.matrix[o] {
			sum += g
		}
		if sum > 1 {
			for i := range r.matrix[o] {
				r.matrix[o][i] /= sum
			}
		}
	}

	return r, nil
}

// mix applies the matrix to planar input.
func (r *remixer) mix(in [][]float64) [][]float64 {
	if r.identity {
		return in
	}

	n := 0
	if len(in) > 0 {
		n = len(in[0])
	}

	out := make([][]float64, r.outCh)
	for o := range out {
		out[o] = make([]float64, n)
		row := r.matrix[o]
		for i, g := range row {
			if g == 0 {
				continue
			}
			src := in[i]
			dst := out[o]
			for s := range n {
				dst[s] += src[s] * g
			}
		}
	}
	return out
}
