// SPDX-License-Identifier: EPL-2.0

package media

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ik5/pcmpipe/audio"
)

// FrameDecoder turns the packets of a Source's selected stream into PCM
// frames. It is not safe for concurrent use.
type FrameDecoder struct {
	src           *Source
	singleAttempt bool
	draining      bool
	done          bool
}

// Done reports whether the stream has ended for good.
func (d *FrameDecoder) Done() bool { return d.done }

// ReadFrame returns the next decoded frame. Each frame owns freshly
// allocated buffers laid out by audio.Shape.
//
// io.EOF means the stream ended and the codec is drained; every later call
// returns io.EOF again. In single-attempt mode io.EOF is also returned,
// with Done still false, when a packet produced no frame. Decode failures
// wrap audio.ErrDecode and drop the packet; the next call carries on with
// the following packet.
func (d *FrameDecoder) ReadFrame() (*audio.Frame, error) {
	if d.done {
		return nil, io.EOF
	}

	s := d.src
	for {
		if d.draining {
			return d.drain()
		}

		pkt, err := s.container.ReadPacket()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				// A broken container ends the stream like its end would.
				s.logger.Warn("read packet failed, draining",
					slog.String("path", s.path), slog.Any("error", err))
			}
			d.draining = true
			continue
		}
		if pkt.StreamIndex != s.stream.Index {
			continue
		}

		raw, err := s.codec.Decode(pkt)
		if err != nil {
			return nil, fmt.Errorf("%w: could not decode packet at %d: %w", audio.ErrDecode, pkt.PTS, err)
		}
		if raw == nil {
			if d.singleAttempt {
				return nil, io.EOF
			}
			continue
		}
		return d.frame(raw)
	}
}

func (d *FrameDecoder) drain() (*audio.Frame, error) {
	raw, err := d.src.codec.Decode(nil)
	if err != nil {
		d.done = true
		return nil, fmt.Errorf("%w: could not drain codec: %w", audio.ErrDecode, err)
	}
	if raw == nil {
		d.done = true
		d.src.logger.Debug("end of stream", slog.String("path", d.src.path))
		return nil, io.EOF
	}
	return d.frame(raw)
}

func (d *FrameDecoder) frame(raw *audio.RawFrame) (*audio.Frame, error) {
	s := d.src
	f, err := audio.NewFrame(raw.Data, raw.NbSamples, s.StreamFormat(), s.stream.Channels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrDecode, err)
	}
	return f, nil
}
