// SPDX-License-Identifier: EPL-2.0

// Package playback plays interleaved PCM through the default audio output
// device using malgo.
package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/ik5/pcmpipe/audio"
)

var ErrUnsupportedFormat = errors.New("sample format cannot be played")

// pollInterval is how often Play checks for ring space and completion.
const pollInterval = 10 * time.Millisecond

// DeviceFormat returns the stream format closest to sf that a device can
// play: interleaved, in one of u8, s16, s32 or flt, with the same rate and
// layout.
func DeviceFormat(sf audio.StreamFormat) audio.StreamFormat {
	sf.Format = sf.Format.Packed()
	switch sf.Format {
	case audio.FormatU8, audio.FormatS16, audio.FormatS32, audio.FormatFLT:
	default:
		sf.Format = audio.FormatFLT
	}
	return sf
}

func malgoFormat(f audio.SampleFormat) (malgo.FormatType, error) {
	switch f {
	case audio.FormatU8:
		return malgo.FormatU8, nil
	case audio.FormatS16:
		return malgo.FormatS16, nil
	case audio.FormatS32:
		return malgo.FormatS32, nil
	case audio.FormatFLT:
		return malgo.FormatF32, nil
	default:
		return malgo.FormatUnknown, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

// Player owns an output device opened for one stream format.
type Player struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	format audio.StreamFormat
	logger *slog.Logger

	ring      *ring
	underruns atomic.Uint64
}

// New opens the default playback device for sf, which must already be a
// DeviceFormat. bufferMs is the device period; 0 means 100 ms.
func New(sf audio.StreamFormat, bufferMs uint32, logger *slog.Logger) (*Player, error) {
	mf, err := malgoFormat(sf.Format)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if bufferMs == 0 {
		bufferMs = 100
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	p := &Player{ctx: ctx, format: sf, logger: logger, ring: &ring{}}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = mf
	cfg.Playback.Channels = uint32(sf.Channels())
	cfg.SampleRate = uint32(sf.SampleRate)
	cfg.PeriodSizeInMilliseconds = bufferMs

	device, err := malgo.InitDevice(ctx.Context, cfg, malgo.DeviceCallbacks{Data: p.onSendFrames})
	if err != nil {
		p.freeContext()
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		p.freeContext()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}
	p.device = device

	logger.Debug("playback device started",
		slog.String("format", sf.String()), slog.Uint64("buffer_ms", uint64(bufferMs)))
	return p, nil
}

// onSendFrames runs on the device thread. Missing data is played as
// silence.
func (p *Player) onSendFrames(out, _ []byte, _ uint32) {
	n := p.ring.pop(out, p.frameBytes())
	if n < len(out) {
		fill := byte(0)
		if p.format.Format == audio.FormatU8 {
			fill = 0x80
		}
		for i := n; i < len(out); i++ {
			out[i] = fill
		}
		if n > 0 {
			p.underruns.Add(1)
		}
	}
}

// Play streams r to the device and blocks until everything queued has been
// played or ctx is done. r must yield interleaved samples in the player's
// format. Audio queued before ctx ended keeps playing until Close.
func (p *Player) Play(ctx context.Context, r io.Reader) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		pending := buf[:n]
		for len(pending) > 0 {
			w := p.ring.push(pending)
			pending = pending[w:]
			if len(pending) == 0 {
				break
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w", ctx.Err())
			case <-ticker.C:
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	// A trailing partial frame can never be played.
	for p.ring.len() >= p.frameBytes() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w", ctx.Err())
		case <-ticker.C:
		}
	}

	if u := p.underruns.Load(); u > 0 {
		p.logger.Warn("playback underruns", slog.Uint64("count", u))
	}
	return nil
}

func (p *Player) Format() audio.StreamFormat { return p.format }

// frameBytes is the size of one sample for every channel.
func (p *Player) frameBytes() int {
	return max(p.format.Channels()*p.format.Format.BytesPerSample(), 1)
}

// Close stops the device and releases the audio context.
func (p *Player) Close() error {
	if p.device != nil {
		_ = p.device.Stop()
		p.device.Uninit()
		p.device = nil
	}
	p.ring.clear()
	p.freeContext()
	return nil
}

func (p *Player) freeContext() {
	if p.ctx != nil {
		_ = p.ctx.Uninit()
		p.ctx.Free()
		p.ctx = nil
	}
}
