// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"

	"github.com/ik5/pcmpipe/audio"
)

var (
	ErrUnsupportedCodec    = errors.New("not a FLAC stream")
	ErrUnsupportedBitDepth = errors.New("unsupported FLAC bit depth")
	ErrChannelCount        = errors.New("FLAC frame channel count changed")
)

// frameReader is the part of flac.Stream the container reads from.
type frameReader interface {
	ParseNext() (*frame.Frame, error)
	Close() error
}

// Demuxer reads native FLAC streams. Frames are decoded by mewkiz/flac
// while demuxing; packets hold one FLAC frame as concatenated int32 planes.
type Demuxer struct{}

func (Demuxer) Name() string { return "flac" }

func (Demuxer) Probe(header []byte) int {
	if len(header) >= 4 && string(header[:4]) == "fLaC" {
		return audio.ProbeScoreMax
	}
	return 0
}

func (Demuxer) Open(r io.ReadSeeker) (audio.Container, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	stream, err := flac.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	c, err := newContainer(stream, stream.Info)
	if err != nil {
		stream.Close()
		return nil, err
	}

	for _, block := range stream.Blocks {
		comments, ok := block.Body.(*meta.VorbisComment)
		if !ok {
			continue
		}
		for _, tag := range comments.Tags {
			c.stream.Metadata.Set(strings.ToLower(tag[0]), tag[1])
		}
	}

	if c.duration > 0 {
		c.stream.BitRate = size * 8 * audio.TimeBase / c.duration
	}
	return c, nil
}

func newContainer(dec frameReader, info *meta.StreamInfo) (*container, error) {
	bits := int(info.BitsPerSample)
	if bits < 4 || bits > 32 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bits)
	}

	format := audio.FormatS16P
	if bits > 16 {
		format = audio.FormatS32P
	}

	channels := int(info.NChannels)
	rate := int(info.SampleRate)
	stream := &audio.Stream{
		Type:        audio.MediaTypeAudio,
		CodecName:   "flac",
		SampleRate:  rate,
		Channels:    channels,
		Layout:      audio.DefaultChannelLayout(channels),
		Format:      format,
		Frames:      int64(info.NSamples),
		Disposition: audio.DispositionDefault,
		Metadata:    audio.NewMetadata(),
		// The codec needs the source depth to scale samples.
		Extradata: []byte{byte(bits)},
	}

	var duration int64
	if rate > 0 {
		duration = stream.Frames * audio.TimeBase / int64(rate)
	}

	return &container{dec: dec, stream: stream, duration: duration}, nil
}

func (Demuxer) OpenCodec(s *audio.Stream) (audio.Codec, error) {
	if s.CodecName != "flac" || len(s.Extradata) != 1 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, s.CodecName)
	}
	if s.Channels <= 0 {
		return nil, fmt.Errorf("%w: %d", audio.ErrInvalidChannels, s.Channels)
	}

	bits := int(s.Extradata[0])
	shift := 32 - bits
	if s.Format == audio.FormatS16P {
		shift = 16 - bits
	}
	return &codec{channels: s.Channels, format: s.Format, shift: shift}, nil
}

type container struct {
	dec      frameReader
	stream   *audio.Stream
	duration int64
	next     int64
	closed   bool
}

func (c *container) FormatName() string        { return "flac" }
func (c *container) FindStreamInfo() error     { return nil }
func (c *container) Streams() []*audio.Stream  { return []*audio.Stream{c.stream} }
func (c *container) Duration() int64           { return c.duration }
func (c *container) BitRate() int64            { return c.stream.BitRate }
func (c *container) Metadata() *audio.Metadata { return audio.NewMetadata() }

func (c *container) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.dec.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (c *container) ReadPacket() (*audio.Packet, error) {
	f, err := c.dec.ParseNext()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	if len(f.Subframes) != c.stream.Channels {
		return nil, fmt.Errorf("%w: %d, stream has %d", ErrChannelCount, len(f.Subframes), c.stream.Channels)
	}

	n := len(f.Subframes[0].Samples)
	data := make([]byte, 0, n*4*len(f.Subframes))
	for _, sub := range f.Subframes {
		for i := range n {
			data = binary.LittleEndian.AppendUint32(data, uint32(sub.Samples[i]))
		}
	}

	pkt := &audio.Packet{Data: data, PTS: c.next}
	c.next += int64(n)
	return pkt, nil
}

// codec scales int32 planes to the stream's output depth.
type codec struct {
	channels int
	format   audio.SampleFormat
	shift    int
}

func (c *codec) Name() string { return "flac" }
func (c *codec) Close() error { return nil }

func (c *codec) Decode(pkt *audio.Packet) (*audio.RawFrame, error) {
	if pkt == nil {
		return nil, nil
	}

	n := len(pkt.Data) / (4 * c.channels)
	if n == 0 {
		return nil, nil
	}

	planes := audio.AllocSamples(c.channels, n, c.format)
	for ch := range c.channels {
		src := pkt.Data[ch*n*4:]
		for i := range n {
			v := int32(binary.LittleEndian.Uint32(src[i*4:])) << c.shift
			if c.format == audio.FormatS16P {
				binary.LittleEndian.PutUint16(planes[ch][i*2:], uint16(int16(v)))
			} else {
				binary.LittleEndian.PutUint32(planes[ch][i*4:], uint32(v))
			}
		}
	}

	return &audio.RawFrame{NbSamples: n, Data: planes}, nil
}
