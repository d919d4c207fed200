// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/pcmpipe/audio"
)

var ErrUnsupportedCodec = errors.New("not a vorbis stream")

const (
	// samples per channel per packet
	packetSamples = 1024
	maxEmptyReads = 100
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Length() int64
	Read([]float32) (int, error)
}

// Demuxer reads Ogg Vorbis files through oggvorbis, which decodes while
// demuxing; packets carry interleaved float samples.
type Demuxer struct{}

func (Demuxer) Name() string { return "ogg" }

func (Demuxer) Probe(header []byte) int {
	if len(header) < 4 || string(header[:4]) != "OggS" {
		return 0
	}
	if bytes.Contains(header, []byte("\x01vorbis")) {
		return audio.ProbeScoreMax
	}
	// An Ogg page carrying something else.
	return audio.ProbeScoreMax / 4
}

func (Demuxer) Open(r io.ReadSeeker) (audio.Container, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	if dec.Channels() <= 0 {
		return nil, fmt.Errorf("%w: %d", audio.ErrInvalidChannels, dec.Channels())
	}

	c := newContainer(dec)
	c.stream.BitRate = int64(dec.Bitrate().Nominal)
	for _, comment := range dec.CommentHeader().Comments {
		key, value, ok := strings.Cut(comment, "=")
		if !ok || key == "" {
			continue
		}
		c.stream.Metadata.Set(strings.ToLower(key), value)
	}
	return c, nil
}

func newContainer(dec oggReader) *container {
	channels := dec.Channels()
	rate := dec.SampleRate()

	stream := &audio.Stream{
		Type:        audio.MediaTypeAudio,
		CodecName:   "vorbis",
		SampleRate:  rate,
		Channels:    channels,
		Layout:      audio.DefaultChannelLayout(channels),
		Format:      audio.FormatFLTP,
		Disposition: audio.DispositionDefault,
		Metadata:    audio.NewMetadata(),
	}

	var duration int64
	if n := dec.Length(); n > 0 && rate > 0 {
		stream.Frames = n
		duration = n * audio.TimeBase / int64(rate)
	}

	return &container{
		dec:      dec,
		stream:   stream,
		buf:      make([]float32, packetSamples*max(channels, 1)),
		duration: duration,
	}
}

func (Demuxer) OpenCodec(s *audio.Stream) (audio.Codec, error) {
	if s.CodecName != "vorbis" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, s.CodecName)
	}
	if s.Channels <= 0 {
		return nil, fmt.Errorf("%w: %d", audio.ErrInvalidChannels, s.Channels)
	}
	return &codec{channels: s.Channels, order: channelOrder(s.Channels)}, nil
}

type container struct {
	dec      oggReader
	stream   *audio.Stream
	buf      []float32
	duration int64
	next     int64
	err      error
}

func (c *container) FormatName() string        { return "ogg" }
func (c *container) FindStreamInfo() error     { return nil }
func (c *container) Streams() []*audio.Stream  { return []*audio.Stream{c.stream} }
func (c *container) Duration() int64           { return c.duration }
func (c *container) BitRate() int64            { return c.stream.BitRate }
func (c *container) Metadata() *audio.Metadata { return audio.NewMetadata() }
func (c *container) Close() error              { return nil }

// ReadPacket returns interleaved little-endian float32 samples.
func (c *container) ReadPacket() (*audio.Packet, error) {
	if c.err != nil {
		return nil, c.err
	}

	var n int
	for empty := 0; ; empty++ {
		var err error
		n, err = c.dec.Read(c.buf)
		switch {
		case err == io.EOF || err == io.ErrUnexpectedEOF:
			c.err = io.EOF
		case err != nil:
			c.err = fmt.Errorf("%w", err)
		}

		n -= n % c.stream.Channels
		if n > 0 {
			break
		}
		if c.err != nil {
			return nil, c.err
		}
		// oggvorbis may return an empty read between pages.
		if empty >= maxEmptyReads {
			c.err = io.ErrNoProgress
			return nil, c.err
		}
	}

	data := make([]byte, n*4)
	for i, v := range c.buf[:n] {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}

	pkt := &audio.Packet{Data: data, PTS: c.next}
	c.next += int64(n / c.stream.Channels)
	return pkt, nil
}

// channelOrder maps output channels, in ascending speaker bit order, to
// their position in Vorbis' interleaving.
func channelOrder(channels int) []int {
	switch channels {
	case 3: // L C R
		return []int{0, 2, 1}
	case 5: // FL C FR RL RR
		return []int{0, 2, 1, 3, 4}
	case 6: // FL C FR RL RR LFE
		return []int{0, 2, 1, 5, 3, 4}
	case 8: // FL C FR SL SR RL RR LFE
		return []int{0, 2, 1, 7, 5, 6, 3, 4}
	}

	order := make([]int, channels)
	for i := range order {
		order[i] = i
	}
	return order
}

type codec struct {
	channels int
	order    []int
}

func (c *codec) Name() string { return "vorbis" }
func (c *codec) Close() error { return nil }

func (c *codec) Decode(pkt *audio.Packet) (*audio.RawFrame, error) {
	if pkt == nil {
		return nil, nil
	}

	n := len(pkt.Data) / (4 * c.channels)
	if n == 0 {
		return nil, nil
	}

	planes := audio.AllocSamples(c.channels, n, audio.FormatFLTP)
	for ch, src := range c.order {
		plane := planes[ch]
		for i := range n {
			copy(plane[i*4:i*4+4], pkt.Data[(i*c.channels+src)*4:])
		}
	}

	return &audio.RawFrame{NbSamples: n, Data: planes}, nil
}
