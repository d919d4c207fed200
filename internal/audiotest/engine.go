// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"errors"
	"io"

	"github.com/ik5/pcmpipe/audio"
)

// Magic prefixes files the fake demuxer accepts.
var Magic = []byte("FAKEPCM!")

// ErrInjected is what the fakes return when told to fail without a
// specific error.
var ErrInjected = errors.New("injected failure")

// Stats counts resource lifecycle events across fakes built by one Demuxer.
type Stats struct {
	ContainersOpened int
	ContainersClosed int
	CodecsOpened     int
	CodecsClosed     int
	PacketsRead      int
	Drains           int
}

// Demuxer is a scriptable audio.Demuxer. Packet data is PCM already in the
// stream's sample format, so the codec only has to slice it.
type Demuxer struct {
	FormatName string
	Streams    []audio.Stream
	Packets    []audio.Packet
	Metadata   *audio.Metadata
	Duration   int64
	BitRate    int64

	OpenErr       error
	StreamInfoErr error
	CodecErr      error
	// DecodeErrs fails Decode for the packet at the given read position.
	DecodeErrs map[int]error
	// Delay holds this many packets inside the codec before output starts.
	Delay int

	Stats Stats
}

func (d *Demuxer) Name() string {
	if d.FormatName == "" {
		return "fake"
	}
	return d.FormatName
}

func (d *Demuxer) Probe(header []byte) int {
	if bytes.HasPrefix(header, Magic) {
		return audio.ProbeScoreMax
	}
	return 0
}

func (d *Demuxer) Open(r io.ReadSeeker) (audio.Container, error) {
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	head := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, head); err != nil || !bytes.Equal(head, Magic) {
		return nil, audio.ErrUnknownFormat
	}

	streams := make([]*audio.Stream, len(d.Streams))
	for i := range d.Streams {
		s := d.Streams[i]
		s.Index = i
		streams[i] = &s
	}

	d.Stats.ContainersOpened++
	return &container{d: d, streams: streams}, nil
}

func (d *Demuxer) OpenCodec(s *audio.Stream) (audio.Codec, error) {
	if d.CodecErr != nil {
		return nil, d.CodecErr
	}
	d.Stats.CodecsOpened++
	return &codec{d: d, stream: s}, nil
}

type container struct {
	d       *Demuxer
	streams []*audio.Stream
	next    int
	closed  bool
}

func (c *container) FormatName() string        { return c.d.Name() }
func (c *container) Streams() []*audio.Stream  { return c.streams }
func (c *container) Duration() int64           { return c.d.Duration }
func (c *container) BitRate() int64            { return c.d.BitRate }
func (c *container) Metadata() *audio.Metadata { return c.d.Metadata }
func (c *container) FindStreamInfo() error     { return c.d.StreamInfoErr }

func (c *container) ReadPacket() (*audio.Packet, error) {
	if c.next >= len(c.d.Packets) {
		return nil, io.EOF
	}
	p := c.d.Packets[c.next]
	p.PTS = int64(c.next)
	c.next++
	c.d.Stats.PacketsRead++
	return &p, nil
}

func (c *container) Close() error {
	if !c.closed {
		c.closed = true
		c.d.Stats.ContainersClosed++
	}
	return nil
}

type codec struct {
	d      *Demuxer
	stream *audio.Stream
	queue  [][]byte
}

func (c *codec) Name() string { return c.stream.CodecName }

func (c *codec) Decode(pkt *audio.Packet) (*audio.RawFrame, error) {
	if pkt == nil {
		c.d.Stats.Drains++
		if len(c.queue) == 0 {
			return nil, nil
		}
		data := c.queue[0]
		c.queue = c.queue[1:]
		return c.frame(data), nil
	}

	if err, ok := c.d.DecodeErrs[int(pkt.PTS)]; ok {
		if err == nil {
			err = ErrInjected
		}
		return nil, err
	}

	c.queue = append(c.queue, pkt.Data)
	if len(c.queue) <= c.d.Delay {
		return nil, nil
	}
	data := c.queue[0]
	c.queue = c.queue[1:]
	return c.frame(data), nil
}

func (c *codec) frame(data []byte) *audio.RawFrame {
	n := len(data) / (c.stream.Channels * c.stream.Format.BytesPerSample())
	return &audio.RawFrame{NbSamples: n, Data: [][]byte{data}}
}

func (c *codec) Close() error {
	c.d.Stats.CodecsClosed++
	return nil
}

// AudioStream is a convenience constructor for a PCM stream description.
func AudioStream(sf audio.StreamFormat) audio.Stream {
	return audio.Stream{
		Type:       audio.MediaTypeAudio,
		CodecName:  "pcm_" + sf.Format.String(),
		SampleRate: sf.SampleRate,
		Channels:   sf.Channels(),
		Layout:     sf.Layout,
		Format:     sf.Format,
		BitRate:    int64(sf.SampleRate * sf.Channels() * sf.Format.BytesPerSample() * 8),
	}
}

// PacketsOf splits nbSamples of w into packets of perPacket samples for
// stream index idx.
func PacketsOf(idx int, f audio.SampleFormat, channels, nbSamples, perPacket int, w Waveform) []audio.Packet {
	var pkts []audio.Packet
	for off := 0; off < nbSamples; off += perPacket {
		n := min(perPacket, nbSamples-off)
		pkts = append(pkts, audio.Packet{StreamIndex: idx, Data: PCM(f, channels, n, off, w)})
	}
	return pkts
}
