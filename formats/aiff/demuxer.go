// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/pcmpipe/audio"
	"github.com/ik5/pcmpipe/formats/pcm"
)

// samples per packet
const packetSamples = 1024

// aiffReader is the part of aiff.Decoder the container reads from.
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Demuxer reads big-endian AIFF files. Compressed AIFC is not decoded.
type Demuxer struct{}

func (Demuxer) Name() string { return "aiff" }

func (Demuxer) Probe(header []byte) int {
	if len(header) < 12 || !bytes.Equal(header[:4], []byte("FORM")) {
		return 0
	}
	switch string(header[8:12]) {
	case "AIFF", "AIFC":
		return audio.ProbeScoreMax
	}
	return 0
}

func (Demuxer) Open(r io.ReadSeeker) (audio.Container, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	return newContainer(dec, int(dec.BitDepth), int64(dec.NumSampleFrames))
}

func newContainer(dec aiffReader, bitDepth int, frames int64) (*container, error) {
	format := dec.Format()

	enc, err := pcm.EncodingFor(bitDepth, false, true, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedBitDepth, err)
	}

	channels := format.NumChannels
	stream := &audio.Stream{
		Type:        audio.MediaTypeAudio,
		CodecName:   enc.String(),
		SampleRate:  format.SampleRate,
		Channels:    channels,
		Layout:      audio.DefaultChannelLayout(channels),
		Format:      enc.SampleFormat(),
		BitRate:     int64(format.SampleRate * channels * bitDepth),
		Frames:      frames,
		Disposition: audio.DispositionDefault,
		Metadata:    audio.NewMetadata(),
	}

	var duration int64
	if format.SampleRate > 0 {
		duration = frames * audio.TimeBase / int64(format.SampleRate)
	}

	return &container{
		dec:    dec,
		enc:    enc,
		stream: stream,
		intBuf: &goaudio.IntBuffer{
			Format:         format,
			Data:           make([]int, packetSamples*channels),
			SourceBitDepth: bitDepth,
		},
		duration: duration,
	}, nil
}

func (Demuxer) OpenCodec(s *audio.Stream) (audio.Codec, error) {
	enc, ok := pcm.ByName(s.CodecName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, s.CodecName)
	}
	return pcm.NewCodec(enc, s.Channels)
}

type container struct {
	dec      aiffReader
	enc      pcm.Encoding
	stream   *audio.Stream
	intBuf   *goaudio.IntBuffer
	duration int64
	next     int64
	// err is returned once the packets read before it are drained.
	err error
}

func (c *container) FormatName() string        { return "aiff" }
func (c *container) FindStreamInfo() error     { return nil }
func (c *container) Streams() []*audio.Stream  { return []*audio.Stream{c.stream} }
func (c *container) Duration() int64           { return c.duration }
func (c *container) BitRate() int64            { return c.stream.BitRate }
func (c *container) Metadata() *audio.Metadata { return audio.NewMetadata() }
func (c *container) Close() error              { return nil }

// ReadPacket re-serialises the decoder's integers in their on-disk
// big-endian form, so the pcm codec sees what the file holds.
func (c *container) ReadPacket() (*audio.Packet, error) {
	if c.err != nil {
		return nil, c.err
	}

	c.intBuf.Data = c.intBuf.Data[:cap(c.intBuf.Data)]
	n, err := c.dec.PCMBuffer(c.intBuf)
	switch {
	case err == io.EOF:
		c.err = io.EOF
	case err != nil:
		c.err = fmt.Errorf("%w", err)
	}

	n -= n % c.stream.Channels
	if n <= 0 {
		if c.err == nil {
			c.err = io.EOF
		}
		return nil, c.err
	}

	size := c.enc.BytesPerSample()
	data := make([]byte, n*size)
	for i, v := range c.intBuf.Data[:n] {
		putBE(data[i*size:(i+1)*size], v)
	}

	pkt := &audio.Packet{Data: data, PTS: c.next}
	c.next += int64(n / c.stream.Channels)
	return pkt, nil
}

func putBE(dst []byte, v int) {
	switch len(dst) {
	case 1:
		dst[0] = byte(int8(v))
	case 2:
		binary.BigEndian.PutUint16(dst, uint16(int16(v)))
	case 3:
		dst[0], dst[1], dst[2] = byte(v>>16), byte(v>>8), byte(v)
	case 4:
		binary.BigEndian.PutUint32(dst, uint32(int32(v)))
	}
}
