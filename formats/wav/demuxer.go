// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	gowav "github.com/go-audio/wav"

	"github.com/ik5/pcmpipe/audio"
	"github.com/ik5/pcmpipe/formats/pcm"
)

// WAVE format tags.
const (
	formatPCM        = 1
	formatIEEEFloat  = 3
	formatExtensible = 0xFFFE
)

// samples per packet
const packetSamples = 1024

// Demuxer reads RIFF/WAVE files holding integer or float PCM.
type Demuxer struct{}

func (Demuxer) Name() string { return "wav" }

func (Demuxer) Probe(header []byte) int {
	if len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")) {
		return audio.ProbeScoreMax
	}
	return 0
}

func (Demuxer) Open(r io.ReadSeeker) (audio.Container, error) {
	// Tags may sit after the data chunk, so they get their own pass.
	tags := readTags(r)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	dec := gowav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	enc, err := encodingOf(dec.WavAudioFormat, int(dec.BitDepth))
	if err != nil {
		return nil, err
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}
	if dec.PCMChunk == nil {
		return nil, ErrUnsupportedWavChunks
	}

	channels := int(dec.NumChans)
	blockAlign := channels * enc.BytesPerSample()
	dataSize := int64(dec.PCMChunk.Size)

	stream := &audio.Stream{
		Type:        audio.MediaTypeAudio,
		CodecName:   enc.String(),
		SampleRate:  int(dec.SampleRate),
		Channels:    channels,
		Layout:      audio.DefaultChannelLayout(channels),
		Format:      enc.SampleFormat(),
		BitRate:     int64(dec.AvgBytesPerSec) * 8,
		Disposition: audio.DispositionDefault,
		Metadata:    audio.NewMetadata(),
	}
	if blockAlign > 0 {
		stream.Frames = dataSize / int64(blockAlign)
	}

	var duration int64
	if dec.SampleRate > 0 {
		duration = stream.Frames * audio.TimeBase / int64(dec.SampleRate)
	}

	return &container{
		data:       io.LimitReader(dec.PCMChunk, dataSize),
		stream:     stream,
		packetSize: packetSamples * blockAlign,
		tags:       tags,
		duration:   duration,
	}, nil
}

func (Demuxer) OpenCodec(s *audio.Stream) (audio.Codec, error) {
	enc, ok := pcm.ByName(s.CodecName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, s.CodecName)
	}
	return pcm.NewCodec(enc, s.Channels)
}

// encodingOf maps the fmt chunk to a PCM encoding. Extensible files are
// treated by bit depth alone.
func encodingOf(tag uint16, bits int) (pcm.Encoding, error) {
	var float bool
	switch tag {
	case formatPCM, formatExtensible:
	case formatIEEEFloat:
		float = true
	default:
		return 0, fmt.Errorf("%w: format tag 0x%04x", ErrUnsupportedWavLayout, tag)
	}

	enc, err := pcm.EncodingFor(bits, float, false, false)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnsupportedBitDepth, err)
	}
	return enc, nil
}

// readTags collects the LIST/INFO chunk. Files without one, or that fail to
// parse, yield empty metadata.
func readTags(r io.ReadSeeker) *audio.Metadata {
	tags := audio.NewMetadata()

	dec := gowav.NewDecoder(r)
	dec.ReadMetadata()
	if dec.Metadata == nil {
		return tags
	}

	m := dec.Metadata
	for _, kv := range []struct{ key, value string }{
		{"title", m.Title},
		{"artist", m.Artist},
		{"album", m.Product},
		{"genre", m.Genre},
		{"date", m.CreationDate},
		{"track", m.TrackNbr},
		{"comment", m.Comments},
		{"copyright", m.Copyright},
		{"encoder", m.Software},
	} {
		if kv.value != "" {
			tags.Set(kv.key, kv.value)
		}
	}
	return tags
}

type container struct {
	data       io.Reader
	stream     *audio.Stream
	packetSize int
	tags       *audio.Metadata
	duration   int64
	next       int64
}

func (c *container) FormatName() string        { return "wav" }
func (c *container) FindStreamInfo() error     { return nil }
func (c *container) Streams() []*audio.Stream  { return []*audio.Stream{c.stream} }
func (c *container) Duration() int64           { return c.duration }
func (c *container) BitRate() int64            { return c.stream.BitRate }
func (c *container) Metadata() *audio.Metadata { return c.tags }
func (c *container) Close() error              { return nil }

func (c *container) ReadPacket() (*audio.Packet, error) {
	buf := make([]byte, c.packetSize)
	n, err := io.ReadFull(c.data, buf)
	if n == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w", err)
	}

	pkt := &audio.Packet{Data: buf[:n], PTS: c.next}
	c.next += int64(n)
	return pkt, nil
}
