// SPDX-License-Identifier: EPL-2.0

package aac

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	goaac "github.com/llehouerou/go-aac"

	"github.com/ik5/pcmpipe/audio"
)

var ErrUnsupportedCodec = errors.New("not an AAC stream")

// maxResync bounds how far the demuxer scans for the next sync word.
const maxResync = 64 * 1024

// Demuxer reads raw ADTS AAC streams.
type Demuxer struct{}

func (Demuxer) Name() string { return "aac" }

// Probe gives full confidence when a second header follows the first.
func (Demuxer) Probe(header []byte) int {
	if off := audio.ID3v2Size(header); off > 0 {
		if off >= len(header) {
			return 0
		}
		header = header[off:]
	}

	h, err := parseADTSHeader(header)
	if err != nil || h.channels == 0 {
		return 0
	}
	if len(header) > h.frameLength && isSync(header[h.frameLength:]) {
		return audio.ProbeScoreMax
	}
	return audio.ProbeScoreMax / 2
}

func (Demuxer) Open(r io.ReadSeeker) (audio.Container, error) {
	start, err := skipID3(r)
	if err != nil {
		return nil, err
	}

	c := &container{r: r, br: bufio.NewReader(r), start: start}
	first, err := c.peekHeader()
	if err != nil {
		return nil, err
	}

	c.stream = &audio.Stream{
		Type:        audio.MediaTypeAudio,
		CodecName:   "aac",
		SampleRate:  first.sampleRate,
		Channels:    first.channels,
		Layout:      audio.DefaultChannelLayout(first.channels),
		Format:      audio.FormatS16,
		Disposition: audio.DispositionDefault,
		Metadata:    audio.NewMetadata(),
	}
	return c, nil
}

func (Demuxer) OpenCodec(s *audio.Stream) (audio.Codec, error) {
	if s.CodecName != "aac" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, s.CodecName)
	}
	if s.Channels <= 0 {
		return nil, fmt.Errorf("%w: %d", audio.ErrInvalidChannels, s.Channels)
	}
	return newCodec(goaac.NewDecoder(), s.Channels), nil
}

// skipID3 steps over a leading ID3v2 tag and returns where audio starts.
func skipID3(r io.ReadSeeker) (int64, error) {
	var hdr [10]byte
	n, err := io.ReadFull(r, hdr[:])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, fmt.Errorf("%w", err)
	}

	start := int64(audio.ID3v2Size(hdr[:n]))
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w", err)
	}
	return start, nil
}

type container struct {
	r        io.ReadSeeker
	br       *bufio.Reader
	start    int64
	stream   *audio.Stream
	duration int64
	bitRate  int64
	next     int64
}

func (c *container) FormatName() string        { return "aac" }
func (c *container) Streams() []*audio.Stream  { return []*audio.Stream{c.stream} }
func (c *container) Duration() int64           { return c.duration }
func (c *container) BitRate() int64            { return c.bitRate }
func (c *container) Metadata() *audio.Metadata { return audio.NewMetadata() }
func (c *container) Close() error              { return nil }

// FindStreamInfo walks every frame header to measure the duration, then
// rewinds to the first frame.
func (c *container) FindStreamInfo() error {
	var frames, samples, bytes int64
	for {
		h, err := c.peekHeader()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if _, err := c.br.Discard(h.frameLength); err != nil {
			// truncated last frame
			break
		}
		frames++
		samples += int64(h.samples())
		bytes += int64(h.frameLength)
	}

	if _, err := c.r.Seek(c.start, io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}
	c.br.Reset(c.r)

	c.stream.Frames = samples
	if c.stream.SampleRate > 0 && samples > 0 {
		c.duration = samples * audio.TimeBase / int64(c.stream.SampleRate)
		c.bitRate = bytes * 8 * audio.TimeBase / c.duration
		c.stream.BitRate = c.bitRate
	}
	return nil
}

// peekHeader resynchronises on the next ADTS header without consuming it.
func (c *container) peekHeader() (adtsHeader, error) {
	for skipped := 0; skipped < maxResync; skipped++ {
		b, err := c.br.Peek(adtsHeaderSize)
		if len(b) < adtsHeaderSize {
			if err == nil || err == io.EOF {
				return adtsHeader{}, io.EOF
			}
			return adtsHeader{}, fmt.Errorf("%w", err)
		}

		h, err := parseADTSHeader(b)
		if err == nil {
			return h, nil
		}
		c.br.Discard(1)
	}
	return adtsHeader{}, ErrNoSync
}

// ReadPacket returns one whole ADTS frame, header included.
func (c *container) ReadPacket() (*audio.Packet, error) {
	h, err := c.peekHeader()
	if err != nil {
		return nil, err
	}

	data := make([]byte, h.frameLength)
	if _, err := io.ReadFull(c.br, data); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w", err)
	}

	pkt := &audio.Packet{Data: data, PTS: c.next}
	c.next += int64(h.samples())
	return pkt, nil
}
