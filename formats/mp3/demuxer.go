// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dhowden/tag"
	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/pcmpipe/audio"
)

var ErrUnsupportedCodec = errors.New("not an mp3 stream")

const (
	// go-mp3 always emits interleaved 16-bit stereo.
	channels    = 2
	frameBytes  = channels * 2
	frameLength = 1152

	syncScore = audio.ProbeScoreMax / 2
	id3Score  = audio.ProbeScoreMax / 4
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
	Length() int64
}

// Demuxer reads MPEG-1/2 Layer III files. Decoding happens inside the
// container through go-mp3, so packets already hold PCM.
type Demuxer struct{}

func (Demuxer) Name() string { return "mp3" }

// Probe looks past an ID3v2 tag. A tag alone is a weak hint, since ADTS
// AAC files carry them too.
func (Demuxer) Probe(header []byte) int {
	if off := audio.ID3v2Size(header); off > 0 {
		if off < len(header) && isFrameSync(header[off:]) {
			return audio.ProbeScoreMax
		}
		return id3Score
	}
	if isFrameSync(header) {
		return syncScore
	}
	return 0
}

// isFrameSync reports whether b starts with a Layer III frame header.
func isFrameSync(b []byte) bool {
	if len(b) < 4 || b[0] != 0xFF || b[1]&0xE0 != 0xE0 {
		return false
	}
	version := (b[1] >> 3) & 0x3
	layer := (b[1] >> 1) & 0x3
	bitrate := b[2] >> 4
	rate := (b[2] >> 2) & 0x3
	return version != 1 && layer == 1 && bitrate != 0xF && rate != 0x3
}

func (Demuxer) Open(r io.ReadSeeker) (audio.Container, error) {
	tags := readTags(r)

	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newContainer(dec, tags, size), nil
}

func newContainer(dec mp3Reader, tags *audio.Metadata, size int64) *container {
	rate := dec.SampleRate()
	stream := &audio.Stream{
		Type:        audio.MediaTypeAudio,
		CodecName:   "mp3",
		SampleRate:  rate,
		Channels:    channels,
		Layout:      audio.LayoutStereo,
		Format:      audio.FormatS16P,
		Disposition: audio.DispositionDefault,
		Metadata:    audio.NewMetadata(),
	}

	var duration int64
	if n := dec.Length(); n > 0 && rate > 0 {
		stream.Frames = n / frameBytes
		duration = stream.Frames * audio.TimeBase / int64(rate)
		if duration > 0 {
			stream.BitRate = size * 8 * audio.TimeBase / duration
		}
	}

	return &container{
		dec:      dec,
		stream:   stream,
		tags:     tags,
		duration: duration,
	}
}

func (Demuxer) OpenCodec(s *audio.Stream) (audio.Codec, error) {
	if s.CodecName != "mp3" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, s.CodecName)
	}
	return codec{}, nil
}

// readTags reads ID3v1/ID3v2 frames. Untagged files give empty metadata.
func readTags(r io.ReadSeeker) *audio.Metadata {
	md := audio.NewMetadata()

	m, err := tag.ReadFrom(r)
	if err != nil {
		return md
	}

	for _, kv := range []struct{ key, value string }{
		{"title", m.Title()},
		{"artist", m.Artist()},
		{"album", m.Album()},
		{"album_artist", m.AlbumArtist()},
		{"composer", m.Composer()},
		{"genre", m.Genre()},
		{"comment", m.Comment()},
	} {
		if kv.value != "" {
			md.Set(kv.key, kv.value)
		}
	}
	if y := m.Year(); y > 0 {
		md.Set("date", strconv.Itoa(y))
	}
	if n, total := m.Track(); n > 0 {
		track := strconv.Itoa(n)
		if total > 0 {
			track += "/" + strconv.Itoa(total)
		}
		md.Set("track", track)
	}
	return md
}

type container struct {
	dec      mp3Reader
	stream   *audio.Stream
	tags     *audio.Metadata
	duration int64
	next     int64
	err      error
}

func (c *container) FormatName() string        { return "mp3" }
func (c *container) FindStreamInfo() error     { return nil }
func (c *container) Streams() []*audio.Stream  { return []*audio.Stream{c.stream} }
func (c *container) Duration() int64           { return c.duration }
func (c *container) BitRate() int64            { return c.stream.BitRate }
func (c *container) Metadata() *audio.Metadata { return c.tags }
func (c *container) Close() error              { return nil }

// ReadPacket returns one MPEG frame worth of interleaved s16le PCM.
func (c *container) ReadPacket() (*audio.Packet, error) {
	if c.err != nil {
		return nil, c.err
	}

	buf := make([]byte, frameLength*frameBytes)
	n, err := io.ReadFull(c.dec, buf)
	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		c.err = io.EOF
	case err != nil:
		c.err = fmt.Errorf("%w", err)
	}

	n -= n % frameBytes
	if n == 0 {
		return nil, c.err
	}

	pkt := &audio.Packet{Data: buf[:n], PTS: c.next}
	c.next += int64(n / frameBytes)
	return pkt, nil
}

// codec splits the container's interleaved PCM into planes.
type codec struct{}

func (codec) Name() string { return "mp3" }
func (codec) Close() error { return nil }

func (codec) Decode(pkt *audio.Packet) (*audio.RawFrame, error) {
	if pkt == nil {
		return nil, nil
	}

	n := len(pkt.Data) / frameBytes
	if n == 0 {
		return nil, nil
	}

	planes := audio.AllocSamples(channels, n, audio.FormatS16P)
	for i := range n {
		for ch := range channels {
			v := binary.LittleEndian.Uint16(pkt.Data[(i*channels+ch)*2:])
			binary.LittleEndian.PutUint16(planes[ch][i*2:], v)
		}
	}

	return &audio.RawFrame{NbSamples: n, Data: planes}, nil
}
