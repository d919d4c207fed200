// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"sync"
)

// TimeBase is the number of container duration ticks per second.
const TimeBase = 1_000_000

// ProbeSize is how many leading bytes are handed to Demuxer.Probe.
const ProbeSize = 4096

// ProbeScoreMax is the score a demuxer returns when it is certain.
const ProbeScoreMax = 100

// ID3v2Size returns the length of the ID3v2 tag b starts with, header and
// footer included, or 0 when there is none. Only the first 10 bytes are
// needed.
func ID3v2Size(b []byte) int {
	if len(b) < 10 || string(b[:3]) != "ID3" {
		return 0
	}
	size := int(b[6]&0x7f)<<21 | int(b[7]&0x7f)<<14 | int(b[8]&0x7f)<<7 | int(b[9]&0x7f)
	size += 10
	if b[5]&0x10 != 0 {
		size += 10 // footer
	}
	return size
}

type MediaType int

const (
	MediaTypeUnknown MediaType = iota
	MediaTypeAudio
	MediaTypeVideo
	MediaTypeData
)

func (t MediaType) String() string {
	switch t {
	case MediaTypeAudio:
		return "Audio"
	case MediaTypeVideo:
		return "Video"
	case MediaTypeData:
		return "Data"
	default:
		return "Unknown"
	}
}

// Disposition flags on a stream.
type Disposition uint

const DispositionDefault Disposition = 1

// Stream describes one elementary stream inside a container. For audio
// streams Format is the sample format the stream's codec produces.
type Stream struct {
	Index       int
	Type        MediaType
	CodecName   string
	SampleRate  int
	Channels    int
	Layout      ChannelLayout
	Format      SampleFormat
	BitRate     int64
	Frames      int64
	Disposition Disposition
	Metadata    *Metadata
	// Extradata carries codec setup bytes the container found out of band.
	Extradata []byte
}

// Packet is one chunk of compressed data for a stream.
type Packet struct {
	StreamIndex int
	Data        []byte
	PTS         int64
}

// RawFrame is codec output before shaping: NbSamples per channel stored in
// Data according to the stream's sample format.
type RawFrame struct {
	NbSamples int
	Data      [][]byte
}

// Container is an opened media file.
type Container interface {
	FormatName() string
	// FindStreamInfo fills in stream parameters that the header alone does
	// not provide.
	FindStreamInfo() error
	Streams() []*Stream
	// Duration in TimeBase ticks, 0 when unknown.
	Duration() int64
	BitRate() int64
	Metadata() *Metadata
	// ReadPacket returns io.EOF once the container is exhausted.
	ReadPacket() (*Packet, error)
	Close() error
}

// Codec turns packets into PCM.
type Codec interface {
	Name() string
	// Decode consumes pkt and returns at most one frame. A nil frame with a
	// nil error means the packet was absorbed without output. A nil pkt asks
	// the codec to drain what it has buffered.
	Decode(pkt *Packet) (*RawFrame, error)
	Close() error
}

// Demuxer recognises a container format and builds its codecs.
type Demuxer interface {
	Name() string
	// Probe scores the leading bytes of a file, 0 for no match up to
	// ProbeScoreMax.
	Probe(header []byte) int
	Open(r io.ReadSeeker) (Container, error)
	OpenCodec(s *Stream) (Codec, error)
}

// FindBestStream picks a stream of type t. Streams flagged default win,
// then the one with more probed frames, then the higher bit rate; the first
// stream wins remaining ties.
func FindBestStream(streams []*Stream, t MediaType) (*Stream, error) {
	var best *Stream
	for _, s := range streams {
		if s.Type != t {
			continue
		}
		if best == nil || streamCompare(s, best) > 0 {
			best = s
		}
	}
	if best == nil {
		return nil, ErrNoAudioStream
	}
	return best, nil
}

func streamCompare(a, b *Stream) int {
	if c := cmp.Compare(a.Disposition&DispositionDefault, b.Disposition&DispositionDefault); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Frames, b.Frames); c != 0 {
		return c
	}
	return cmp.Compare(a.BitRate, b.BitRate)
}

// Registry for demuxers by format key (e.g., "wav", "mp3", "ogg").
type Registry struct {
	demuxers map[string]Demuxer
	order    []string

	mtx *sync.Mutex
}

// DefaultRegistry is filled by formats.Init and used by media.Open unless
// another registry is supplied.
var DefaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		demuxers: make(map[string]Demuxer),
		mtx:      &sync.Mutex{},
	}
}

// Register adds or replaces the demuxer stored under format.
func (r *Registry) Register(format string, d Demuxer) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.demuxers[format]; !ok {
		r.order = append(r.order, format)
	}
	r.demuxers[format] = d
}

func (r *Registry) Get(format string) (Demuxer, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.demuxers[format]
	return d, ok
}

// Formats lists registered keys in registration order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return slices.Clone(r.order)
}

// Detect returns the demuxer that scores header highest. Earlier
// registrations win ties.
func (r *Registry) Detect(header []byte) (Demuxer, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	var (
		best      Demuxer
		bestScore int
	)
	for _, name := range r.order {
		d := r.demuxers[name]
		if score := d.Probe(header); score > bestScore {
			best, bestScore = d, score
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no demuxer matched %d probe bytes", ErrUnknownFormat, len(header))
	}
	return best, nil
}
