// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/pcmpipe/audio"
)

// mockOggVorbisReader simulates the oggvorbis.Reader for testing
type mockOggVorbisReader struct {
	sampleRate   int
	channels     int
	samples      []float32 // interleaved
	offset       int
	emptyReads   int
	returnErrors bool
}

func (m *mockOggVorbisReader) SampleRate() int { return m.sampleRate }
func (m *mockOggVorbisReader) Channels() int   { return m.channels }
func (m *mockOggVorbisReader) Length() int64   { return int64(len(m.samples) / m.channels) }

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.returnErrors {
		return 0, errors.New("corrupt page")
	}
	if m.emptyReads > 0 {
		m.emptyReads--
		return 0, nil
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := copy(buf, m.samples[m.offset:])
	m.offset += n
	return n, nil
}

func planeValue(t *testing.T, plane []byte, i int) float32 {
	t.Helper()
	return math.Float32frombits(binary.LittleEndian.Uint32(plane[i*4:]))
}

func TestDemuxer_Probe(t *testing.T) {
	t.Parallel()

	vorbisPage := append([]byte("OggS\x00\x02"), make([]byte, 22)...)
	vorbisPage = append(vorbisPage, "\x01vorbis"...)

	tests := []struct {
		name   string
		header []byte
		want   int
	}{
		{"vorbis", vorbisPage, audio.ProbeScoreMax},
		{"opus in ogg", []byte("OggS\x00\x02\x00\x00OpusHead"), audio.ProbeScoreMax / 4},
		{"wav", []byte("RIFF\x00\x00\x00\x00WAVE"), 0},
		{"short", []byte("Ogg"), 0},
	}

	for _, tt := range tests {
		if got := (Demuxer{}).Probe(tt.header); got != tt.want {
			t.Errorf("%s: Probe() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestDemuxer_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Demuxer{}.Open(bytes.NewReader([]byte("This is not Ogg Vorbis data")))
	if err == nil {
		t.Error("Open() error = nil, want error for invalid input")
	}
}

func TestContainer_Stream(t *testing.T) {
	t.Parallel()

	c := newContainer(&mockOggVorbisReader{sampleRate: 48000, channels: 2, samples: make([]float32, 96000)})

	s := c.Streams()[0]
	if s.SampleRate != 48000 || s.Channels != 2 || s.Layout != audio.LayoutStereo {
		t.Errorf("stream = %d Hz %d ch %v", s.SampleRate, s.Channels, s.Layout)
	}
	if s.Format != audio.FormatFLTP || s.CodecName != "vorbis" {
		t.Errorf("stream format = %v/%s, want fltp/vorbis", s.Format, s.CodecName)
	}
	if s.Frames != 48000 || c.Duration() != audio.TimeBase {
		t.Errorf("Frames = %d Duration = %d", s.Frames, c.Duration())
	}
}

func TestContainer_StereoPackets(t *testing.T) {
	t.Parallel()

	samples := []float32{0.5, -0.5, 0.25, -0.25, 0.125, -0.125}
	c := newContainer(&mockOggVorbisReader{sampleRate: 8000, channels: 2, samples: samples, emptyReads: 3})

	codec, err := Demuxer{}.OpenCodec(c.Streams()[0])
	if err != nil {
		t.Fatalf("OpenCodec() error = %v", err)
	}

	pkt, err := c.ReadPacket()
	if err != nil {
		t.Fatalf("ReadPacket() error = %v", err)
	}
	raw, err := codec.Decode(pkt)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if raw.NbSamples != 3 || len(raw.Data) != 2 {
		t.Fatalf("frame = %d samples in %d planes", raw.NbSamples, len(raw.Data))
	}
	for i := range 3 {
		if l, r := planeValue(t, raw.Data[0], i), planeValue(t, raw.Data[1], i); l != samples[i*2] || r != samples[i*2+1] {
			t.Errorf("sample %d = %v/%v", i, l, r)
		}
	}

	for range 2 {
		if _, err := c.ReadPacket(); err != io.EOF {
			t.Errorf("ReadPacket() at end error = %v, want io.EOF", err)
		}
	}
}

func TestCodec_SurroundOrder(t *testing.T) {
	t.Parallel()

	// FL C FR RL RR LFE in Vorbis order, tagged by value.
	in := []float32{1, 3, 2, 5, 6, 4}
	c := newContainer(&mockOggVorbisReader{sampleRate: 48000, channels: 6, samples: in})

	s := c.Streams()[0]
	if s.Layout != audio.Layout5Point1 {
		t.Fatalf("Layout = %v, want 5.1", s.Layout)
	}

	codec, err := Demuxer{}.OpenCodec(s)
	if err != nil {
		t.Fatal(err)
	}
	pkt, err := c.ReadPacket()
	if err != nil {
		t.Fatal(err)
	}
	raw, err := codec.Decode(pkt)
	if err != nil {
		t.Fatal(err)
	}

	// FL FR FC LFE SL SR
	want := []float32{1, 2, 3, 4, 5, 6}
	for ch := range want {
		if got := planeValue(t, raw.Data[ch], 0); got != want[ch] {
			t.Errorf("plane %d = %v, want %v", ch, got, want[ch])
		}
	}
}

func TestContainer_ReadError(t *testing.T) {
	t.Parallel()

	c := newContainer(&mockOggVorbisReader{sampleRate: 8000, channels: 1, returnErrors: true})
	if _, err := c.ReadPacket(); err == nil || err == io.EOF {
		t.Errorf("ReadPacket() error = %v, want decode failure", err)
	}
}

func TestContainer_NoProgress(t *testing.T) {
	t.Parallel()

	c := newContainer(&mockOggVorbisReader{sampleRate: 8000, channels: 1, samples: []float32{1}, emptyReads: maxEmptyReads * 2})
	if _, err := c.ReadPacket(); !errors.Is(err, io.ErrNoProgress) {
		t.Errorf("ReadPacket() error = %v, want io.ErrNoProgress", err)
	}
}

func TestOpenCodec_Errors(t *testing.T) {
	t.Parallel()

	if _, err := (Demuxer{}).OpenCodec(&audio.Stream{CodecName: "opus", Channels: 2}); !errors.Is(err, ErrUnsupportedCodec) {
		t.Errorf("OpenCodec(opus) error = %v", err)
	}
	if _, err := (Demuxer{}).OpenCodec(&audio.Stream{CodecName: "vorbis"}); !errors.Is(err, audio.ErrInvalidChannels) {
		t.Errorf("OpenCodec(0 channels) error = %v", err)
	}
}

func BenchmarkContainer_ReadPacket(b *testing.B) {
	samples := make([]float32, 44100*2)

	b.ReportAllocs()
	for b.Loop() {
		c := newContainer(&mockOggVorbisReader{sampleRate: 44100, channels: 2, samples: samples})
		for {
			if _, err := c.ReadPacket(); err != nil {
				break
			}
		}
	}
}
