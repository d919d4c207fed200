// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/ik5/pcmpipe/audio"
)

// createWAVFile builds a canonical 44-byte-header WAV holding samples.
func createWAVFile(sampleRate, channels, bitsPerSample int, samples []int16) []byte {
	buf := new(bytes.Buffer)

	numChannels := uint16(channels)
	bits := uint16(bitsPerSample)
	byteRate := uint32(sampleRate) * uint32(numChannels) * uint32(bits/8)
	blockAlign := uint16(numChannels) * uint16(bits/8)
	dataSize := uint32(len(samples) * 2)
	riffSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, riffSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, numChannels)
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, bits)

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)

	for _, s := range samples {
		binary.Write(buf, binary.LittleEndian, s)
	}

	return buf.Bytes()
}

// createFloatWAVFile builds a 32-bit IEEE float WAV.
func createFloatWAVFile(sampleRate, channels int, samples []float32) []byte {
	buf := new(bytes.Buffer)
	dataSize := uint32(len(samples) * 4)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(formatIEEEFloat))
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*channels*4))
	binary.Write(buf, binary.LittleEndian, uint16(channels*4))
	binary.Write(buf, binary.LittleEndian, uint16(32))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	binary.Write(buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

func openWAV(t *testing.T, data []byte) audio.Container {
	t.Helper()

	c, err := Demuxer{}.Open(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })

	if err := c.FindStreamInfo(); err != nil {
		t.Fatalf("FindStreamInfo() error = %v", err)
	}
	return c
}

func TestDemuxer_Probe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header []byte
		want   int
	}{
		{"wav", createWAVFile(8000, 1, 16, nil), audio.ProbeScoreMax},
		{"riff but not wave", []byte("RIFF\x00\x00\x00\x00AVI LIST"), 0},
		{"short", []byte("RIFF"), 0},
		{"ogg", []byte("OggS\x00\x02\x00\x00\x00\x00\x00\x00"), 0},
	}

	for _, tt := range tests {
		if got := (Demuxer{}).Probe(tt.header); got != tt.want {
			t.Errorf("%s: Probe() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestDemuxer_ValidWAVFile(t *testing.T) {
	t.Parallel()

	samples := []int16{100, 200, 300, 400, 500}
	c := openWAV(t, createWAVFile(16000, 1, 16, samples))

	if c.FormatName() != "wav" {
		t.Errorf("FormatName() = %q, want wav", c.FormatName())
	}

	streams := c.Streams()
	if len(streams) != 1 {
		t.Fatalf("Streams() = %d, want 1", len(streams))
	}

	s := streams[0]
	if s.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", s.SampleRate)
	}
	if s.Channels != 1 || s.Layout != audio.LayoutMono {
		t.Errorf("Channels = %d (%v), want mono", s.Channels, s.Layout)
	}
	if s.Format != audio.FormatS16 {
		t.Errorf("Format = %v, want s16", s.Format)
	}
	if s.CodecName != "pcm_s16le" {
		t.Errorf("CodecName = %q, want pcm_s16le", s.CodecName)
	}
	if s.Frames != int64(len(samples)) {
		t.Errorf("Frames = %d, want %d", s.Frames, len(samples))
	}
	if s.BitRate != 16000*16 {
		t.Errorf("BitRate = %d, want %d", s.BitRate, 16000*16)
	}
	if want := int64(len(samples)) * audio.TimeBase / 16000; c.Duration() != want {
		t.Errorf("Duration() = %d, want %d", c.Duration(), want)
	}
}

func TestDemuxer_StereoRoundTrip(t *testing.T) {
	t.Parallel()

	samples := []int16{100, -100, 200, -200, 16384, -16384}
	c := openWAV(t, createWAVFile(44100, 2, 16, samples))

	s := c.Streams()[0]
	if s.Layout != audio.LayoutStereo {
		t.Errorf("Layout = %v, want stereo", s.Layout)
	}

	codec, err := Demuxer{}.OpenCodec(s)
	if err != nil {
		t.Fatalf("OpenCodec() error = %v", err)
	}
	defer codec.Close()

	pkt, err := c.ReadPacket()
	if err != nil {
		t.Fatalf("ReadPacket() error = %v", err)
	}

	raw, err := codec.Decode(pkt)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if raw.NbSamples != 3 {
		t.Fatalf("NbSamples = %d, want 3", raw.NbSamples)
	}

	for i, want := range samples {
		got := int16(binary.LittleEndian.Uint16(raw.Data[0][i*2:]))
		if got != want {
			t.Errorf("sample %d = %d, want %d", i, got, want)
		}
	}

	if _, err := c.ReadPacket(); err != io.EOF {
		t.Errorf("ReadPacket() at end error = %v, want io.EOF", err)
	}
}

func TestDemuxer_PacketSplitting(t *testing.T) {
	t.Parallel()

	samples := make([]int16, packetSamples*2+10)
	c := openWAV(t, createWAVFile(8000, 1, 16, samples))

	var sizes []int
	var last int64 = -1
	for {
		pkt, err := c.ReadPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadPacket() error = %v", err)
		}
		if pkt.PTS <= last {
			t.Errorf("PTS %d not increasing after %d", pkt.PTS, last)
		}
		last = pkt.PTS
		sizes = append(sizes, len(pkt.Data))
	}

	want := []int{packetSamples * 2, packetSamples * 2, 20}
	if len(sizes) != len(want) {
		t.Fatalf("packet sizes = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Errorf("packet %d size = %d, want %d", i, sizes[i], want[i])
		}
	}
}

func TestDemuxer_FloatWAV(t *testing.T) {
	t.Parallel()

	c := openWAV(t, createFloatWAVFile(48000, 1, []float32{0.5, -0.25}))

	s := c.Streams()[0]
	if s.Format != audio.FormatFLT || s.CodecName != "pcm_f32le" {
		t.Fatalf("stream = %v/%s, want flt/pcm_f32le", s.Format, s.CodecName)
	}

	codec, err := Demuxer{}.OpenCodec(s)
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

	got, err := audio.DecodeSamples(raw.Data, raw.NbSamples, 1, audio.FormatFLT)
	if err != nil {
		t.Fatalf("DecodeSamples() error = %v", err)
	}
	if got[0][0] != 0.5 || got[0][1] != -0.25 {
		t.Errorf("samples = %v, want [0.5 -0.25]", got[0])
	}
}

func TestDemuxer_EmptyData(t *testing.T) {
	t.Parallel()

	c := openWAV(t, createWAVFile(8000, 1, 16, nil))

	if c.Streams()[0].Frames != 0 {
		t.Errorf("Frames = %d, want 0", c.Streams()[0].Frames)
	}
	if c.Duration() != 0 {
		t.Errorf("Duration() = %d, want 0", c.Duration())
	}
	if _, err := c.ReadPacket(); err != io.EOF {
		t.Errorf("ReadPacket() error = %v, want io.EOF", err)
	}
}

func TestDemuxer_NotWAVFile(t *testing.T) {
	t.Parallel()

	_, err := Demuxer{}.Open(bytes.NewReader([]byte("This is not a WAV file at all, just text.")))
	if !errors.Is(err, ErrNotWavFile) {
		t.Errorf("Open() error = %v, want ErrNotWavFile", err)
	}
}

func TestDemuxer_UnsupportedFormatTag(t *testing.T) {
	t.Parallel()

	data := createWAVFile(8000, 1, 16, []int16{1, 2})
	binary.LittleEndian.PutUint16(data[20:22], 0x0055) // MPEG layer 3

	_, err := Demuxer{}.Open(bytes.NewReader(data))
	if !errors.Is(err, ErrUnsupportedWavLayout) {
		t.Errorf("Open() error = %v, want ErrUnsupportedWavLayout", err)
	}
}

func TestDemuxer_UnsupportedBitDepth(t *testing.T) {
	t.Parallel()

	data := createWAVFile(8000, 1, 16, []int16{1, 2})
	binary.LittleEndian.PutUint16(data[34:36], 12)

	_, err := Demuxer{}.Open(bytes.NewReader(data))
	if !errors.Is(err, ErrUnsupportedBitDepth) {
		t.Errorf("Open() error = %v, want ErrUnsupportedBitDepth", err)
	}
}

func TestDemuxer_OpenCodecUnknown(t *testing.T) {
	t.Parallel()

	_, err := Demuxer{}.OpenCodec(&audio.Stream{CodecName: "adpcm_ms", Channels: 1})
	if !errors.Is(err, ErrUnsupportedCodec) {
		t.Errorf("OpenCodec() error = %v, want ErrUnsupportedCodec", err)
	}
}

func TestDemuxer_VariousSampleRates(t *testing.T) {
	t.Parallel()

	for _, rate := range []int{8000, 11025, 16000, 22050, 44100, 48000, 96000} {
		c, err := Demuxer{}.Open(bytes.NewReader(createWAVFile(rate, 1, 16, []int16{1, 2, 3, 4})))
		if err != nil {
			t.Errorf("Open(%d Hz) error = %v", rate, err)
			continue
		}
		if got := c.Streams()[0].SampleRate; got != rate {
			t.Errorf("SampleRate = %d, want %d", got, rate)
		}
		c.Close()
	}
}

func BenchmarkDemuxer_ReadPacket(b *testing.B) {
	data := createWAVFile(44100, 2, 16, make([]int16, 44100*2))

	b.ReportAllocs()
	for b.Loop() {
		c, err := Demuxer{}.Open(bytes.NewReader(data))
		if err != nil {
			b.Fatal(err)
		}
		for {
			if _, err := c.ReadPacket(); err != nil {
				break
			}
		}
	}
}
