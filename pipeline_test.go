// SPDX-License-Identifier: EPL-2.0

package pcmpipe

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/pcmpipe/audio"
	"github.com/ik5/pcmpipe/internal/audiotest"
	"github.com/ik5/pcmpipe/media"
	"github.com/ik5/pcmpipe/resample"
)

// fakeInput writes a file the fake demuxer accepts and a registry that
// knows d.
func fakeInput(tb testing.TB, d *audiotest.Demuxer) (string, *audio.Registry) {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "input.fake")
	require.NoError(tb, os.WriteFile(path, bytes.Clone(audiotest.Magic), 0o600))

	reg := audio.NewRegistry()
	reg.Register(d.Name(), d)
	return path, reg
}

// generated builds a single-stream fake demuxer holding n samples of w.
func generated(sf audio.StreamFormat, n, perPacket int, w audiotest.Waveform) *audiotest.Demuxer {
	return &audiotest.Demuxer{
		Streams: []audio.Stream{audiotest.AudioStream(sf)},
		Packets: audiotest.PacketsOf(0, sf.Format, sf.Channels(), n, perPacket, w),
	}
}

func openSource(tb testing.TB, d *audiotest.Demuxer) *media.Source {
	tb.Helper()

	path, reg := fakeInput(tb, d)
	src, err := media.Open(path, media.WithRegistry(reg))
	require.NoError(tb, err)
	tb.Cleanup(func() { src.Close() })
	return src
}

func collect(t *testing.T, p *Pipeline) (frames []*audio.Frame, samples int) {
	t.Helper()

	for f, err := range p.Frames() {
		require.NoError(t, err)
		frames = append(frames, f)
		samples += f.NbSamples
	}
	return frames, samples
}

var cd = audio.StreamFormat{SampleRate: 44100, Layout: audio.LayoutStereo, Format: audio.FormatS16}

func TestPipeline_Passthrough(t *testing.T) {
	t.Parallel()

	src := openSource(t, generated(cd, 1000, 250, audiotest.Sine(44100, 440)))
	p, err := New(src)
	require.NoError(t, err)
	defer p.Close()

	assert.False(t, p.Resampling())
	assert.Equal(t, cd, p.Output())
	assert.Same(t, src, p.Source())

	frames, samples := collect(t, p)
	assert.Len(t, frames, 4)
	assert.Equal(t, 1000, samples)
}

func TestPipeline_Resample(t *testing.T) {
	t.Parallel()

	// 0.1 s of CD audio to 22.05 kHz mono.
	src := openSource(t, generated(cd, 4410, 4410, audiotest.Sine(44100, 440)))
	p, err := New(src, WithOutput(audio.StreamFormat{SampleRate: 22050, Layout: audio.LayoutMono}))
	require.NoError(t, err)
	defer p.Close()

	require.True(t, p.Resampling())
	assert.Equal(t, audio.StreamFormat{SampleRate: 22050, Layout: audio.LayoutMono, Format: audio.FormatS16}, p.Output())

	frames, samples := collect(t, p)
	require.NotEmpty(t, frames)
	assert.Equal(t, 2205, samples)
	assert.Equal(t, 4410, frames[0].Size())
	assert.Equal(t, 1, frames[0].Channels)
}

func TestPipeline_FlushesResampler(t *testing.T) {
	t.Parallel()

	src := openSource(t, generated(cd, 44100, 1024, audiotest.Constant(0.25)))
	p, err := New(src, WithOutput(audio.StreamFormat{SampleRate: 16000}))
	require.NoError(t, err)
	defer p.Close()

	_, samples := collect(t, p)
	assert.InDelta(t, 16000, samples, 2, "samples held by the resampler must come out at the end")
}

// A container that gives only a channel count still resamples: the layout
// is derived from the count.
func TestPipeline_UndescribedLayout(t *testing.T) {
	t.Parallel()

	sf := audio.StreamFormat{SampleRate: 44100, Layout: audio.Layout6Point1, Format: audio.FormatS16}
	d := generated(sf, 4410, 1024, audiotest.Constant(0.25))
	d.Streams[0].Layout = 0

	src := openSource(t, d)
	assert.Equal(t, audio.Layout6Point1, src.ChannelLayout())

	p, err := New(src, WithOutput(audio.StreamFormat{SampleRate: 22050, Layout: audio.LayoutStereo}))
	require.NoError(t, err)
	defer p.Close()

	frames, samples := collect(t, p)
	require.NotEmpty(t, frames)
	assert.Equal(t, 2205, samples)
	assert.Equal(t, 2, frames[0].Channels)
}

func TestPipeline_PlanarOutput(t *testing.T) {
	t.Parallel()

	src := openSource(t, generated(cd, 512, 512, audiotest.PerChannel(0.5, -0.5)))
	p, err := New(src, WithOutput(audio.StreamFormat{Format: audio.FormatFLTP}))
	require.NoError(t, err)
	defer p.Close()

	f, err := p.ReadFrame()
	require.NoError(t, err)
	require.Len(t, f.Data, 2)
	assert.Equal(t, len(f.Data[0]), len(f.Data[1]))

	got, err := audio.DecodeSamples(f.Data, f.NbSamples, 2, f.Format)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got[0][10], 1e-3)
	assert.InDelta(t, -0.5, got[1][10], 1e-3)
}

func TestPipeline_EngineOptions(t *testing.T) {
	t.Parallel()

	var got resample.Options
	spy := func(in, out, ch int, o resample.Options) (resample.Engine, error) {
		got = o
		return resample.NewCubicEngine(in, out, ch, o)
	}

	src := openSource(t, generated(cd, 10, 10, audiotest.Silence()))
	p, err := New(src, WithLinear(), WithCutoff(0.5), WithEngine(spy))
	require.NoError(t, err)
	defer p.Close()

	assert.True(t, p.Resampling(), "engine options force a resampler")
	assert.True(t, got.Linear)
	assert.InDelta(t, 0.5, got.Cutoff, 1e-9)
}

func TestPipeline_InvalidOutput(t *testing.T) {
	t.Parallel()

	src := openSource(t, generated(cd, 10, 10, audiotest.Silence()))
	_, err := New(src, WithOutput(audio.StreamFormat{SampleRate: -8000}))
	assert.ErrorIs(t, err, audio.ErrResample)
}

func TestPipeline_DecodeErrorDoesNotEndStream(t *testing.T) {
	t.Parallel()

	d := generated(cd, 300, 100, audiotest.Silence())
	d.DecodeErrs = map[int]error{1: nil}
	p, err := New(openSource(t, d))
	require.NoError(t, err)
	defer p.Close()

	var frames int
	var errs int
	for range 10 {
		_, err := p.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			require.ErrorIs(t, err, audio.ErrDecode)
			errs++
			continue
		}
		frames++
	}
	assert.Equal(t, 2, frames)
	assert.Equal(t, 1, errs)
}

func TestOpen_OwnsSource(t *testing.T) {
	t.Parallel()

	d := generated(cd, 100, 100, audiotest.Silence())
	path, reg := fakeInput(t, d)

	p, err := Open(path, WithMediaOptions(media.WithRegistry(reg)))
	require.NoError(t, err)

	_, samples := collect(t, p)
	assert.Equal(t, 100, samples)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, d.Stats.ContainersClosed)
	assert.Equal(t, 1, d.Stats.CodecsClosed)
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "nope.ogg"))
	assert.ErrorIs(t, err, audio.ErrFile)

	d := generated(cd, 100, 100, audiotest.Silence())
	path, reg := fakeInput(t, d)
	_, err = Open(path,
		WithMediaOptions(media.WithRegistry(reg)),
		WithOutput(audio.StreamFormat{SampleRate: -1}),
	)
	assert.ErrorIs(t, err, audio.ErrResample)
	assert.Equal(t, 1, d.Stats.ContainersClosed, "source opened by Open must be closed on failure")
}

func BenchmarkPipeline_Resample(b *testing.B) {
	d := generated(cd, 44100, 1024, audiotest.Sine(44100, 440))
	path, reg := fakeInput(b, d)
	out := WithOutput(audio.StreamFormat{SampleRate: 16000, Layout: audio.LayoutMono})

	for b.Loop() {
		p, err := Open(path, WithMediaOptions(media.WithRegistry(reg)), out)
		if err != nil {
			b.Fatal(err)
		}
		for _, err := range p.Frames() {
			if err != nil {
				b.Fatal(err)
			}
		}
		p.Close()
	}
}
