// SPDX-License-Identifier: EPL-2.0

package media

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"

	"github.com/ik5/pcmpipe/audio"
)

// Source is an opened media file bound to its best audio stream and codec.
// Stream parameters are captured once in Open and never change.
type Source struct {
	path      string
	file      *os.File
	container audio.Container
	stream    *audio.Stream
	codec     audio.Codec
	metadata  *audio.Metadata
	logger    *slog.Logger

	decoder *FrameDecoder
	closed  bool
}

// Open probes path by content, selects the best audio stream and opens its
// codec. File and container failures wrap audio.ErrFile; stream and codec
// failures wrap audio.ErrDecode. On error nothing is left open.
func Open(path string, opts ...Option) (_ *Source, err error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var cleanup []func()
	defer func() {
		if err == nil {
			return
		}
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open %s: %w", audio.ErrFile, path, err)
	}
	cleanup = append(cleanup, func() { f.Close() })

	demuxer, err := probe(f, o.registry)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", audio.ErrFile, path, err)
	}

	container, err := demuxer.Open(f)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open input %s: %w", audio.ErrFile, path, err)
	}
	cleanup = append(cleanup, func() { container.Close() })

	if err := container.FindStreamInfo(); err != nil {
		return nil, fmt.Errorf("%w: could not find stream information: %w", audio.ErrDecode, err)
	}

	stream, err := audio.FindBestStream(container.Streams(), audio.MediaTypeAudio)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrDecode, err)
	}

	codec, err := demuxer.OpenCodec(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open codec: %w", audio.ErrDecode, err)
	}

	md := audio.NewMetadata()
	md.Merge(container.Metadata())
	md.Merge(stream.Metadata)

	o.logger.Debug("opened media",
		slog.String("path", path),
		slog.String("format", container.FormatName()),
		slog.Int("stream", stream.Index),
		slog.String("codec", codec.Name()),
		slog.Int("sample_rate", stream.SampleRate),
		slog.Int("channels", stream.Channels),
		slog.String("sample_fmt", stream.Format.String()),
	)

	s := &Source{
		path:      path,
		file:      f,
		container: container,
		stream:    stream,
		codec:     codec,
		metadata:  md,
		logger:    o.logger,
	}
	s.decoder = &FrameDecoder{src: s, singleAttempt: o.singleAttempt}
	return s, nil
}

// probe reads the leading bytes of r, picks a demuxer and rewinds r.
func probe(r io.ReadSeeker, reg *audio.Registry) (audio.Demuxer, error) {
	header := make([]byte, audio.ProbeSize)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w", err)
	}

	d, err := reg.Detect(header[:n])
	if err != nil {
		return nil, err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return d, nil
}

func (s *Source) Path() string                     { return s.path }
func (s *Source) FormatName() string               { return s.container.FormatName() }
func (s *Source) StreamIndex() int                 { return s.stream.Index }
func (s *Source) CodecName() string                { return s.codec.Name() }
func (s *Source) BitRate() int64                   { return s.stream.BitRate }
func (s *Source) SampleRate() int                  { return s.stream.SampleRate }
func (s *Source) Channels() int                    { return s.stream.Channels }
func (s *Source) SampleFormat() audio.SampleFormat { return s.stream.Format }

// ChannelLayout falls back to the default layout for the channel count
// when the container did not describe one.
func (s *Source) ChannelLayout() audio.ChannelLayout {
	if s.stream.Layout != 0 {
		return s.stream.Layout
	}
	return audio.DefaultChannelLayout(s.stream.Channels)
}

func (s *Source) StreamFormat() audio.StreamFormat {
	return audio.StreamFormat{
		SampleRate: s.stream.SampleRate,
		Layout:     s.ChannelLayout(),
		Format:     s.stream.Format,
	}
}

// Duration in seconds, 0 when the container does not know it.
func (s *Source) Duration() float64 {
	return float64(s.container.Duration()) / audio.TimeBase
}

// Metadata returns a copy of the container tags overlaid with the stream
// tags.
func (s *Source) Metadata() *audio.Metadata { return s.metadata.Clone() }

// Decoder returns the frame decoder bound to this source. There is only one;
// every call returns the same instance.
func (s *Source) Decoder() *FrameDecoder { return s.decoder }

// ReadFrame is shorthand for s.Decoder().ReadFrame().
func (s *Source) ReadFrame() (*audio.Frame, error) { return s.decoder.ReadFrame() }

// Frames yields decoded frames until the end of the stream. A decode error
// is yielded once and ends the sequence.
func (s *Source) Frames() iter.Seq2[*audio.Frame, error] {
	return func(yield func(*audio.Frame, error) bool) {
		for {
			f, err := s.decoder.ReadFrame()
			if errors.Is(err, io.EOF) {
				if s.decoder.Done() {
					return
				}
				continue
			}
			if !yield(f, err) || err != nil {
				return
			}
		}
	}
}

// Close releases the codec, then the container and file. Calling it again
// does nothing.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	errs := []error{s.codec.Close(), s.container.Close(), s.file.Close()}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrFile, err)
	}
	return nil
}
