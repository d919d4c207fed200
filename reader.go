// SPDX-License-Identifier: EPL-2.0

package pcmpipe

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/ik5/pcmpipe/audio"
)

// DefaultChunkSize is the chunk length used when NewReader is given zero.
const DefaultChunkSize = 4096

// Reader turns a Pipeline into a byte stream of interleaved PCM in the
// pipeline's output format. Planar output is interleaved on the way out.
//
// Decode errors raised before any audio came out of a file with a known
// duration are logged and skipped; some files start with a few broken
// packets. Any later decode error is returned.
type Reader struct {
	p      *Pipeline
	chunk  int
	logger *slog.Logger

	buf       []byte
	decoded   int64
	delivered int64
	eof       bool
}

func NewReader(p *Pipeline, chunkSize int) *Reader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Reader{p: p, chunk: chunkSize, logger: p.logger}
}

// ChunkSize is the length of every chunk ReadChunk returns except the last.
func (r *Reader) ChunkSize() int { return r.chunk }

// Position is the playback position in seconds of the bytes returned so
// far.
func (r *Reader) Position() float64 {
	out := r.p.Output()
	bytesPerSecond := out.SampleRate * out.Channels() * out.Format.BytesPerSample()
	if bytesPerSecond == 0 {
		return 0
	}
	return float64(r.delivered) / float64(bytesPerSecond)
}

// ReadChunk returns exactly ChunkSize bytes, fewer only for the final chunk
// of the stream, and then io.EOF.
func (r *Reader) ReadChunk() ([]byte, error) {
	if err := r.fill(r.chunk); err != nil {
		return nil, err
	}
	if len(r.buf) == 0 {
		return nil, io.EOF
	}

	n := min(r.chunk, len(r.buf))
	out := make([]byte, n)
	copy(out, r.buf)
	r.consume(n)
	return out, nil
}

// Read implements io.Reader.
func (r *Reader) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	if err := r.fill(1); err != nil {
		return 0, err
	}
	if len(r.buf) == 0 {
		return 0, io.EOF
	}

	n := copy(b, r.buf)
	r.consume(n)
	return n, nil
}

// Chunks yields ReadChunk results until the end of the stream. A decode
// error is yielded once and ends the sequence.
func (r *Reader) Chunks() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			b, err := r.ReadChunk()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(b, err) || err != nil {
				return
			}
		}
	}
}

func (r *Reader) consume(n int) {
	r.buf = r.buf[n:]
	r.delivered += int64(n)
	if len(r.buf) == 0 {
		r.buf = nil
	}
}

// fill decodes until at least n bytes are buffered or the stream ends.
func (r *Reader) fill(n int) error {
	for len(r.buf) < n && !r.eof {
		f, err := r.p.ReadFrame()
		if errors.Is(err, io.EOF) {
			r.eof = true
			break
		}
		if errors.Is(err, audio.ErrDecode) && r.decoded == 0 && r.p.src.Duration() != 0 {
			r.logger.Warn("ignoring decode error at start of file",
				slog.String("path", r.p.src.Path()), slog.Any("error", err))
			continue
		}
		if err != nil {
			return err
		}

		data, err := interleave(f)
		if err != nil {
			return fmt.Errorf("%w: %w", audio.ErrDecode, err)
		}
		r.buf = append(r.buf, data...)
		r.decoded += int64(len(data))
	}
	return nil
}

// interleave returns the frame's samples as one packed buffer.
func interleave(f *audio.Frame) ([]byte, error) {
	if !f.Format.IsPlanar() {
		return f.Data[0], nil
	}

	bps := f.Format.BytesPerSample()
	if len(f.Data) != f.Channels {
		return nil, audio.ErrShortBuffer
	}
	for _, p := range f.Data {
		if len(p) < f.NbSamples*bps {
			return nil, audio.ErrShortBuffer
		}
	}

	out := make([]byte, f.NbSamples*f.Channels*bps)
	for i := range f.NbSamples {
		for c, p := range f.Data {
			dst := (i*f.Channels + c) * bps
			copy(out[dst:dst+bps], p[i*bps:(i+1)*bps])
		}
	}
	return out, nil
}
