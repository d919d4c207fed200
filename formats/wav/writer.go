// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/pcmpipe/audio"
	"github.com/ik5/pcmpipe/utils"
)

// Writer encodes frames into a 16-bit PCM WAV file. The header is patched
// on Close, so the destination must be seekable. Use WriteWAV16 for pipes.
type Writer struct {
	enc      *gowav.Encoder
	channels int
	buf      *goaudio.IntBuffer
}

func NewWriter(w io.WriteSeeker, sampleRate, channels int) (*Writer, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d", audio.ErrInvalidChannels, channels)
	}

	return &Writer{
		enc:      gowav.NewEncoder(w, sampleRate, 16, channels, formatPCM),
		channels: channels,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}, nil
}

// SetMetadata stores tags for the LIST/INFO chunk written on Close.
func (w *Writer) SetMetadata(md *audio.Metadata) {
	get := func(key string) string {
		v, _ := md.Get(key)
		return padInfo(v)
	}

	m := &gowav.Metadata{
		Title:        get("title"),
		Artist:       get("artist"),
		Product:      get("album"),
		Genre:        get("genre"),
		CreationDate: get("date"),
		TrackNbr:     get("track"),
		Comments:     get("comment"),
		Copyright:    get("copyright"),
		Software:     get("encoder"),
	}
	w.enc.Metadata = m
}

// padInfo keeps an INFO value's chunk size even. The encoder stores the
// value plus a NUL and never writes the RIFF pad byte, while readers skip
// one after every odd-sized chunk.
func padInfo(v string) string {
	if v != "" && len(v)%2 == 0 {
		return v + "\x00"
	}
	return v
}

// WriteFrame appends f, converting any sample format to 16-bit.
func (w *Writer) WriteFrame(f *audio.Frame) error {
	if f.Channels != w.channels {
		return fmt.Errorf("%w: frame has %d channels, writer %d", audio.ErrInvalidChannels, f.Channels, w.channels)
	}

	planes, err := audio.DecodeSamples(f.Data, f.NbSamples, f.Channels, f.Format)
	if err != nil {
		return err
	}

	w.buf.Data = w.buf.Data[:0]
	for i := range f.NbSamples {
		for c := range w.channels {
			w.buf.Data = append(w.buf.Data, int(utils.Float32ToInt16(float32(planes[c][i]))))
		}
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// WriteWAV16 writes interleaved 16-bit PCM with a canonical 44-byte header.
// It needs no seeking, so the whole sample count must be known up front.
func WriteWAV16(w io.Writer, sampleRate, channels int, samples []int16) error {
	if channels <= 0 {
		return fmt.Errorf("%w: %d", audio.ErrInvalidChannels, channels)
	}

	if err := writeHeader16(w, sampleRate, channels, uint32(len(samples)*2)); err != nil {
		return err
	}

	const chunkSize = 8192
	if len(samples) == 0 {
		return nil
	}

	buf := make([]byte, min(len(samples), chunkSize)*2)
	for i := 0; i < len(samples); i += chunkSize {
		chunk := samples[i:min(i+chunkSize, len(samples))]
		buf = buf[:len(chunk)*2]

		for j, s := range chunk {
			binary.LittleEndian.PutUint16(buf[j*2:], uint16(s))
		}

		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	return nil
}

func writeHeader16(w io.Writer, sampleRate, channels int, dataSize uint32) error {
	const bitsPerSample = 16
	blockAlign := uint16(channels * bitsPerSample / 8)

	header := make([]byte, 44)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], formatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate)*uint32(blockAlign))
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
