// SPDX-License-Identifier: EPL-2.0

// Package pcm decodes uncompressed PCM packets into little-endian samples.
//
// The WAV and AIFF demuxers hand their data chunks to this codec unchanged;
// it only reorders bytes, widens 24-bit samples to 32 bits and shifts
// signed 8-bit samples into the unsigned range.
package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ik5/pcmpipe/audio"
)

var ErrUnsupportedEncoding = errors.New("unsupported PCM encoding")

// Encoding is the on-disk sample representation.
type Encoding int

const (
	U8 Encoding = iota + 1
	S8
	S16LE
	S16BE
	S24LE
	S24BE
	S32LE
	S32BE
	F32LE
	F32BE
	F64LE
	F64BE
)

type encodingInfo struct {
	name   string
	bytes  int
	format audio.SampleFormat
}

var encodings = map[Encoding]encodingInfo{
	U8:    {"pcm_u8", 1, audio.FormatU8},
	S8:    {"pcm_s8", 1, audio.FormatU8},
	S16LE: {"pcm_s16le", 2, audio.FormatS16},
	S16BE: {"pcm_s16be", 2, audio.FormatS16},
	S24LE: {"pcm_s24le", 3, audio.FormatS32},
	S24BE: {"pcm_s24be", 3, audio.FormatS32},
	S32LE: {"pcm_s32le", 4, audio.FormatS32},
	S32BE: {"pcm_s32be", 4, audio.FormatS32},
	F32LE: {"pcm_f32le", 4, audio.FormatFLT},
	F32BE: {"pcm_f32be", 4, audio.FormatFLT},
	F64LE: {"pcm_f64le", 8, audio.FormatDBL},
	F64BE: {"pcm_f64be", 8, audio.FormatDBL},
}

// EncodingFor picks the encoding for a bit depth. 8-bit data is unsigned
// unless signed8 is set, as AIFF stores it.
func EncodingFor(bits int, float, bigEndian, signed8 bool) (Encoding, error) {
	var e Encoding
	switch {
	case float && bits == 32:
		e = F32LE
	case float && bits == 64:
		e = F64LE
	case float:
		return 0, fmt.Errorf("%w: %d-bit float", ErrUnsupportedEncoding, bits)
	case bits == 8 && signed8:
		return S8, nil
	case bits == 8:
		return U8, nil
	case bits == 16:
		e = S16LE
	case bits == 24:
		e = S24LE
	case bits == 32:
		e = S32LE
	default:
		return 0, fmt.Errorf("%w: %d-bit integer", ErrUnsupportedEncoding, bits)
	}
	if bigEndian {
		e++
	}
	return e, nil
}

func (e Encoding) String() string { return encodings[e].name }

// ByName finds the encoding for a codec name such as "pcm_s16le".
func ByName(name string) (Encoding, bool) {
	for e, info := range encodings {
		if info.name == name {
			return e, true
		}
	}
	return 0, false
}

// BytesPerSample is the stored size of one sample.
func (e Encoding) BytesPerSample() int { return encodings[e].bytes }

// SampleFormat is what the codec emits for e.
func (e Encoding) SampleFormat() audio.SampleFormat { return encodings[e].format }

// Codec converts packets of e into interleaved little-endian frames.
type Codec struct {
	enc      Encoding
	channels int
}

func NewCodec(e Encoding, channels int) (*Codec, error) {
	if _, ok := encodings[e]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedEncoding, int(e))
	}
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d", audio.ErrInvalidChannels, channels)
	}
	return &Codec{enc: e, channels: channels}, nil
}

func (c *Codec) Name() string { return c.enc.String() }
func (c *Codec) Close() error { return nil }

// Decode converts every whole sample frame in pkt. Trailing partial frames
// are dropped. PCM holds nothing back, so a nil pkt yields nothing.
func (c *Codec) Decode(pkt *audio.Packet) (*audio.RawFrame, error) {
	if pkt == nil {
		return nil, nil
	}

	info := encodings[c.enc]
	frameBytes := info.bytes * c.channels
	n := len(pkt.Data) / frameBytes
	if n == 0 {
		return nil, nil
	}

	outBytes := info.format.BytesPerSample()
	out := make([]byte, n*c.channels*outBytes)
	src := pkt.Data[:n*frameBytes]

	for i := range n * c.channels {
		s := src[i*info.bytes : (i+1)*info.bytes]
		d := out[i*outBytes : (i+1)*outBytes]
		convert(c.enc, d, s)
	}

	return &audio.RawFrame{NbSamples: n, Data: [][]byte{out}}, nil
}

func convert(e Encoding, dst, src []byte) {
	switch e {
	case U8:
		dst[0] = src[0]
	case S8:
		dst[0] = src[0] ^ 0x80
	case S16LE, S32LE, F32LE, F64LE:
		copy(dst, src)
	case S16BE:
		binary.LittleEndian.PutUint16(dst, binary.BigEndian.Uint16(src))
	case S32BE, F32BE:
		binary.LittleEndian.PutUint32(dst, binary.BigEndian.Uint32(src))
	case F64BE:
		binary.LittleEndian.PutUint64(dst, binary.BigEndian.Uint64(src))
	case S24LE:
		// Left-justify into 32 bits.
		dst[0], dst[1], dst[2], dst[3] = 0, src[0], src[1], src[2]
	case S24BE:
		dst[0], dst[1], dst[2], dst[3] = 0, src[2], src[1], src[0]
	}
}
