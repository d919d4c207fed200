// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"fmt"
	"strings"
)

// SampleFormat identifies how a single PCM sample is stored and whether
// channels share one buffer (packed) or get a buffer each (planar).
type SampleFormat int

const (
	FormatNone SampleFormat = iota
	FormatU8
	FormatS16
	FormatS32
	FormatFLT
	FormatDBL
	FormatU8P
	FormatS16P
	FormatS32P
	FormatFLTP
	FormatDBLP
	FormatS64
	FormatS64P

	formatCount
)

type formatInfo struct {
	name   string
	bytes  int
	planar bool
	// alt is the same sample type with the other buffer arrangement.
	alt SampleFormat
}

var formatTable = [formatCount]formatInfo{
	FormatNone: {name: "none"},
	FormatU8:   {name: "u8", bytes: 1, alt: FormatU8P},
	FormatS16:  {name: "s16", bytes: 2, alt: FormatS16P},
	FormatS32:  {name: "s32", bytes: 4, alt: FormatS32P},
	FormatFLT:  {name: "flt", bytes: 4, alt: FormatFLTP},
	FormatDBL:  {name: "dbl", bytes: 8, alt: FormatDBLP},
	FormatU8P:  {name: "u8p", bytes: 1, planar: true, alt: FormatU8},
	FormatS16P: {name: "s16p", bytes: 2, planar: true, alt: FormatS16},
	FormatS32P: {name: "s32p", bytes: 4, planar: true, alt: FormatS32},
	FormatFLTP: {name: "fltp", bytes: 4, planar: true, alt: FormatFLT},
	FormatDBLP: {name: "dblp", bytes: 8, planar: true, alt: FormatDBL},
	FormatS64:  {name: "s64", bytes: 8, alt: FormatS64P},
	FormatS64P: {name: "s64p", bytes: 8, planar: true, alt: FormatS64},
}

// Valid reports whether f names a real sample format.
func (f SampleFormat) Valid() bool {
	return f > FormatNone && f < formatCount
}

// BytesPerSample returns the size of one sample of one channel, or 0 for an
// invalid format.
func (f SampleFormat) BytesPerSample() int {
	if !f.Valid() {
		return 0
	}
	return formatTable[f].bytes
}

// IsPlanar reports whether each channel is stored in its own buffer.
func (f SampleFormat) IsPlanar() bool {
	if !f.Valid() {
		return false
	}
	return formatTable[f].planar
}

// Packed returns the interleaved variant of f.
func (f SampleFormat) Packed() SampleFormat {
	if !f.IsPlanar() {
		return f
	}
	return formatTable[f].alt
}

// Planar returns the planar variant of f.
func (f SampleFormat) Planar() SampleFormat {
	if !f.Valid() || f.IsPlanar() {
		return f
	}
	return formatTable[f].alt
}

func (f SampleFormat) String() string {
	if f < FormatNone || f >= formatCount {
		return fmt.Sprintf("SampleFormat(%d)", int(f))
	}
	return formatTable[f].name
}

// MarshalText implements encoding.TextMarshaler.
func (f SampleFormat) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFormat, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text leaves f
// as FormatNone.
func (f *SampleFormat) UnmarshalText(text []byte) error {
	if len(bytes.TrimSpace(text)) == 0 {
		*f = FormatNone
		return nil
	}
	v, err := ParseSampleFormat(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ParseSampleFormat looks a format up by its short name ("s16", "fltp", ...).
func ParseSampleFormat(name string) (SampleFormat, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f := FormatU8; f < formatCount; f++ {
		if formatTable[f].name == name {
			return f, nil
		}
	}
	return FormatNone, fmt.Errorf("%w: %q", ErrInvalidFormat, name)
}
