// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// ChannelLayout is a bitmask of speaker positions.
type ChannelLayout uint64

const (
	ChannelFrontLeft ChannelLayout = 1 << iota
	ChannelFrontRight
	ChannelFrontCenter
	ChannelLowFrequency
	ChannelBackLeft
	ChannelBackRight
	ChannelFrontLeftOfCenter
	ChannelFrontRightOfCenter
	ChannelBackCenter
	ChannelSideLeft
	ChannelSideRight
)

const (
	LayoutMono     = ChannelFrontCenter
	LayoutStereo   = ChannelFrontLeft | ChannelFrontRight
	Layout2Point1  = LayoutStereo | ChannelLowFrequency
	LayoutSurround = LayoutStereo | ChannelFrontCenter
	LayoutQuad     = LayoutStereo | ChannelBackLeft | ChannelBackRight
	Layout5Point0  = LayoutSurround | ChannelSideLeft | ChannelSideRight
	Layout5Point1  = Layout5Point0 | ChannelLowFrequency
	Layout6Point1  = Layout5Point1 | ChannelBackCenter
	Layout7Point1  = Layout5Point1 | ChannelBackLeft | ChannelBackRight
)

var namedLayouts = []struct {
	name   string
	layout ChannelLayout
}{
	{"mono", LayoutMono},
	{"stereo", LayoutStereo},
	{"2.1", Layout2Point1},
	{"3.0", LayoutSurround},
	{"quad", LayoutQuad},
	{"5.0", Layout5Point0},
	{"5.1", Layout5Point1},
	{"6.1", Layout6Point1},
	{"7.1", Layout7Point1},
}

// Channels returns the number of speaker positions in the layout.
func (l ChannelLayout) Channels() int {
	return bits.OnesCount64(uint64(l))
}

func (l ChannelLayout) String() string {
	for _, n := range namedLayouts {
		if n.layout == l {
			return n.name
		}
	}
	if l == 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d channels (0x%x)", l.Channels(), uint64(l))
}

// MarshalText implements encoding.TextMarshaler.
func (l ChannelLayout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text leaves l
// unset.
func (l *ChannelLayout) UnmarshalText(text []byte) error {
	if len(bytes.TrimSpace(text)) == 0 {
		*l = 0
		return nil
	}
	v, err := ParseChannelLayout(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ParseChannelLayout accepts a layout name ("stereo", "5.1"), a hex mask
// ("0x3") or a plain channel count ("2").
func ParseChannelLayout(s string) (ChannelLayout, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, n := range namedLayouts {
		if n.name == s {
			return n.layout, nil
		}
	}

	if strings.HasPrefix(s, "0x") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil || v == 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidLayout, s)
		}
		return ChannelLayout(v), nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLayout, s)
	}
	l := DefaultChannelLayout(n)
	if l == 0 {
		return 0, fmt.Errorf("%w: no default layout for %d channels", ErrInvalidLayout, n)
	}
	return l, nil
}

// DefaultChannelLayout returns the conventional layout for a channel count.
// Counts without a named layout take the first n speaker positions. It
// returns 0 only for counts outside 1..64.
func DefaultChannelLayout(channels int) ChannelLayout {
	switch channels {
	case 1:
		return LayoutMono
	case 2:
		return LayoutStereo
	case 3:
		return LayoutSurround
	case 4:
		return LayoutQuad
	case 5:
		return Layout5Point0
	case 6:
		return Layout5Point1
	case 7:
		return Layout6Point1
	case 8:
		return Layout7Point1
	case 64:
		return ^ChannelLayout(0)
	}
	if channels <= 0 || channels > 64 {
		return 0
	}
	return ChannelLayout(1)<<channels - 1
}
