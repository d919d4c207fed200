// SPDX-License-Identifier: EPL-2.0

package aac

import (
	"errors"
	"fmt"
)

const (
	adtsHeaderSize = 7
	samplesPerRDB  = 1024
)

var (
	ErrInvalidHeader = errors.New("invalid ADTS header")
	ErrNoSync        = errors.New("ADTS sync word not found")
)

var sampleRates = [...]int{
	96000, 88200, 64000, 48000, 44100, 32000, 24000,
	22050, 16000, 12000, 11025, 8000, 7350,
}

// adtsHeader holds the fixed and variable header fields the demuxer uses.
type adtsHeader struct {
	profile     int
	sampleRate  int
	channels    int
	frameLength int
	blocks      int
}

func (h adtsHeader) samples() int { return h.blocks * samplesPerRDB }

func isSync(b []byte) bool {
	return len(b) >= 2 && b[0] == 0xFF && b[1]&0xF6 == 0xF0
}

func parseADTSHeader(b []byte) (adtsHeader, error) {
	if len(b) < adtsHeaderSize {
		return adtsHeader{}, fmt.Errorf("%w: %d bytes", ErrInvalidHeader, len(b))
	}
	if !isSync(b) {
		return adtsHeader{}, ErrNoSync
	}

	sfIndex := int(b[2]>>2) & 0xF
	if sfIndex >= len(sampleRates) {
		return adtsHeader{}, fmt.Errorf("%w: sample rate index %d", ErrInvalidHeader, sfIndex)
	}

	h := adtsHeader{
		profile:     int(b[2] >> 6),
		sampleRate:  sampleRates[sfIndex],
		channels:    int(b[2]&1)<<2 | int(b[3]>>6),
		frameLength: int(b[3]&3)<<11 | int(b[4])<<3 | int(b[5]>>5),
		blocks:      int(b[6]&3) + 1,
	}
	if h.frameLength < adtsHeaderSize {
		return adtsHeader{}, fmt.Errorf("%w: frame length %d", ErrInvalidHeader, h.frameLength)
	}
	// Channel configuration 7 carries eight channels.
	if h.channels == 7 {
		h.channels = 8
	}
	return h, nil
}
