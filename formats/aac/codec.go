// SPDX-License-Identifier: EPL-2.0

package aac

import (
	"encoding/binary"
	"fmt"

	"github.com/ik5/pcmpipe/audio"
)

// aacDecoder is the part of go-aac's Decoder the codec drives.
type aacDecoder interface {
	SimpleInit(data []byte) (uint32, uint8, error)
	DecodeInt16(frame []byte) ([]int16, error)
	Close()
}

// codec decodes ADTS frames to interleaved s16. The decoder is set up from
// the first packet's header; its first frame yields nothing because of the
// overlap-add delay.
type codec struct {
	dec      aacDecoder
	channels int
	ready    bool
}

func newCodec(dec aacDecoder, channels int) *codec {
	return &codec{dec: dec, channels: channels}
}

func (c *codec) Name() string { return "aac" }

func (c *codec) Close() error {
	c.dec.Close()
	return nil
}

func (c *codec) Decode(pkt *audio.Packet) (*audio.RawFrame, error) {
	if pkt == nil {
		return nil, nil
	}

	if !c.ready {
		if _, _, err := c.dec.SimpleInit(pkt.Data); err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		c.ready = true
	}

	pcm, err := c.dec.DecodeInt16(pkt.Data)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	n := len(pcm) / c.channels
	if n == 0 {
		return nil, nil
	}

	out := make([]byte, n*c.channels*2)
	for i, v := range pcm[:n*c.channels] {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return &audio.RawFrame{NbSamples: n, Data: [][]byte{out}}, nil
}
