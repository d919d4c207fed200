// SPDX-License-Identifier: EPL-2.0

package media

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// DumpFormat writes a human-readable description of the input:
//
//	Input #0, wav, from 'a.wav':
//	  Metadata:
//	    title           : Tone
//	  Duration: 00:00:01.00, bitrate: 1411 kb/s
//	  Stream #0:0: Audio: pcm_s16le, 44100 Hz, stereo, s16, 1411 kb/s
func (s *Source) DumpFormat(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Input #0, %s, from '%s':\n", s.FormatName(), s.path)

	if s.metadata.Len() > 0 {
		b.WriteString("  Metadata:\n")
		for k, v := range s.metadata.All() {
			fmt.Fprintf(&b, "    %-16s: %s\n", k, v)
		}
	}

	fmt.Fprintf(&b, "  Duration: %s, bitrate: %s\n",
		formatDuration(s.container.Duration()), formatBitRate(s.container.BitRate()))

	fmt.Fprintf(&b, "  Stream #0:%d: Audio: %s, %d Hz, %s, %s",
		s.stream.Index, s.CodecName(), s.SampleRate(), s.ChannelLayout(), s.SampleFormat())
	if s.BitRate() > 0 {
		fmt.Fprintf(&b, ", %d kb/s", s.BitRate()/1000)
	}
	b.WriteByte('\n')

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func formatDuration(ticks int64) string {
	if ticks <= 0 {
		return "N/A"
	}
	d := time.Duration(ticks) * time.Microsecond
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	sec := int(d/time.Second) % 60
	cs := int(d/(10*time.Millisecond)) % 100
	return fmt.Sprintf("%02d:%02d:%02d.%02d", h, m, sec, cs)
}

func formatBitRate(bps int64) string {
	if bps <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d kb/s", bps/1000)
}
