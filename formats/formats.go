// SPDX-License-Identifier: EPL-2.0

// Package formats registers every built-in demuxer.
package formats

import (
	"sync"

	"github.com/ik5/pcmpipe/audio"
	"github.com/ik5/pcmpipe/formats/aac"
	"github.com/ik5/pcmpipe/formats/aiff"
	"github.com/ik5/pcmpipe/formats/flac"
	"github.com/ik5/pcmpipe/formats/mp3"
	"github.com/ik5/pcmpipe/formats/vorbis"
	"github.com/ik5/pcmpipe/formats/wav"
)

var initOnce sync.Once

// Register adds the built-in demuxers to reg. Order matters only for
// probe ties, where earlier entries win.
func Register(reg *audio.Registry) {
	reg.Register("wav", wav.Demuxer{})
	reg.Register("aiff", aiff.Demuxer{})
	reg.Register("flac", flac.Demuxer{})
	reg.Register("ogg", vorbis.Demuxer{})
	reg.Register("mp3", mp3.Demuxer{})
	reg.Register("aac", aac.Demuxer{})
}

// Init fills audio.DefaultRegistry once. It is safe to call from many
// goroutines.
func Init() {
	initOnce.Do(func() { Register(audio.DefaultRegistry) })
}
