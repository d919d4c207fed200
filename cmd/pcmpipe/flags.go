// SPDX-License-Identifier: EPL-2.0

package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/ik5/pcmpipe/audio"
	"github.com/ik5/pcmpipe/internal/config"
)

// outputFlags registers the conversion flags on fs, seeded from cfg. The
// returned func applies them to cfg after fs.Parse.
func outputFlags(fs *flag.FlagSet, cfg *config.Config) func() error {
	rate := fs.Int("rate", cfg.OutputRate, "output sample rate in Hz, 0 keeps the input rate")
	layout := fs.String("layout", "", "output channel layout (mono, stereo, 5.1, ...)")
	format := fs.String("format", "", "output sample format (s16, fltp, ...)")
	chunk := fs.Int("chunk", cfg.ChunkBytes, "bytes per read")

	return func() error {
		cfg.OutputRate = *rate
		cfg.ChunkBytes = *chunk
		if *layout != "" {
			l, err := audio.ParseChannelLayout(*layout)
			if err != nil {
				return err
			}
			cfg.OutputLayout = l
		}
		if *format != "" {
			f, err := audio.ParseSampleFormat(*format)
			if err != nil {
				return err
			}
			cfg.OutputFormat = f
		}
		return cfg.Validate()
	}
}

func newFlagSet(name string, w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() {
		fmt.Fprintf(w, "usage: pcmpipe %s [flags] FILE...\n", name)
		fs.PrintDefaults()
	}
	return fs
}
