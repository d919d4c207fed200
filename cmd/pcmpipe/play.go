// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ik5/pcmpipe"
	"github.com/ik5/pcmpipe/internal/config"
	"github.com/ik5/pcmpipe/internal/playback"
)

// play decodes one file, converts it to a format the device accepts and
// plays it through the default output.
func play(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := newFlagSet("play", os.Stderr)
	apply := outputFlags(fs, cfg)
	bufferMs := fs.Uint("buffer", 100, "device buffer in milliseconds")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := apply(); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	path := fs.Arg(0)

	// Probe first so the device format can follow the source.
	p, err := pcmpipe.Open(path, pcmpipe.WithOutput(cfg.Output()), pcmpipe.WithLogger(logger))
	if err != nil {
		return err
	}
	out := playback.DeviceFormat(p.Output())
	if out != p.Output() {
		p.Close()
		p, err = pcmpipe.Open(path, pcmpipe.WithOutput(out), pcmpipe.WithLogger(logger))
		if err != nil {
			return err
		}
	}
	defer p.Close()

	player, err := playback.New(out, uint32(*bufferMs), logger)
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	defer player.Close()

	src := p.Source()
	logger.Info("playing",
		slog.String("path", path),
		slog.String("codec", src.CodecName()),
		slog.String("device_format", out.String()),
		slog.Float64("duration", src.Duration()),
	)

	r := pcmpipe.NewReader(p, cfg.ChunkBytes)
	if err := player.Play(ctx, r); err != nil {
		return err
	}

	logger.Info("finished", slog.Float64("position", r.Position()))
	return nil
}
