// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ik5/pcmpipe"
	"github.com/ik5/pcmpipe/formats/wav"
	"github.com/ik5/pcmpipe/internal/config"
	"github.com/ik5/pcmpipe/internal/storage"
)

// decode converts every file to a 16-bit WAV, or to raw interleaved PCM in
// the output format with -raw, and stores it.
func decode(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string, stdout io.Writer) error {
	fs := newFlagSet("decode", stdout)
	apply := outputFlags(fs, cfg)
	raw := fs.Bool("raw", false, "write headerless interleaved PCM instead of WAV")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := apply(); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return err
	}

	paths := fs.Args()
	locations := make([]string, len(paths))
	errs := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			d := decoder{cfg: cfg, store: store, logger: logger.With(slog.String("path", path))}
			if *raw {
				locations[i], errs[i] = d.raw(ctx, path)
			} else {
				locations[i], errs[i] = d.wav(ctx, path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w", err)
	}

	for i := range paths {
		if errs[i] != nil {
			logger.Error("decode failed", slog.String("path", paths[i]), slog.Any("error", errs[i]))
			continue
		}
		fmt.Fprintf(stdout, "%s -> %s\n", paths[i], locations[i])
	}
	return errors.Join(errs...)
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.S3Enabled() {
		return storage.NewS3Storage(ctx, "", storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
	}
	return storage.NewLocalStorage(cfg.OutputDir, "")
}

type decoder struct {
	cfg    *config.Config
	store  storage.Storage
	logger *slog.Logger
}

func outputName(path, ext string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

func (d decoder) open(path string) (*pcmpipe.Pipeline, error) {
	return pcmpipe.Open(path,
		pcmpipe.WithOutput(d.cfg.Output()),
		pcmpipe.WithLogger(d.logger),
	)
}

// raw streams the pipeline straight into storage.
func (d decoder) raw(ctx context.Context, path string) (string, error) {
	p, err := d.open(path)
	if err != nil {
		return "", err
	}
	defer p.Close()

	d.logger.Info("decoding", slog.String("output", p.Output().String()))
	return d.store.Save(ctx, outputName(path, ".pcm"), pcmpipe.NewReader(p, d.cfg.ChunkBytes))
}

// wav encodes into a scratch file first because the WAV header is written
// last and needs a seekable destination.
func (d decoder) wav(ctx context.Context, path string) (_ string, err error) {
	p, err := d.open(path)
	if err != nil {
		return "", err
	}
	defer p.Close()

	out := p.Output()
	d.logger.Info("decoding", slog.String("output", out.String()))

	scratch, err := d.store.Scratch(ctx, outputName(path, ".wav"))
	if err != nil {
		return "", err
	}
	defer func() {
		scratch.Close()
		if cerr := d.store.Cleanup(context.WithoutCancel(ctx), []string{scratch.Name()}); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w, err := wav.NewWriter(scratch, out.SampleRate, out.Channels())
	if err != nil {
		return "", err
	}
	w.SetMetadata(p.Source().Metadata())

	for f, err := range p.Frames() {
		if err != nil {
			return "", err
		}
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w", err)
		}
		if err := w.WriteFrame(f); err != nil {
			return "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	if _, err := scratch.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w", err)
	}
	return d.store.Save(ctx, outputName(path, ".wav"), scratch)
}
