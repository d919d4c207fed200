// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ik5/pcmpipe/internal/config"
	"github.com/ik5/pcmpipe/media"
)

// probe prints a format summary for every file, opening up to
// cfg.Concurrency files at once. Output keeps argument order.
func probe(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string, stdout io.Writer) error {
	fs := newFlagSet("probe", stdout)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	paths := fs.Args()
	out := make([]bytes.Buffer, len(paths))
	errs := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			src, err := media.Open(path, media.WithLogger(logger))
			if err != nil {
				errs[i] = err
				return nil
			}
			defer src.Close()

			errs[i] = src.DumpFormat(&out[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w", err)
	}

	for i := range paths {
		if errs[i] != nil {
			logger.Error("probe failed", slog.String("path", paths[i]), slog.Any("error", errs[i]))
			continue
		}
		if _, err := out[i].WriteTo(stdout); err != nil {
			return fmt.Errorf("%w", err)
		}
	}
	return errors.Join(errs...)
}
