// SPDX-License-Identifier: EPL-2.0

// Command pcmpipe inspects, decodes and plays audio files.
//
//	pcmpipe probe  FILE...
//	pcmpipe decode [-rate N] [-layout L] [-format F] [-raw] FILE...
//	pcmpipe play   [-buffer MS] FILE
//
// Defaults come from PCMPIPE_* environment variables; flags override them.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ik5/pcmpipe/formats"
	"github.com/ik5/pcmpipe/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return runWith(ctx, cfg, args, stdout, stderr)
}

var errUsage = errors.New("usage: pcmpipe probe|decode|play [flags] FILE...")

func runWith(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	logger := cfg.NewLogger(stderr)
	formats.Init()

	logger.Debug("starting", slog.String("command", args[0]), slog.String("config", cfg.String()))

	switch args[0] {
	case "probe":
		return probe(ctx, cfg, logger, args[1:], stdout)
	case "decode":
		return decode(ctx, cfg, logger, args[1:], stdout)
	case "play":
		return play(ctx, cfg, logger, args[1:])
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}
