// SPDX-License-Identifier: EPL-2.0

// Package storage delivers decoded audio files to their destination: a
// local directory or an S3 bucket. Both keep scratch files on local disk so
// writers that need to seek, such as the WAV encoder, have somewhere to
// write before the result is stored.
package storage

import (
	"context"
	"io"
	"os"
)

// Storage is where the command puts its output.
type Storage interface {
	// Scratch creates an empty local file the caller may seek in. Remove it
	// with Cleanup once it has been saved.
	Scratch(ctx context.Context, name string) (*os.File, error)

	// Save stores data under name and returns its location: a file path
	// or a URL.
	Save(ctx context.Context, name string, data io.Reader) (location string, err error)

	// Cleanup removes the given scratch files, carrying on past failures.
	Cleanup(ctx context.Context, paths []string) error
}
