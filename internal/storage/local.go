// SPDX-License-Identifier: EPL-2.0

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrS3NotConfigured is returned when S3 storage is requested without
	// a bucket and region.
	ErrS3NotConfigured = errors.New("S3 storage is not configured")
	// ErrInvalidName is returned for names that would escape the output
	// directory.
	ErrInvalidName = errors.New("invalid output name")
)

// LocalStorage writes output files into a directory. Scratch files go to
// a separate temporary directory.
type LocalStorage struct {
	dir     string
	tempDir string
}

// NewLocalStorage creates both directories if they do not exist. An empty
// tempDir selects a pcmpipe directory under os.TempDir().
func NewLocalStorage(dir, tempDir string) (*LocalStorage, error) {
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "pcmpipe")
	}

	for _, d := range []string{dir, tempDir} {
		if err := os.MkdirAll(d, 0o750); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", d, err)
		}
	}

	return &LocalStorage{dir: dir, tempDir: tempDir}, nil
}

func (s *LocalStorage) Dir() string     { return s.dir }
func (s *LocalStorage) TempDir() string { return s.tempDir }

func (s *LocalStorage) Scratch(ctx context.Context, name string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	f, err := os.CreateTemp(s.tempDir, base+"_*"+filepath.Ext(name))
	if err != nil {
		return nil, fmt.Errorf("create scratch file: %w", err)
	}
	return f, nil
}

// Save writes data next to its final path and renames it into place, so a
// failed copy never leaves a truncated file under name.
func (s *LocalStorage) Save(ctx context.Context, name string, data io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled: %w", err)
	}

	dst, err := s.path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(dst), ".pcmpipe_*")
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}
	tmp := f.Name()

	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write output file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("close output file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename output file: %w", err)
	}

	return dst, nil
}

// Cleanup removes the given files, returning the first error encountered.
func (s *LocalStorage) Cleanup(ctx context.Context, paths []string) error {
	var firstErr error
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled: %w", err)
		}

		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove scratch file %s: %w", p, err)
			}
		}
	}
	return firstErr
}

func (s *LocalStorage) path(name string) (string, error) {
	clean := filepath.Clean(name)
	if name == "" || filepath.IsAbs(clean) || clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, clean), nil
}
