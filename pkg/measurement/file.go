// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package measurement

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
)

const (
	// Suffix is the suffix of compressed measurement result files.
	Suffix = ".jsonl.bz2"
	// bzipSuffix marks files that are transparently (de)compressed.
	bzipSuffix = ".bz2"
	// tmpSuffix is appended to files while they are being written.
	tmpSuffix = ".tmp"
)

// BaseName strips the directory and the measurement file suffix from path.
// Unknown suffixes are left in place.
func BaseName(path string) string {
	name := filepath.Base(path)
	for _, s := range []string{Suffix, ".jsonl", bzipSuffix} {
		if strings.HasSuffix(name, s) {
			return strings.TrimSuffix(name, s)
		}
	}
	return name
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() (err error) {
	for i := len(r.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, r.closers[i].Close())
	}
	return err
}

// Open opens the file at path for reading. Files ending in ".bz2" are
// decompressed on the fly.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path) // #nosec G304 // path is provided by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	if !strings.HasSuffix(path, bzipSuffix) {
		return f, nil
	}

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create bzip2 reader for %q: %w", path, err), f.Close())
	}
	return &readCloser{Reader: bz, closers: []io.Closer{f, bz}}, nil
}

// File is an output file that only appears under its final name once it
// was closed successfully. Until then, it is written to a temporary file
// next to the target, so an interrupted run never leaves a partial output
// behind that would later be mistaken for a finished one.
type File struct {
	path string
	tmp  *os.File
	bz   *bzip2.Writer
	w    io.Writer
}

// Create creates the output file at path, including missing parent directories.
// Files ending in ".bz2" are compressed.
func Create(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { // #nosec G301 // output directories are shared with other tools
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.Create(path + tmpSuffix) // #nosec G304 // path is provided by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to create %q: %w", path, err)
	}

	f := &File{path: path, tmp: tmp, w: tmp}
	if strings.HasSuffix(path, bzipSuffix) {
		bz, err := bzip2.NewWriter(tmp, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
		if err != nil {
			return nil, errors.Join(fmt.Errorf("failed to create bzip2 writer for %q: %w", path, err), f.Abort())
		}
		f.bz = bz
		f.w = bz
	}
	return f, nil
}

// Path returns the final path of the file.
func (f *File) Path() string {
	return f.path
}

func (f *File) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

// Close flushes all data and moves the file to its final path.
func (f *File) Close() error {
	if f.bz != nil {
		if err := f.bz.Close(); err != nil {
			return errors.Join(fmt.Errorf("failed to flush %q: %w", f.path, err), f.Abort())
		}
	}
	if err := f.tmp.Close(); err != nil {
		return errors.Join(fmt.Errorf("failed to close %q: %w", f.path, err), f.Abort())
	}
	if err := os.Rename(f.tmp.Name(), f.path); err != nil {
		return errors.Join(fmt.Errorf("failed to move %q into place: %w", f.path, err), f.Abort())
	}
	return nil
}

// Abort discards the file. It is safe to call after a failed Close.
func (f *File) Abort() error {
	_ = f.tmp.Close()
	if err := os.Remove(f.tmp.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %q: %w", f.tmp.Name(), err)
	}
	return nil
}

// Exists reports whether a file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
