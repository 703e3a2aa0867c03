// Package compress provides transparent, extension-keyed stream
// compression for the textual artifacts this library reads and writes
// (EDS, sEDS, pattern files, VCF, FASTA, MSA).
//
// A path ending in a registered extension is wrapped on open; anything
// else passes through untouched. Compressed inputs are not seekable, so
// operations that need random access (metadata-only loading, MSA and
// FASTA ingestion) must be given plain files.
package compress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/varden/eds/errs"
)

// Codec wraps a byte stream with one compression algorithm.
type Codec interface {
	// Ext returns the file extension this codec claims, with the dot.
	Ext() string
	// NewReader wraps r for decompression.
	NewReader(r io.Reader) (io.ReadCloser, error)
	// NewWriter wraps w for compression. Closing the returned writer
	// flushes the compressed stream but not the underlying writer.
	NewWriter(w io.Writer) (io.WriteCloser, error)
}

var codecs = map[string]Codec{}

func register(c Codec) {
	codecs[c.Ext()] = c
}

// ByExtension returns the codec registered for path's extension, if any.
func ByExtension(path string) (Codec, bool) {
	c, ok := codecs[filepath.Ext(path)]
	return c, ok
}

// IsCompressedPath reports whether path names a compressed artifact.
func IsCompressedPath(path string) bool {
	_, ok := ByExtension(path)
	return ok
}

// nopReadCloser adapts codec readers that have no Close of their own.
type nopReadCloser struct{ io.Reader }

func (nopReadCloser) Close() error { return nil }

// OpenReader opens path for reading, decompressing transparently when the
// extension names a registered codec. The returned ReadCloser owns the
// underlying file.
func OpenReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	c, ok := ByExtension(path)
	if !ok {
		return f, nil
	}

	cr, err := c.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: opening %s: %w", errs.ErrIO, path, err)
	}

	return &stackedReadCloser{ReadCloser: cr, under: f}, nil
}

// OpenWriter creates path for writing, compressing transparently when the
// extension names a registered codec. The returned WriteCloser owns the
// underlying file.
func OpenWriter(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	c, ok := ByExtension(path)
	if !ok {
		return f, nil
	}

	cw, err := c.NewWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: creating %s: %w", errs.ErrIO, path, err)
	}

	return &stackedWriteCloser{WriteCloser: cw, under: f}, nil
}

type stackedReadCloser struct {
	io.ReadCloser
	under io.Closer
}

func (s *stackedReadCloser) Close() error {
	err := s.ReadCloser.Close()
	if uerr := s.under.Close(); err == nil {
		err = uerr
	}

	return err
}

type stackedWriteCloser struct {
	io.WriteCloser
	under io.Closer
}

func (s *stackedWriteCloser) Close() error {
	err := s.WriteCloser.Close()
	if uerr := s.under.Close(); err == nil {
		err = uerr
	}

	return err
}
