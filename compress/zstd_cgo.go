//go:build edszstd_cgo

package compress

import (
	"io"

	"github.com/valyala/gozstd"
)

type gozstdReadCloser struct {
	*gozstd.Reader
}

func (g gozstdReadCloser) Close() error {
	g.Release()
	return nil
}

type gozstdWriteCloser struct {
	*gozstd.Writer
}

func (g gozstdWriteCloser) Close() error {
	err := g.Writer.Close()
	g.Release()

	return err
}

func (ZstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return gozstdReadCloser{gozstd.NewReader(r)}, nil
}

func (ZstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return gozstdWriteCloser{gozstd.NewWriter(w)}, nil
}
