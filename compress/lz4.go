package compress

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4Codec handles .lz4 streams.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

func init() {
	register(LZ4Codec{})
}

func (LZ4Codec) Ext() string { return ".lz4" }

func (LZ4Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return nopReadCloser{lz4.NewReader(r)}, nil
}

func (LZ4Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}
