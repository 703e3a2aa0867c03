package compress

import (
	"io"

	"github.com/klauspost/compress/s2"
)

// S2Codec handles .s2 streams. S2 trades ratio for speed; useful for large
// intermediate EDS artifacts in pipelines.
type S2Codec struct{}

var _ Codec = S2Codec{}

func init() {
	register(S2Codec{})
}

func (S2Codec) Ext() string { return ".s2" }

func (S2Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return nopReadCloser{s2.NewReader(r)}, nil
}

func (S2Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return s2.NewWriter(w), nil
}
