package compress

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// GzipCodec handles .gz streams, the customary wrapping for VCF and FASTA
// files in the wild.
type GzipCodec struct{}

var _ Codec = GzipCodec{}

func init() {
	register(GzipCodec{})
}

func (GzipCodec) Ext() string { return ".gz" }

func (GzipCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}

	return gr, nil
}

func (GzipCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}
