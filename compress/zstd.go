package compress

// ZstdCodec handles .zst streams.
//
// Two implementations exist: a pure-Go default (klauspost/compress/zstd)
// and a cgo variant (valyala/gozstd) selected with build tag edszstd_cgo
// for workloads where the native library's throughput matters.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}

func init() {
	register(ZstdCodec{})
}

func (ZstdCodec) Ext() string { return ".zst" }
