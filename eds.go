// Package eds builds, stores, transforms and queries elastic-degenerate
// strings (EDS): sequences in which every position holds a set of
// alternative strings, so one text represents the whole language of their
// concatenations.
//
// The heavy lifting lives in the subpackages; this package is a thin
// facade over the common pipelines.
//
//   - elastic: the EDS value — parsing, the metadata index, full and
//     metadata-only storage, merging and the query primitives
//   - source: the path-set algebra and the sEDS sidecar codec
//   - transform: the EDS → l-EDS fixed-point drivers
//   - ingest: MSA and VCF+FASTA ingestion
//   - compress: transparent .gz/.zst/.s2/.lz4 artifact handling
//
// # Basic usage
//
// Parsing and querying:
//
//	e, _ := eds.FromString("ACGT{A,ACA}CGT{T,TG}")
//	ok, _ := e.CheckPosition(4, []int{0, 2}, "ACGTT")
//
// Converting to an l-EDS with context length 10:
//
//	led, _ := eds.ToLEDS(e, 10)
//
// Loading a large file without materializing the strings:
//
//	e, _ := eds.Load("chr1.eds", elastic.WithStorageMode(format.StorageMetadataOnly))
//	defer e.Close()
//	sym, _ := e.ReadSymbol(42)
package eds

import (
	"github.com/varden/eds/elastic"
	"github.com/varden/eds/format"
	"github.com/varden/eds/source"
	"github.com/varden/eds/transform"
)

// EDS is the elastic-degenerate string value; see the elastic package for
// its full API.
type EDS = elastic.EDS

// Symbol is one EDS position: a non-empty list of alternative strings.
type Symbol = elastic.Symbol

// FromString parses EDS text (compact or full form) into a full-storage
// EDS.
func FromString(text string) (*EDS, error) {
	return elastic.ParseString(text)
}

// FromStringWithSources parses EDS text together with its sEDS sidecar.
func FromStringWithSources(text, sources string) (*EDS, error) {
	e, err := elastic.ParseString(text)
	if err != nil {
		return nil, err
	}

	sets, err := source.ParseBytes([]byte(sources))
	if err != nil {
		return nil, err
	}
	if err := e.AttachSources(sets); err != nil {
		return nil, err
	}

	return e, nil
}

// Load reads an EDS file, decompressing transparently by extension. See
// elastic.Load for storage-mode options.
func Load(path string, opts ...elastic.LoadOption) (*EDS, error) {
	return elastic.Load(path, opts...)
}

// LoadWithSources reads an EDS file and its sEDS sidecar.
func LoadWithSources(edsPath, sedsPath string, opts ...elastic.LoadOption) (*EDS, error) {
	return elastic.LoadWithSources(edsPath, sedsPath, opts...)
}

// ToLEDS converts an EDS to an l-EDS for the given context length,
// selecting the merge semantics from the value itself: LINEAR
// (source-intersection-filtered) when sources are attached, CARTESIAN
// otherwise.
func ToLEDS(e *EDS, contextLength format.Length, opts ...transform.Option) (*EDS, error) {
	if e.HasSources() {
		return transform.Linear(e, contextLength, opts...)
	}

	return transform.Cartesian(e, contextLength, opts...)
}

// IsLEDS reports whether e already satisfies the l-EDS predicate for the
// given context length.
func IsLEDS(e *EDS, contextLength format.Length) bool {
	return transform.IsLEDS(e, contextLength)
}
