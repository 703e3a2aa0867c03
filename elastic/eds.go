package elastic

import (
	"fmt"
	"io"
	"iter"

	"github.com/varden/eds/errs"
	"github.com/varden/eds/format"
	"github.com/varden/eds/internal/hash"
	"github.com/varden/eds/source"
)

// Symbol is one EDS position: an ordered, non-empty list of alternative
// strings. Alternatives may be empty (ε).
type Symbol []string

// EDS is an elastic-degenerate string: a sequence of symbols, each holding
// one or more alternative strings, optionally labelled with path sources.
//
// An EDS is produced by parsing, loading or ingestion, or as the result of
// a transform. Transforms never modify their receiver.
//
// Storage comes in two modes. StorageFull materializes every alternative in
// memory and supports all operations. StorageMetadataOnly holds only the
// metadata index plus a seekable handle to the backing text; ReadSymbol
// re-parses symbols on demand, and operations that need the full string
// table return ErrModeUnsupported.
//
// An EDS is not safe for concurrent mutating reads in metadata-only mode:
// ReadSymbol moves the shared seek position. Metadata and sources may be
// shared freely.
type EDS struct {
	mode format.StorageMode

	n    int    // symbol count
	m    int    // cardinality: total alternatives
	size uint64 // N: total characters across all alternatives

	meta Metadata

	// sets is populated only in StorageFull mode.
	sets []Symbol

	// backing is the seekable source text, only in StorageMetadataOnly.
	backing io.ReadSeeker
	closer  io.Closer

	sources []source.Set // nil until sources are attached
}

// Empty reports whether the EDS has no symbols.
func (e *EDS) Empty() bool { return e.n == 0 }

// Len returns n, the number of symbols.
func (e *EDS) Len() int { return e.n }

// Cardinality returns m, the total number of alternatives.
func (e *EDS) Cardinality() int { return e.m }

// Size returns N, the total number of characters across all alternatives.
func (e *EDS) Size() uint64 { return e.size }

// Mode returns the storage mode.
func (e *EDS) Mode() format.StorageMode { return e.mode }

// HasSources reports whether path sources are attached.
func (e *EDS) HasSources() bool { return e.sources != nil }

// Metadata returns the derived index. The returned value shares its slices
// with the EDS and must be treated as read-only.
func (e *EDS) Metadata() *Metadata { return &e.meta }

// IsDegenerate reports whether symbol i has two or more alternatives.
// It panics if i is out of range, matching slice indexing semantics.
func (e *EDS) IsDegenerate(i int) bool { return e.meta.IsDegenerate[i] }

// SymbolSize returns the number of alternatives of symbol i.
func (e *EDS) SymbolSize(i int) int { return int(e.meta.SymbolSizes[i]) }

// StringLength returns the length of the k-th global alternative.
func (e *EDS) StringLength(k int) format.Length { return e.meta.StringLengths[k] }

// Sets returns the full alternative table. Only available in StorageFull
// mode; in metadata-only mode use ReadSymbol for on-demand access.
func (e *EDS) Sets() ([]Symbol, error) {
	if e.mode != format.StorageFull {
		return nil, fmt.Errorf("%w: Sets requires %s storage", errs.ErrModeUnsupported, format.StorageFull)
	}

	return e.sets, nil
}

// Sources returns the per-alternative path sets, or nil if none are
// attached. The slice is the EDS's own backing store; treat as read-only.
func (e *EDS) Sources() []source.Set { return e.sources }

// AttachSources attaches path sources to the EDS. Sources attach exactly
// once and are never removed; a second attach fails. The set count must
// equal the cardinality and no set may be empty.
func (e *EDS) AttachSources(sets []source.Set) error {
	if e.sources != nil {
		return fmt.Errorf("%w: sources already attached", errs.ErrInvalidArgument)
	}
	if len(sets) != e.m {
		return fmt.Errorf("%w: %d source sets for cardinality %d", errs.ErrCardinalityMismatch, len(sets), e.m)
	}
	for k, s := range sets {
		if len(s) == 0 {
			return fmt.Errorf("%w: source set %d", errs.ErrEmptyPathSet, k)
		}
	}

	e.sources = sets
	e.meta.computeSourceStats(sets)

	return nil
}

// LoadSources parses the flat sEDS form from r and attaches it.
func (e *EDS) LoadSources(r io.Reader) error {
	sets, err := source.Parse(r)
	if err != nil {
		return err
	}

	return e.AttachSources(sets)
}

// Close releases the backing handle of a metadata-only EDS. It is a no-op
// for full-storage values.
func (e *EDS) Close() error {
	if e.closer == nil {
		return nil
	}
	c := e.closer
	e.closer = nil
	e.backing = nil

	return c.Close()
}

// Symbols returns a lazy iterator over (index, symbol). In metadata-only
// mode each step re-reads the backing stream; the iterator is restartable
// and stops early on a read failure (use ReadSymbol for error detail).
func (e *EDS) Symbols() iter.Seq2[int, Symbol] {
	return func(yield func(int, Symbol) bool) {
		for i := 0; i < e.n; i++ {
			sym, err := e.ReadSymbol(format.Position(i))
			if err != nil {
				return
			}
			if !yield(i, sym) {
				return
			}
		}
	}
}

// Fingerprint returns a structural identity hash: xxHash64 over the
// canonical full-form serialization plus the flat sources form. Two EDS
// values with equal symbols, alternatives and sources share a fingerprint.
// Requires StorageFull.
func (e *EDS) Fingerprint() (uint64, error) {
	if e.mode != format.StorageFull {
		return 0, fmt.Errorf("%w: Fingerprint requires %s storage", errs.ErrModeUnsupported, format.StorageFull)
	}

	d := hash.NewDigest()
	if err := e.write(d, format.FormatFull); err != nil {
		return 0, err
	}
	if e.sources != nil {
		_, _ = d.WriteString(source.Format(e.sources))
	}

	return d.Sum64(), nil
}

// alternative returns alternative local of symbol sym, honoring the
// storage mode.
func (e *EDS) alternative(sym int, local int) (string, error) {
	if e.mode == format.StorageFull {
		return e.sets[sym][local], nil
	}

	alts, err := e.ReadSymbol(format.Position(sym))
	if err != nil {
		return "", err
	}
	if local >= len(alts) {
		return "", fmt.Errorf("%w: alternative %d of symbol %d (size %d)", errs.ErrOutOfRange, local, sym, len(alts))
	}

	return alts[local], nil
}
