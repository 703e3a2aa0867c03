package elastic

import (
	"fmt"
	"io"
	"strings"

	"github.com/varden/eds/errs"
	"github.com/varden/eds/format"
	"github.com/varden/eds/source"
)

// Parse reads EDS text from r into a full-storage EDS. Both the full
// bracket form and the compact form are accepted; whitespace is ignored.
// Empty input yields an empty EDS.
func Parse(r io.Reader) (*EDS, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading EDS: %w", errs.ErrIO, err)
	}

	return ParseBytes(data)
}

// ParseString parses EDS text from a string.
func ParseString(s string) (*EDS, error) {
	return ParseBytes([]byte(s))
}

// ParseBytes parses EDS text from an in-memory buffer.
func ParseBytes(data []byte) (*EDS, error) {
	res, err := scanText(data, true)
	if err != nil {
		return nil, err
	}

	return res.build(format.StorageFull), nil
}

// ParseWithSources parses EDS text and its sEDS sidecar together.
func ParseWithSources(edsReader, sedsReader io.Reader) (*EDS, error) {
	e, err := Parse(edsReader)
	if err != nil {
		return nil, err
	}
	if err := e.LoadSources(sedsReader); err != nil {
		return nil, err
	}

	return e, nil
}

// NewFromSets builds a full-storage EDS directly from symbol data.
// srcs may be nil; when given it must match the cardinality, one set per
// alternative in canonical order. Every symbol must have at least one
// alternative.
func NewFromSets(sets []Symbol, srcs []source.Set) (*EDS, error) {
	res := &scanResult{sets: sets}
	for i, sym := range sets {
		if len(sym) == 0 {
			return nil, fmt.Errorf("%w: symbol %d has no alternatives", errs.ErrInvalidArgument, i)
		}
		res.sizes = append(res.sizes, format.Length(len(sym)))
		for _, alt := range sym {
			res.lengths = append(res.lengths, format.Length(len(alt)))
			res.size += uint64(len(alt))
			res.m++
		}
	}

	e := res.build(format.StorageFull)
	if srcs != nil {
		if err := e.AttachSources(srcs); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// scanResult carries everything one pass over the text produces. The
// metadata-only loader runs the same scan with keepStrings=false.
type scanResult struct {
	sets    []Symbol
	pending Symbol
	offsets []int64
	sizes   []format.Length
	lengths []format.Length
	m       int
	size    uint64
}

func (r *scanResult) build(mode format.StorageMode) *EDS {
	e := &EDS{
		mode: mode,
		n:    len(r.sizes),
		m:    r.m,
		size: r.size,
	}
	e.meta.BaseOffsets = r.offsets
	e.meta.SymbolSizes = r.sizes
	e.meta.StringLengths = r.lengths
	e.meta.computeDerived()
	if mode == format.StorageFull {
		e.sets = r.sets
	}

	return e
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// scanText walks the raw bytes once, normalizing the compact form on the
// fly: outside braces every maximal run of non-brace bytes is one symbol
// (commas inside a bare run still separate alternatives). Byte offsets of
// symbol starts refer to the raw input so a seekable backing stream can be
// re-read later.
func scanText(data []byte, keepStrings bool) (*scanResult, error) {
	res := &scanResult{}
	var cur strings.Builder

	i := 0
	for {
		for i < len(data) && isSpace(data[i]) {
			i++
		}
		if i >= len(data) {
			break
		}

		switch data[i] {
		case format.SetClose:
			return nil, fmt.Errorf("%w: unexpected '}' at offset %d", errs.ErrInvalidFormat, i)
		case format.SetOpen:
			start := int64(i)
			i++ // consume '{'
			var (
				altCount int
				sawSep   bool
				firstLen int
			)
			cur.Reset()
			closed := false
			for i < len(data) {
				c := data[i]
				switch {
				case isSpace(c):
					i++
				case c == format.SetOpen:
					return nil, fmt.Errorf("%w: nested '{' at offset %d", errs.ErrInvalidFormat, i)
				case c == format.SetSeparator:
					sawSep = true
					res.flushAlt(&cur, keepStrings, altCount == 0, &firstLen)
					altCount++
					i++
				case c == format.SetClose:
					res.flushAlt(&cur, keepStrings, altCount == 0, &firstLen)
					altCount++
					i++
					closed = true
				default:
					cur.WriteByte(c)
					i++
				}
				if closed {
					break
				}
			}
			if !closed {
				return nil, fmt.Errorf("%w: missing '}' for symbol at offset %d", errs.ErrInvalidFormat, start)
			}
			if altCount == 1 && !sawSep && firstLen == 0 {
				return nil, fmt.Errorf("%w: empty symbol {} at offset %d", errs.ErrInvalidFormat, start)
			}
			res.endSymbol(start, altCount, keepStrings)
		default:
			// Bare run: wrap as one symbol, commas still separate.
			start := int64(i)
			altCount := 0
			var firstLen int
			cur.Reset()
			for i < len(data) && data[i] != format.SetOpen {
				c := data[i]
				switch {
				case isSpace(c):
					i++
				case c == format.SetClose:
					return nil, fmt.Errorf("%w: unexpected '}' at offset %d", errs.ErrInvalidFormat, i)
				case c == format.SetSeparator:
					res.flushAlt(&cur, keepStrings, altCount == 0, &firstLen)
					altCount++
					i++
				default:
					cur.WriteByte(c)
					i++
				}
			}
			res.flushAlt(&cur, keepStrings, altCount == 0, &firstLen)
			altCount++
			res.endSymbol(start, altCount, keepStrings)
		}
	}

	return res, nil
}

func (r *scanResult) flushAlt(cur *strings.Builder, keepStrings, first bool, firstLen *int) {
	length := cur.Len()
	if first {
		*firstLen = length
	}
	r.lengths = append(r.lengths, format.Length(length))
	r.size += uint64(length)
	r.m++

	if keepStrings {
		r.pending = append(r.pending, cur.String())
	}
	cur.Reset()
}

func (r *scanResult) endSymbol(offset int64, altCount int, keepStrings bool) {
	r.offsets = append(r.offsets, offset)
	r.sizes = append(r.sizes, format.Length(altCount))
	if keepStrings {
		r.sets = append(r.sets, r.pending)
		r.pending = nil
	}
}
