package elastic

import (
	"bufio"
	"fmt"
	"io"

	"github.com/varden/eds/errs"
	"github.com/varden/eds/format"
)

// ReadSymbol returns symbol pos by value, in either storage mode. In
// metadata-only mode it seeks the backing stream to the recorded offset
// and re-parses one symbol; the returned Symbol is freshly allocated.
func (e *EDS) ReadSymbol(pos format.Position) (Symbol, error) {
	if pos >= format.Position(e.n) {
		return nil, fmt.Errorf("%w: symbol %d of %d", errs.ErrOutOfRange, pos, e.n)
	}

	if e.mode == format.StorageFull {
		return e.sets[pos], nil
	}

	return e.readSymbolFromStream(pos)
}

// readSymbolFromStream seeks to the symbol's base offset and parses a
// single symbol, either braced or a bare compact run. Whitespace inside
// the symbol is skipped, matching the parser.
func (e *EDS) readSymbolFromStream(pos format.Position) (Symbol, error) {
	if e.backing == nil {
		return nil, fmt.Errorf("%w: backing stream closed", errs.ErrIO)
	}

	off := e.meta.BaseOffsets[pos]
	if _, err := e.backing.Seek(off, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seeking symbol %d: %w", errs.ErrIO, pos, err)
	}

	br := bufio.NewReader(e.backing)
	first, err := br.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: reading symbol %d: %w", errs.ErrIO, pos, err)
	}

	var (
		out Symbol
		cur []byte
	)
	flush := func() {
		out = append(out, string(cur))
		cur = cur[:0]
	}

	if first == format.SetOpen {
		for {
			c, err := br.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("%w: symbol %d: missing '}'", errs.ErrInvalidFormat, pos)
			}
			switch {
			case c == format.SetClose:
				flush()
				return out, nil
			case c == format.SetSeparator:
				flush()
			case isSpace(c):
			default:
				cur = append(cur, c)
			}
		}
	}

	// Bare compact run: consume until the next '{' or EOF.
	cur = append(cur, first)
	for {
		c, err := br.ReadByte()
		if err == io.EOF || (err == nil && c == format.SetOpen) {
			flush()
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading symbol %d: %w", errs.ErrIO, pos, err)
		}
		switch {
		case c == format.SetSeparator:
			flush()
		case isSpace(c):
		default:
			cur = append(cur, c)
		}
	}
}
