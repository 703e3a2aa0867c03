package source

import (
	"fmt"
	"io"

	"github.com/varden/eds/errs"
	"github.com/varden/eds/format"
	"github.com/varden/eds/internal/pool"
)

// Parse reads the flat sEDS form {id,id,...}{...}... and returns one Set
// per alternative in canonical order. Whitespace between tokens is
// ignored. Only digits, commas and braces are accepted.
//
// The cardinality check against the owning EDS is the caller's job: Parse
// does not know m.
func Parse(r io.Reader) ([]Set, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading sEDS: %w", errs.ErrIO, err)
	}

	return ParseBytes(data)
}

// ParseBytes is Parse over an in-memory buffer.
func ParseBytes(data []byte) ([]Set, error) {
	var (
		sets    []Set
		current Set
		num     format.PathID
		inNum   bool
		inSet   bool
	)

	flushNum := func() {
		if inNum {
			current = append(current, num)
			num = 0
			inNum = false
		}
	}

	for pos, c := range data {
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			continue
		case c == format.SetOpen:
			if inSet {
				return nil, fmt.Errorf("%w: sEDS: unexpected '{' at offset %d", errs.ErrInvalidFormat, pos)
			}
			inSet = true
			current = nil
		case c == format.SetClose:
			if !inSet {
				return nil, fmt.Errorf("%w: sEDS: unexpected '}' at offset %d", errs.ErrInvalidFormat, pos)
			}
			flushNum()
			if len(current) == 0 {
				return nil, fmt.Errorf("%w: sEDS: set %d is empty", errs.ErrEmptyPathSet, len(sets))
			}
			sets = append(sets, NewSet(current...))
			inSet = false
		case c == format.SetSeparator:
			if !inSet {
				return nil, fmt.Errorf("%w: sEDS: unexpected ',' at offset %d", errs.ErrInvalidFormat, pos)
			}
			flushNum()
		case c >= '0' && c <= '9':
			if !inSet {
				return nil, fmt.Errorf("%w: sEDS: digit outside a set at offset %d", errs.ErrInvalidFormat, pos)
			}
			num = num*10 + format.PathID(c-'0')
			inNum = true
		default:
			return nil, fmt.Errorf("%w: sEDS: %q at offset %d", errs.ErrInvalidCharacter, c, pos)
		}
	}

	if inSet {
		return nil, fmt.Errorf("%w: sEDS: missing closing '}'", errs.ErrInvalidFormat)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: sEDS input is empty", errs.ErrInvalidFormat)
	}

	return sets, nil
}

// Write emits the flat sEDS form, one {…} group per set in order, ids
// ascending, followed by a newline.
func Write(w io.Writer, sets []Set) error {
	bb := pool.GetTextBuffer()
	defer pool.PutTextBuffer(bb)

	for _, s := range sets {
		appendSet(bb, s)
	}
	_ = bb.WriteByte('\n')

	if _, err := bb.WriteTo(w); err != nil {
		return fmt.Errorf("%w: writing sEDS: %w", errs.ErrIO, err)
	}

	return nil
}

func appendSet(bb *pool.ByteBuffer, s Set) {
	_ = bb.WriteByte(format.SetOpen)
	for i, id := range s {
		if i > 0 {
			_ = bb.WriteByte(format.SetSeparator)
		}
		_, _ = bb.WriteString(fmt.Sprintf("%d", id))
	}
	_ = bb.WriteByte(format.SetClose)
}

// Format renders sets to the flat sEDS form without the trailing newline.
func Format(sets []Set) string {
	bb := pool.GetTextBuffer()
	defer pool.PutTextBuffer(bb)

	for _, s := range sets {
		appendSet(bb, s)
	}

	return bb.String()
}
