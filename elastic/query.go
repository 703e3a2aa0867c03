package elastic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/varden/eds/errs"
	"github.com/varden/eds/format"
	"github.com/varden/eds/source"
)

// Extract concatenates chosen alternatives from symbols [pos, pos+length).
// choices[k] indexes the alternatives of symbol pos+k; its length must
// equal the span (length clamps at the end of the EDS). Requires
// StorageFull.
func (e *EDS) Extract(pos format.Position, length int, choices []int) (string, error) {
	if e.mode != format.StorageFull {
		return "", fmt.Errorf("%w: Extract requires %s storage", errs.ErrModeUnsupported, format.StorageFull)
	}
	if e.n == 0 {
		return "", fmt.Errorf("%w: empty EDS", errs.ErrOutOfRange)
	}
	if pos >= format.Position(e.n) {
		return "", fmt.Errorf("%w: start position %d with n=%d", errs.ErrOutOfRange, pos, e.n)
	}
	if length == 0 {
		return "", nil
	}

	end := int(pos) + length
	if end > e.n {
		end = e.n
	}
	span := end - int(pos)
	if len(choices) != span {
		return "", fmt.Errorf("%w: %d choices for a span of %d symbols", errs.ErrInvalidArgument, len(choices), span)
	}

	var sb strings.Builder
	for k := 0; k < span; k++ {
		sym := e.sets[int(pos)+k]
		c := choices[k]
		if c < 0 || c >= len(sym) {
			return "", fmt.Errorf("%w: choice %d at symbol %d (size %d)", errs.ErrOutOfRange, c, int(pos)+k, len(sym))
		}
		sb.WriteString(sym[c])
	}

	return sb.String(), nil
}

// CheckPosition decides whether pattern occurs starting at the
// commonPos-th character of the concatenation of non-degenerate symbols,
// resolving degenerate symbols along the way with the given global
// ordinals (which index only degenerate-symbol alternatives, in canonical
// order).
//
// When sources are attached the traversal's path intersection is computed
// first; an empty intersection short-circuits to false. Surplus ordinals
// are ignored.
func (e *EDS) CheckPosition(commonPos format.Position, degenerateStrings []int, pattern string) (bool, error) {
	if e.n == 0 {
		return false, nil
	}
	if pattern == "" {
		return true, nil
	}

	// Every supplied ordinal must decode, consumed or not.
	for _, d := range degenerateStrings {
		if _, _, err := e.decodeDegenerateOrdinal(d); err != nil {
			return false, err
		}
	}

	startSym, offset, err := e.symbolAtCommonPosition(commonPos, degenerateStrings)
	if err != nil {
		return false, err
	}

	if e.sources != nil {
		inter, err := e.pathIntersection(startSym, offset, degenerateStrings, len(pattern))
		if err != nil {
			return false, err
		}
		if len(inter) == 0 {
			return false, nil
		}
	}

	got, err := e.reconstruct(startSym, offset, degenerateStrings, len(pattern))
	if err != nil {
		return false, err
	}
	if len(got) < len(pattern) {
		return false, nil
	}

	return got == pattern, nil
}

// symbolAtCommonPosition maps a common position to (symbol, offset).
//
// A position landing exactly on a symbol boundary is ambiguous: zero-width
// degenerate symbols sit between the surrounding common blocks. The choice
// vector disambiguates — when the first supplied ordinal names a
// degenerate symbol at the same boundary, the traversal starts there.
func (e *EDS) symbolAtCommonPosition(commonPos format.Position, degenerateStrings []int) (int, format.Position, error) {
	cum := e.meta.CumCommonPositions // n+1 entries

	if commonPos > cum[e.n] {
		return 0, 0, fmt.Errorf("%w: common position %d of %d", errs.ErrOutOfRange, commonPos, cum[e.n])
	}

	// Largest s with cum[s] <= commonPos; ties resolve to the latest
	// symbol, i.e. past any zero-width degenerate run at the boundary.
	s := sort.Search(len(cum), func(i int) bool { return cum[i] > commonPos }) - 1
	offset := commonPos - cum[s]

	if offset == 0 && len(degenerateStrings) > 0 {
		if symIdx, _, err := e.decodeDegenerateOrdinal(degenerateStrings[0]); err == nil {
			if symIdx < s && cum[symIdx] == commonPos {
				s = symIdx
			}
		}
	}

	if s >= e.n {
		return 0, 0, fmt.Errorf("%w: common position %d is past the last symbol", errs.ErrOutOfRange, commonPos)
	}
	if !e.meta.IsDegenerate[s] {
		symLen := format.Position(e.meta.StringLengths[e.meta.CumSetSizes[s]])
		if offset >= symLen && symLen > 0 {
			return 0, 0, fmt.Errorf("%w: offset %d exceeds symbol %d length %d", errs.ErrOutOfRange, offset, s, symLen)
		}
	}

	return s, offset, nil
}

// decodeDegenerateOrdinal maps a global degenerate ordinal to
// (symbol index, local alternative index).
func (e *EDS) decodeDegenerateOrdinal(ordinal int) (int, int, error) {
	if ordinal < 0 {
		return 0, 0, fmt.Errorf("%w: degenerate ordinal %d", errs.ErrOutOfRange, ordinal)
	}

	cum := e.meta.CumDegenerateCounts // n+1 entries
	if ordinal >= cum[e.n] {
		return 0, 0, fmt.Errorf("%w: degenerate ordinal %d of %d", errs.ErrOutOfRange, ordinal, cum[e.n])
	}

	// Largest symbol index with cum <= ordinal; ties resolve forward past
	// non-degenerate symbols, which contribute no ordinals.
	sym := sort.Search(len(cum), func(i int) bool { return cum[i] > ordinal }) - 1
	local := ordinal - cum[sym]

	if !e.meta.IsDegenerate[sym] || local >= int(e.meta.SymbolSizes[sym]) {
		return 0, 0, fmt.Errorf("%w: degenerate ordinal %d", errs.ErrOutOfRange, ordinal)
	}

	return sym, local, nil
}

// reconstruct builds up to patternLen characters starting at
// (startSym, offset), consuming degenerate ordinals in order.
func (e *EDS) reconstruct(startSym int, offset format.Position, degenerateStrings []int, patternLen int) (string, error) {
	var sb strings.Builder
	sb.Grow(patternLen)

	degIdx := 0
	firstSymbol := true

	for sym := startSym; sym < e.n && sb.Len() < patternLen; sym++ {
		var str string

		if e.meta.IsDegenerate[sym] {
			if degIdx >= len(degenerateStrings) {
				return "", fmt.Errorf("%w: need at least %d degenerate ordinals, got %d",
					errs.ErrInvalidArgument, degIdx+1, len(degenerateStrings))
			}
			expectSym, local, err := e.decodeDegenerateOrdinal(degenerateStrings[degIdx])
			if err != nil {
				return "", err
			}
			if expectSym != sym {
				return "", fmt.Errorf("%w: ordinal %d belongs to symbol %d, expected symbol %d",
					errs.ErrInvalidArgument, degenerateStrings[degIdx], expectSym, sym)
			}
			str, err = e.alternative(sym, local)
			if err != nil {
				return "", err
			}
			degIdx++
		} else {
			var err error
			str, err = e.alternative(sym, 0)
			if err != nil {
				return "", err
			}
			if firstSymbol && offset > 0 {
				if offset >= format.Position(len(str)) {
					return "", fmt.Errorf("%w: offset %d exceeds symbol length %d", errs.ErrOutOfRange, offset, len(str))
				}
				str = str[offset:]
			}
		}
		firstSymbol = false

		need := patternLen - sb.Len()
		if len(str) > need {
			str = str[:need]
		}
		sb.WriteString(str)
	}

	return sb.String(), nil
}

// pathIntersection folds the source sets of the alternatives selected by
// the traversal, under the universal-marker algebra.
func (e *EDS) pathIntersection(startSym int, offset format.Position, degenerateStrings []int, patternLen int) (source.Set, error) {
	var (
		inter source.Set
		first = true
	)

	degIdx := 0
	chars := 0

	for sym := startSym; sym < e.n && chars < patternLen; sym++ {
		var globalIdx int

		if e.meta.IsDegenerate[sym] {
			if degIdx >= len(degenerateStrings) {
				return nil, fmt.Errorf("%w: need at least %d degenerate ordinals, got %d",
					errs.ErrInvalidArgument, degIdx+1, len(degenerateStrings))
			}
			expectSym, local, err := e.decodeDegenerateOrdinal(degenerateStrings[degIdx])
			if err != nil {
				return nil, err
			}
			if expectSym != sym {
				return nil, fmt.Errorf("%w: ordinal %d belongs to symbol %d, expected symbol %d",
					errs.ErrInvalidArgument, degenerateStrings[degIdx], expectSym, sym)
			}
			globalIdx = e.meta.CumSetSizes[sym] + local
			degIdx++
		} else {
			globalIdx = e.meta.CumSetSizes[sym]
		}

		symLen := int(e.meta.StringLengths[globalIdx])
		if sym == startSym && !e.meta.IsDegenerate[sym] {
			symLen -= int(offset)
		}
		if remaining := patternLen - chars; symLen > remaining {
			symLen = remaining
		}
		if symLen > 0 {
			chars += symLen
		}

		cur := e.sources[globalIdx]
		if first {
			inter = cur.Clone()
			first = false
		} else {
			inter = inter.Intersect(cur)
		}
		if len(inter) == 0 {
			return inter, nil
		}
	}

	return inter, nil
}
