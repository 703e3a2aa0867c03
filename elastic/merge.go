package elastic

import (
	"fmt"

	"github.com/varden/eds/errs"
	"github.com/varden/eds/format"
	"github.com/varden/eds/source"
)

// MergeAdjacent produces a new EDS in which symbols i and j (j must be
// i+1) are replaced by a single symbol built by concatenation. The
// receiver is left unchanged.
//
// Without sources the merge is CARTESIAN: every |σᵢ|·|σⱼ| concatenation,
// iterating σᵢ outer and σⱼ inner. With sources it is LINEAR: a pair is
// kept only when its source intersection is non-empty, and the merged
// alternative carries that intersection; if every intersection is empty
// the merge fails with ErrEmptySetResult.
//
// A merged symbol with exactly one alternative is non-degenerate. Merging
// requires StorageFull: product building needs the materialized strings.
func (e *EDS) MergeAdjacent(i, j int) (*EDS, error) {
	if j != i+1 {
		return nil, fmt.Errorf("%w: positions %d and %d are not adjacent", errs.ErrInvalidArgument, i, j)
	}
	if i < 0 || j >= e.n {
		return nil, fmt.Errorf("%w: merge positions %d,%d with n=%d", errs.ErrOutOfRange, i, j, e.n)
	}
	if e.mode != format.StorageFull {
		return nil, fmt.Errorf("%w: MergeAdjacent requires %s storage", errs.ErrModeUnsupported, format.StorageFull)
	}

	merged, mergedSrc, err := e.mergeSymbols(i, j)
	if err != nil {
		return nil, err
	}

	sets := make([]Symbol, 0, e.n-1)
	sets = append(sets, e.sets[:i]...)
	sets = append(sets, merged)
	sets = append(sets, e.sets[j+1:]...)

	var srcs []source.Set
	if e.sources != nil {
		lo := e.meta.CumSetSizes[i]
		hi := e.meta.CumSetSizes[j] + int(e.meta.SymbolSizes[j])
		srcs = make([]source.Set, 0, e.m-(hi-lo)+len(mergedSrc))
		srcs = append(srcs, e.sources[:lo]...)
		srcs = append(srcs, mergedSrc...)
		srcs = append(srcs, e.sources[hi:]...)
	}

	return NewFromSets(sets, srcs)
}

// mergeSymbols builds the merged alternative list for symbols i and j,
// dispatching on source presence.
func (e *EDS) mergeSymbols(i, j int) (Symbol, []source.Set, error) {
	left, right := e.sets[i], e.sets[j]

	if e.sources == nil {
		merged := make(Symbol, 0, len(left)*len(right))
		for _, a := range left {
			for _, b := range right {
				merged = append(merged, a+b)
			}
		}

		return merged, nil, nil
	}

	leftBase := e.meta.CumSetSizes[i]
	rightBase := e.meta.CumSetSizes[j]

	var (
		merged Symbol
		srcs   []source.Set
	)
	for ai, a := range left {
		sa := e.sources[leftBase+ai]
		for bi, b := range right {
			sb := e.sources[rightBase+bi]
			inter := sa.Intersect(sb)
			if len(inter) == 0 {
				continue
			}
			merged = append(merged, a+b)
			srcs = append(srcs, inter)
		}
	}

	if len(merged) == 0 {
		return nil, nil, fmt.Errorf("%w: merging symbols %d and %d", errs.ErrEmptySetResult, i, j)
	}

	return merged, srcs, nil
}
