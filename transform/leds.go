// Package transform implements the EDS → l-EDS conversion: iterative
// merging of adjacent symbols until every internal non-degenerate symbol
// reaches the minimum context length.
//
// Each iteration selects a disjoint set of adjacent pairs that repair a
// violation, merges them on a bounded worker pool, and reassembles the
// EDS. The first and last symbols are exempt from the length rule, so the
// driver can legitimately stop with short boundary blocks remaining.
package transform

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/varden/eds/elastic"
	"github.com/varden/eds/errs"
	"github.com/varden/eds/format"
	"github.com/varden/eds/source"
)

// DefaultMaxIterations bounds the fixed-point loop. Convergence takes
// O(n/l) iterations in practice because every iteration strictly reduces
// the symbol count.
const DefaultMaxIterations = 10000

// IsLEDS reports whether e satisfies the l-EDS predicate for context
// length l: every internal non-degenerate symbol (neither first nor last)
// has length >= l, and no two adjacent symbols are both degenerate. Any
// EDS is a 0-EDS.
func IsLEDS(e *elastic.EDS, contextLength format.Length) bool {
	if contextLength == 0 {
		return true
	}

	md := e.Metadata()
	n := e.Len()

	for i := 0; i < n; i++ {
		if !md.IsDegenerate[i] {
			length := md.StringLengths[md.CumSetSizes[i]]
			if i > 0 && i < n-1 && length < contextLength {
				return false
			}
		}
		if i+1 < n && md.IsDegenerate[i] && md.IsDegenerate[i+1] {
			return false
		}
	}

	return true
}

// Linear runs the fixed-point driver with LINEAR (source-filtered)
// merges. The input must have sources attached. The result is a fresh
// EDS; the input is unchanged.
//
// If pair selection comes up empty before the predicate holds — which
// happens when the only remaining violations are the exempt leading or
// trailing short blocks — the EDS reached so far is returned as-is.
func Linear(e *elastic.EDS, contextLength format.Length, opts ...Option) (*elastic.EDS, error) {
	if !e.HasSources() {
		return nil, fmt.Errorf("%w: linear transform requires sources", errs.ErrInvalidArgument)
	}

	return run(e, contextLength, opts)
}

// Cartesian runs the fixed-point driver with CARTESIAN merges. It rejects
// an EDS with sources attached; use Linear for those.
func Cartesian(e *elastic.EDS, contextLength format.Length, opts ...Option) (*elastic.EDS, error) {
	if e.HasSources() {
		return nil, fmt.Errorf("%w: cartesian transform cannot be used with sources", errs.ErrInvalidArgument)
	}

	return run(e, contextLength, opts)
}

func run(e *elastic.EDS, contextLength format.Length, opts []Option) (*elastic.EDS, error) {
	if contextLength == 0 {
		return nil, fmt.Errorf("%w: context length must be positive", errs.ErrInvalidArgument)
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	cur := e
	for iter := 0; iter < cfg.maxIterations; iter++ {
		if IsLEDS(cur, contextLength) {
			return cur, nil
		}

		pairs := selectIndependentPairs(cur, contextLength)
		if len(pairs) == 0 {
			// Stuck on exempt boundary shorts; the reached EDS stands.
			return cur, nil
		}

		results, err := mergePairs(cur, pairs, cfg.workers)
		if err != nil {
			return nil, err
		}

		cur, err = reconstruct(cur, pairs, results)
		if err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: after %d iterations", errs.ErrMergeDidNotConverge, cfg.maxIterations)
}

// mergePair is one adjacent pair chosen for merging; pairs never share a
// symbol, so their merges are independent.
type mergePair struct {
	left int // merges with left+1
}

// selectIndependentPairs scans greedily left to right, pairing (i, i+1)
// when at least one side is an internal short non-degenerate symbol or
// both sides are degenerate. Chosen pairs consume both indices.
func selectIndependentPairs(e *elastic.EDS, contextLength format.Length) []mergePair {
	n := e.Len()
	if n < 2 {
		return nil
	}

	md := e.Metadata()
	used := make([]bool, n)

	shortInternal := func(i int) bool {
		if md.IsDegenerate[i] || i == 0 || i == n-1 {
			return false
		}

		return md.StringLengths[md.CumSetSizes[i]] < contextLength
	}

	var pairs []mergePair
	for i := 0; i+1 < n; i++ {
		if used[i] || used[i+1] {
			continue
		}

		merge := shortInternal(i) || shortInternal(i+1) ||
			(md.IsDegenerate[i] && md.IsDegenerate[i+1])
		if !merge {
			continue
		}

		pairs = append(pairs, mergePair{left: i})
		used[i] = true
		used[i+1] = true
	}

	return pairs
}

// mergeResult carries one merged symbol and, when sources are present,
// its per-alternative source sets.
type mergeResult struct {
	alts    elastic.Symbol
	sources []source.Set
}

// mergePairs executes the selected merges on a bounded worker pool. The
// input EDS is read-only during the fan-out; results land in a slice
// indexed by pair, so no ordering between workers matters.
func mergePairs(e *elastic.EDS, pairs []mergePair, workers int) ([]mergeResult, error) {
	results := make([]mergeResult, len(pairs))

	var g errgroup.Group
	g.SetLimit(workers)

	for idx, pair := range pairs {
		g.Go(func() error {
			merged, err := e.MergeAdjacent(pair.left, pair.left+1)
			if err != nil {
				return err
			}

			alts, err := merged.ReadSymbol(format.Position(pair.left))
			if err != nil {
				return err
			}
			results[idx].alts = alts

			if merged.HasSources() {
				md := merged.Metadata()
				base := md.CumSetSizes[pair.left]
				size := int(md.SymbolSizes[pair.left])
				results[idx].sources = merged.Sources()[base : base+size]
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// reconstruct assembles the next-iteration EDS from unaffected symbols
// and the merged results.
func reconstruct(e *elastic.EDS, pairs []mergePair, results []mergeResult) (*elastic.EDS, error) {
	sets, err := e.Sets()
	if err != nil {
		return nil, err
	}

	mergedAt := make(map[int]int, len(pairs)) // left index -> result index
	consumed := make(map[int]struct{}, len(pairs))
	for idx, pair := range pairs {
		mergedAt[pair.left] = idx
		consumed[pair.left+1] = struct{}{}
	}

	md := e.Metadata()
	srcs := e.Sources()

	newSets := make([]elastic.Symbol, 0, e.Len()-len(pairs))
	var newSrcs []source.Set
	if srcs != nil {
		newSrcs = make([]source.Set, 0, e.Cardinality())
	}

	for pos := 0; pos < e.Len(); pos++ {
		if _, ok := consumed[pos]; ok {
			continue
		}

		if idx, ok := mergedAt[pos]; ok {
			newSets = append(newSets, results[idx].alts)
			if srcs != nil {
				newSrcs = append(newSrcs, results[idx].sources...)
			}

			continue
		}

		newSets = append(newSets, sets[pos])
		if srcs != nil {
			base := md.CumSetSizes[pos]
			newSrcs = append(newSrcs, srcs[base:base+int(md.SymbolSizes[pos])]...)
		}
	}

	return elastic.NewFromSets(newSets, newSrcs)
}

// Workers returns the default worker count for the merge pool.
func Workers() int {
	return runtime.GOMAXPROCS(0)
}
