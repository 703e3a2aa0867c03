package elastic

import (
	"fmt"
	"math"

	"github.com/varden/eds/format"
	"github.com/varden/eds/source"
)

// Metadata is the derived index kept invariant with the symbol sequence.
// It is sufficient on its own for structural queries and navigation; the
// metadata-only storage mode holds nothing else in memory.
type Metadata struct {
	// BaseOffsets holds the byte offset where each symbol begins in the
	// backing text. Populated only when scanning a seekable source.
	BaseOffsets []int64

	// SymbolSizes holds |σᵢ| per symbol.
	SymbolSizes []format.Length

	// StringLengths holds the length of each global alternative, in
	// canonical order (all of σ₀, then σ₁, ...).
	StringLengths []format.Length

	// CumSetSizes[i] is the global index of the first alternative of
	// symbol i.
	CumSetSizes []int

	// IsDegenerate[i] reports |σᵢ| >= 2.
	IsDegenerate []bool

	// CumCommonPositions has n+1 entries; entry i is the number of
	// characters in non-degenerate symbols strictly before symbol i.
	CumCommonPositions []format.Position

	// CumDegenerateCounts has n+1 entries; entry i is the number of
	// alternatives in degenerate symbols strictly before symbol i.
	CumDegenerateCounts []int

	// Statistics derived from the index.
	MinContextLength     format.Length
	MaxContextLength     format.Length
	AvgContextLength     float64
	NumDegenerateSymbols int
	NumCommonChars       uint64
	TotalChangeSize      uint64
	NumEmptyStrings      int

	// Source statistics, meaningful only once sources are attached.
	NumPaths          int
	MaxPathsPerString int
	AvgPathsPerString float64
}

// computeDerived fills the cumulative arrays and statistics from
// SymbolSizes and StringLengths. It is called after every parse, load and
// transform so the §3 invariants hold on every constructed EDS.
func (md *Metadata) computeDerived() {
	n := len(md.SymbolSizes)

	md.CumSetSizes = make([]int, n)
	md.IsDegenerate = make([]bool, n)
	md.CumCommonPositions = make([]format.Position, 0, n+1)
	md.CumDegenerateCounts = make([]int, 0, n+1)

	md.MinContextLength = math.MaxUint32
	md.MaxContextLength = 0
	md.NumDegenerateSymbols = 0
	md.NumCommonChars = 0
	md.TotalChangeSize = 0
	md.NumEmptyStrings = 0

	var (
		totalContext  uint64
		contextBlocks int
		stringIdx     int
		cumCommon     format.Position
		cumDeg        int
	)

	md.CumCommonPositions = append(md.CumCommonPositions, 0)
	md.CumDegenerateCounts = append(md.CumDegenerateCounts, 0)

	for i := 0; i < n; i++ {
		size := int(md.SymbolSizes[i])
		md.CumSetSizes[i] = stringIdx
		md.IsDegenerate[i] = size > 1

		if size > 1 {
			md.NumDegenerateSymbols++
			md.TotalChangeSize += uint64(size - 1)
			cumDeg += size
		} else {
			ctx := md.StringLengths[stringIdx]
			if ctx < md.MinContextLength {
				md.MinContextLength = ctx
			}
			if ctx > md.MaxContextLength {
				md.MaxContextLength = ctx
			}
			totalContext += uint64(ctx)
			contextBlocks++
			md.NumCommonChars += uint64(ctx)
			cumCommon += format.Position(ctx)
		}

		for j := 0; j < size; j++ {
			if md.StringLengths[stringIdx+j] == 0 {
				md.NumEmptyStrings++
			}
		}
		stringIdx += size

		md.CumCommonPositions = append(md.CumCommonPositions, cumCommon)
		md.CumDegenerateCounts = append(md.CumDegenerateCounts, cumDeg)
	}

	if contextBlocks > 0 {
		md.AvgContextLength = float64(totalContext) / float64(contextBlocks)
	} else {
		md.AvgContextLength = 0
	}
	if md.MinContextLength == math.MaxUint32 {
		md.MinContextLength = 0
	}
}

func (md *Metadata) computeSourceStats(sets []source.Set) {
	md.NumPaths = 0
	md.MaxPathsPerString = 0
	md.AvgPathsPerString = 0

	if len(sets) == 0 {
		return
	}

	seen := make(map[format.PathID]struct{})
	total := 0
	for _, s := range sets {
		if len(s) > md.MaxPathsPerString {
			md.MaxPathsPerString = len(s)
		}
		for _, id := range s {
			seen[id] = struct{}{}
		}
		total += len(s)
	}

	md.NumPaths = len(seen)
	md.AvgPathsPerString = float64(total) / float64(len(sets))
}

// Statistics is a read-only summary of an EDS, rendered by the stats tool.
type Statistics struct {
	Symbols          int
	TotalChars       uint64
	Cardinality      int
	Degenerate       int
	MinContextLength format.Length
	MaxContextLength format.Length
	AvgContextLength float64
	NumCommonChars   uint64
	TotalChangeSize  uint64
	NumEmptyStrings  int
	HasSources       bool
	NumPaths         int
	MaxPathsPerAlt   int
	AvgPathsPerAlt   float64
}

// Statistics returns the summary for the EDS.
func (e *EDS) Statistics() Statistics {
	return Statistics{
		Symbols:          e.n,
		TotalChars:       e.size,
		Cardinality:      e.m,
		Degenerate:       e.meta.NumDegenerateSymbols,
		MinContextLength: e.meta.MinContextLength,
		MaxContextLength: e.meta.MaxContextLength,
		AvgContextLength: e.meta.AvgContextLength,
		NumCommonChars:   e.meta.NumCommonChars,
		TotalChangeSize:  e.meta.TotalChangeSize,
		NumEmptyStrings:  e.meta.NumEmptyStrings,
		HasSources:       e.sources != nil,
		NumPaths:         e.meta.NumPaths,
		MaxPathsPerAlt:   e.meta.MaxPathsPerString,
		AvgPathsPerAlt:   e.meta.AvgPathsPerString,
	}
}

// String renders the statistics in a fixed human-readable layout.
func (s Statistics) String() string {
	sources := "not loaded"
	if s.HasSources {
		sources = fmt.Sprintf("loaded (%d paths, max %d per alternative, avg %.2f)",
			s.NumPaths, s.MaxPathsPerAlt, s.AvgPathsPerAlt)
	}

	return fmt.Sprintf(
		"Symbols (n):            %d\n"+
			"Total characters (N):   %d\n"+
			"Alternatives (m):       %d\n"+
			"Degenerate symbols:     %d\n"+
			"Regular symbols:        %d\n"+
			"Context length min/max: %d/%d\n"+
			"Context length avg:     %.2f\n"+
			"Common characters:      %d\n"+
			"Total change size:      %d\n"+
			"Empty alternatives:     %d\n"+
			"Sources:                %s\n",
		s.Symbols, s.TotalChars, s.Cardinality, s.Degenerate,
		s.Symbols-s.Degenerate, s.MinContextLength, s.MaxContextLength,
		s.AvgContextLength, s.NumCommonChars, s.TotalChangeSize,
		s.NumEmptyStrings, sources)
}
