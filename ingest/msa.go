package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/varden/eds/errs"
	"github.com/varden/eds/format"
	"github.com/varden/eds/internal/bitvec"
	"github.com/varden/eds/internal/hash"
)

// msaIndex is what the emission pass needs to re-read aligned sequences
// by seeking: the reference kept in memory, per-sequence start offsets
// and the FASTA line width.
type msaIndex struct {
	ref            string
	startPositions []int64
	nSequences     int
	lineWidth      int
}

// MSAToEDS converts an aligned FASTA stream to EDS text with per-sequence
// path ids (1-indexed; the reference is path 1). Every run of agreeing or
// disagreeing alignment columns becomes one symbol.
func MSAToEDS(r io.ReadSeeker, opts ...Option) (*Result, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	ix, variant, err := scanMSA(r)
	if err != nil {
		return nil, err
	}

	if ix.nSequences == 1 {
		cfg.warn("MSA has a single sequence; output has no variation")
	}

	bounds := edsBoundaries(variant)

	return emitMSA(r, ix, variant, bounds)
}

// MSAToLEDS converts an aligned FASTA stream directly to l-EDS text:
// common runs shorter than the context length are absorbed into the
// neighbouring variant regions instead of standing alone. Runs touching
// either end of the alignment always stand alone.
func MSAToLEDS(r io.ReadSeeker, contextLength format.Length, opts ...Option) (*Result, error) {
	if contextLength == 0 {
		return nil, fmt.Errorf("%w: context length must be positive", errs.ErrInvalidArgument)
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	ix, variant, err := scanMSA(r)
	if err != nil {
		return nil, err
	}

	if ix.nSequences == 1 {
		cfg.warn("MSA has a single sequence; output has no variation")
	}

	bounds := ledsBoundaries(variant, int(contextLength), len(ix.ref))

	return emitMSA(r, ix, variant, bounds)
}

// scanMSA is pass 1: read the reference, record per-sequence data
// offsets, and build the variant bit vector B of length |ref|+1. B[j]
// stays 1 only where every sequence agrees with the reference and none
// has a gap; the final bit is a sentinel holding the complement of its
// neighbour so run scans terminate at the alignment end.
func scanMSA(r io.ReadSeeker) (*msaIndex, *bitvec.Vector, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	br := bufio.NewReader(r)
	ix := &msaIndex{lineWidth: -1}

	var (
		refBuf []byte
		b      *bitvec.Vector
		offset int64
		seq    int // 1-based index of the sequence being read
		col    int // alignment column within the current sequence
	)

	endSequence := func() error {
		if seq >= 2 && col != len(refBuf) {
			return fmt.Errorf("%w: MSA: sequence %d has length %d, reference has %d",
				errs.ErrInvalidFormat, seq, col, len(refBuf))
		}

		return nil
	}

	for {
		raw, readErr := br.ReadString('\n')
		if len(raw) > 0 {
			line := strings.TrimRight(raw, "\r\n")
			switch {
			case len(line) == 0:
				// blank line, skip
			case line[0] == '>':
				if err := endSequence(); err != nil {
					return nil, nil, err
				}
				if seq == 1 {
					b = bitvec.New(len(refBuf)+1, true)
				}
				seq++
				col = 0
				ix.startPositions = append(ix.startPositions, offset+int64(len(raw)))
			case seq == 1:
				refBuf = append(refBuf, line...)
				if ix.lineWidth == -1 {
					ix.lineWidth = len(line)
				}
			case seq >= 2:
				for j := 0; j < len(line); j++ {
					if col >= len(refBuf) {
						return nil, nil, fmt.Errorf("%w: MSA: sequence %d longer than reference",
							errs.ErrInvalidFormat, seq)
					}
					if line[j] != refBuf[col] || line[j] == '-' {
						b.Set(col, false)
					}
					col++
				}
			default:
				return nil, nil, fmt.Errorf("%w: MSA: sequence data before first '>' header", errs.ErrInvalidFormat)
			}
			offset += int64(len(raw))
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, nil, fmt.Errorf("%w: %w", errs.ErrIO, readErr)
		}
	}

	if seq == 0 || len(refBuf) == 0 {
		return nil, nil, fmt.Errorf("%w: MSA: no aligned sequences", errs.ErrInvalidFormat)
	}
	if err := endSequence(); err != nil {
		return nil, nil, err
	}
	if b == nil {
		b = bitvec.New(len(refBuf)+1, true)
	}

	b.Set(len(refBuf), !b.Get(len(refBuf)-1))

	ix.ref = string(refBuf)
	ix.nSequences = seq

	return ix, b, nil
}

// edsBoundaries is pass 2 for plain EDS output: a symbol starts at
// position 0 and at every transition of the variant vector.
func edsBoundaries(b *bitvec.Vector) *bitvec.Vector {
	h := bitvec.New(b.Len(), false)
	h.Set(0, true)
	for j := 1; j < b.Len(); j++ {
		if b.Get(j) != b.Get(j-1) {
			h.Set(j, true)
		}
	}

	return h
}

// ledsBoundaries is pass 2 for l-EDS output. Walking the alternating
// 1-runs and 0-runs of B: a 1-run stands alone when it is long enough, or
// starts the alignment, or touches its end; short internal 1-runs merge
// into the neighbouring variant regions.
func ledsBoundaries(b *bitvec.Vector, contextLength, refLen int) *bitvec.Vector {
	h := bitvec.New(b.Len(), false)

	i := 0
	prevStandalone := false
	for i < refLen {
		if b.Get(i) {
			nextZero := b.NextZero(i)
			runLen := nextZero - i

			standalone := runLen >= contextLength || i == 0 || nextZero == refLen
			if standalone {
				h.Set(i, true)
			} else if prevStandalone {
				h.Set(i, true)
			}
			prevStandalone = standalone
			i = nextZero
		} else {
			if prevStandalone {
				h.Set(i, true)
				prevStandalone = false
			}
			i = b.NextOne(i)
		}
	}

	h.Set(0, true)

	return h
}

// emitMSA is pass 3: walk the symbols delimited by boundary bits. A
// region with no variant bit emits the gap-stripped reference with the
// universal source; a variant region re-reads every sequence's characters
// by seek, groups identical strings in first-seen order, and labels each
// with the 1-indexed ids of the sequences that produced it.
func emitMSA(r io.ReadSeeker, ix *msaIndex, b, h *bitvec.Vector) (*Result, error) {
	var starts []int
	for i := 0; i < len(ix.ref); i++ {
		if h.Get(i) {
			starts = append(starts, i)
		}
	}

	var (
		eds  strings.Builder
		seds strings.Builder
	)
	stats := Stats{Sequences: ix.nSequences, Symbols: len(starts)}

	buf := make([]byte, 0, ix.lineWidth*2)

	for symIdx, start := range starts {
		end := len(ix.ref)
		if symIdx+1 < len(starts) {
			end = starts[symIdx+1]
		}

		common := b.NextZero(start) >= end

		eds.WriteByte(format.SetOpen)
		if common {
			for i := start; i < end; i++ {
				if ix.ref[i] != '-' {
					eds.WriteByte(ix.ref[i])
				}
			}
			seds.WriteString("{0}")
		} else {
			stats.Groups++
			interner := hash.NewInterner()
			var paths [][]format.PathID

			for seq := 0; seq < ix.nSequences; seq++ {
				variant, err := readAlignedRegion(r, ix, seq, start, end, &buf)
				if err != nil {
					return nil, err
				}
				idx, added := interner.Intern(variant)
				if added {
					paths = append(paths, nil)
				}
				paths[idx] = append(paths[idx], format.PathID(seq+1))
			}

			for v, variant := range interner.Entries() {
				if v > 0 {
					eds.WriteByte(format.SetSeparator)
				}
				eds.WriteString(variant)

				seds.WriteByte(format.SetOpen)
				for p, id := range paths[v] {
					if p > 0 {
						seds.WriteByte(format.SetSeparator)
					}
					fmt.Fprintf(&seds, "%d", id)
				}
				seds.WriteByte(format.SetClose)
			}
		}
		eds.WriteByte(format.SetClose)
	}

	return &Result{EDS: eds.String(), Sources: seds.String(), Stats: stats}, nil
}

// readAlignedRegion seeks into one sequence's block and extracts the
// alignment columns [start, end) with newlines and gaps stripped.
func readAlignedRegion(r io.ReadSeeker, ix *msaIndex, seq, start, end int, buf *[]byte) (string, error) {
	regionLen := end - start
	fileOff := ix.startPositions[seq] + int64(start) + int64(start/ix.lineWidth)
	toRead := regionLen + ((start%ix.lineWidth)+regionLen)/ix.lineWidth

	if cap(*buf) < toRead {
		*buf = make([]byte, toRead)
	}
	*buf = (*buf)[:toRead]

	if _, err := r.Seek(fileOff, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w: seeking sequence %d: %w", errs.ErrIO, seq+1, err)
	}
	n, err := io.ReadFull(r, *buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("%w: reading sequence %d: %w", errs.ErrIO, seq+1, err)
	}

	var sb strings.Builder
	sb.Grow(regionLen)
	for _, c := range (*buf)[:n] {
		if c != '\n' && c != '\r' && c != '-' {
			sb.WriteByte(c)
		}
	}

	return sb.String(), nil
}
