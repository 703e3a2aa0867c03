package elastic

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/varden/eds/errs"
	"github.com/varden/eds/format"
)

// GeneratePatterns writes count random strings of exactly patternLength
// characters to w, one per line. Each pattern is drawn by picking a
// uniformly random starting offset within the common characters,
// navigating to the containing symbol, then choosing a uniformly random
// alternative at every symbol until the length is reached. Empty
// alternatives contribute nothing. If the EDS runs out before the pattern
// is full, generation wraps around to symbol 0.
//
// Works in both storage modes. The PRNG is seeded from process entropy;
// determinism is not a goal.
func (e *EDS) GeneratePatterns(w io.Writer, count int, patternLength int) error {
	if e.n == 0 {
		return fmt.Errorf("%w: cannot generate patterns from an empty EDS", errs.ErrInvalidArgument)
	}
	if patternLength <= 0 {
		return fmt.Errorf("%w: pattern length must be positive", errs.ErrInvalidArgument)
	}
	if e.size == 0 {
		return fmt.Errorf("%w: EDS has no characters to draw from", errs.ErrInvalidArgument)
	}

	bw := bufio.NewWriter(w)
	for i := 0; i < count; i++ {
		p, err := e.generateOne(patternLength)
		if err != nil {
			return err
		}
		if _, err := bw.WriteString(p); err != nil {
			return fmt.Errorf("%w: writing pattern: %w", errs.ErrIO, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("%w: writing pattern: %w", errs.ErrIO, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: writing patterns: %w", errs.ErrIO, err)
	}

	return nil
}

func (e *EDS) generateOne(patternLength int) (string, error) {
	var (
		sb     strings.Builder
		offset format.Position
		start  int
	)
	sb.Grow(patternLength)

	if e.meta.NumCommonChars > 0 {
		p := format.Position(rand.Uint64N(e.meta.NumCommonChars))
		s, off, err := e.symbolAtCommonPosition(p, nil)
		if err != nil {
			return "", err
		}
		start = s
		offset = off
	}

	first := true
	pos := start
	for sb.Len() < patternLength {
		if pos >= e.n {
			// Wrap around for EDSs shorter than the pattern.
			pos = 0
			first = false
			continue
		}

		alts, err := e.ReadSymbol(format.Position(pos))
		if err != nil {
			return "", err
		}

		sel := alts[rand.IntN(len(alts))]

		var startOff int
		if first {
			startOff = int(offset)
			first = false
		}
		if startOff < len(sel) {
			avail := sel[startOff:]
			if need := patternLength - sb.Len(); len(avail) > need {
				avail = avail[:need]
			}
			sb.WriteString(avail)
		}

		pos++
	}

	return sb.String(), nil
}
