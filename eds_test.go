package eds

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/varden/eds/errs"
	"github.com/varden/eds/format"
)

func TestFromString(t *testing.T) {
	e, err := FromString("ACGT{A,ACA}CGT{T,TG}")
	require.NoError(t, err)
	require.Equal(t, 4, e.Len())
	require.Equal(t, 6, e.Cardinality())
}

func TestFromStringWithSources(t *testing.T) {
	e, err := FromStringWithSources("{ACGT}{A,ACA}{CGT}{T,TG}", "{0}{1,3}{2}{0}{1}{2,3}")
	require.NoError(t, err)
	require.True(t, e.HasSources())

	_, err = FromStringWithSources("{A}", "{1}{2}")
	require.True(t, errors.Is(err, errs.ErrCardinalityMismatch))
}

func TestToLEDS_AutoSelectsSemantics(t *testing.T) {
	// Without sources the cartesian driver runs.
	plain, err := FromString("{AAAA}{A,C}{G}{T,G}{TTTT}")
	require.NoError(t, err)
	led, err := ToLEDS(plain, 2)
	require.NoError(t, err)
	require.True(t, IsLEDS(led, 2))

	// With sources the linear driver runs and keeps provenance.
	sourced, err := FromStringWithSources("{AGTC}{,CC}{T}{C,A}{TATA}", "{0}{1,3}{2}{0}{1}{2,3}{0}")
	require.NoError(t, err)
	led, err = ToLEDS(sourced, 4)
	require.NoError(t, err)
	require.True(t, IsLEDS(led, 4))
	require.True(t, led.HasSources())
}

// Every generated pattern must be locatable by CheckPosition with some
// starting position and choice vector.
func TestGeneratedPatternsAreReconstructible(t *testing.T) {
	// Structural matching only: generation draws alternatives without
	// consulting sources, so verification runs on source-free values.
	// The periodic tails keep wrap-around draws findable at an earlier
	// linear position.
	for _, text := range []string{
		"{ACGT}{A,CA}{GG}{T,TG}{ACGTACGTACGT}",
		"{ACGTACGT}",
	} {
		e, err := FromString(text)
		require.NoError(t, err)

		var sb strings.Builder
		require.NoError(t, e.GeneratePatterns(&sb, 10, 5))
		patterns := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
		require.Len(t, patterns, 10)

		maxOrdinal := e.Metadata().CumDegenerateCounts[e.Len()]
		numCommon := e.Metadata().NumCommonChars

		for _, p := range patterns {
			require.Len(t, p, 5)
			require.True(t, findPattern(t, e, p, numCommon, maxOrdinal), "pattern %q not found in %s", p, text)
		}
	}
}

// findPattern brute-forces CheckPosition over positions and up to two
// degenerate choices.
func findPattern(t *testing.T, e *EDS, pattern string, numCommon uint64, maxOrdinal int) bool {
	t.Helper()

	check := func(pos format.Position, ords []int) bool {
		ok, err := e.CheckPosition(pos, ords, pattern)
		return err == nil && ok
	}

	for pos := format.Position(0); pos < numCommon; pos++ {
		if check(pos, nil) {
			return true
		}
		for d1 := 0; d1 < maxOrdinal; d1++ {
			if check(pos, []int{d1}) {
				return true
			}
			for d2 := d1 + 1; d2 < maxOrdinal; d2++ {
				if check(pos, []int{d1, d2}) {
					return true
				}
			}
		}
	}

	return false
}
