package elastic

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/varden/eds/errs"
	"github.com/varden/eds/format"
	"github.com/varden/eds/source"
)

func TestParse_Identity(t *testing.T) {
	e, err := ParseString("{ACGT}{A,ACA}{CGT}{T,TG}")
	require.NoError(t, err)

	require.Equal(t, 4, e.Len())
	require.Equal(t, 6, e.Cardinality())
	require.Equal(t, uint64(14), e.Size())
	require.Equal(t, format.StorageFull, e.Mode())

	md := e.Metadata()
	require.Equal(t, []bool{false, true, false, true}, md.IsDegenerate)

	sets, err := e.Sets()
	require.NoError(t, err)
	require.Equal(t, Symbol{"A", "ACA"}, sets[1])
}

func TestParse_CompactNormalization(t *testing.T) {
	compact, err := ParseString("ACGT{A,ACA}CGT{T,TG}")
	require.NoError(t, err)
	full, err := ParseString("{ACGT}{A,ACA}{CGT}{T,TG}")
	require.NoError(t, err)

	require.Equal(t, full.Len(), compact.Len())
	require.Equal(t, full.Cardinality(), compact.Cardinality())
	require.Equal(t, full.Size(), compact.Size())

	fpc, err := compact.Fingerprint()
	require.NoError(t, err)
	fpf, err := full.Fingerprint()
	require.NoError(t, err)
	require.Equal(t, fpf, fpc)
}

func TestParse_CompactRoundTrip(t *testing.T) {
	const in = "ACGT{A,ACA}CGT{T,TG}"

	e, err := ParseString(in)
	require.NoError(t, err)

	out, err := e.Text(format.FormatCompact)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestParse_FullRoundTripIsIdentity(t *testing.T) {
	inputs := []string{
		"{ACGT}{A,ACA}{CGT}{T,TG}",
		"{,A,T}",
		"{A}",
		"{AC,}{G}",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			e1, err := ParseString(in)
			require.NoError(t, err)

			text, err := e1.Text(format.FormatFull)
			require.NoError(t, err)

			e2, err := ParseString(text)
			require.NoError(t, err)

			text2, err := e2.Text(format.FormatFull)
			require.NoError(t, err)
			require.Equal(t, text, text2)
		})
	}
}

func TestParse_EmptyAlternatives(t *testing.T) {
	e, err := ParseString("{,A,T}")
	require.NoError(t, err)

	require.Equal(t, 1, e.Len())
	require.Equal(t, 3, e.Cardinality())
	require.Equal(t, uint64(2), e.Size())

	sets, err := e.Sets()
	require.NoError(t, err)
	require.Equal(t, Symbol{"", "A", "T"}, sets[0])
	require.Equal(t, 1, e.Metadata().NumEmptyStrings)
}

func TestParse_WhitespaceStripped(t *testing.T) {
	e, err := ParseString(" {AC GT}\n{A,\tACA}\r\n")
	require.NoError(t, err)
	require.Equal(t, 2, e.Len())

	sets, err := e.Sets()
	require.NoError(t, err)
	require.Equal(t, Symbol{"ACGT"}, sets[0])
	require.Equal(t, Symbol{"A", "ACA"}, sets[1])
}

func TestParse_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "  \n\t"} {
		e, err := ParseString(in)
		require.NoError(t, err)
		require.True(t, e.Empty())
		require.Zero(t, e.Len())
		require.Zero(t, e.Cardinality())
		require.Zero(t, e.Size())
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty symbol", "{ACGT}{}{T}"},
		{"missing close", "{ACGT}{A,C"},
		{"nested open", "{A{C}}"},
		{"stray close", "AC}GT"},
		{"close first", "}{A}"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseString(tc.input)
			require.Error(t, err)
			require.True(t, errors.Is(err, errs.ErrInvalidFormat), "got %v", err)
		})
	}
}

func TestParse_MetadataInvariants(t *testing.T) {
	inputs := []string{
		"{ACGT}{A,ACA}{CGT}{T,TG}",
		"ACGT{A,ACA}CGT{T,TG}",
		"{,A}{GG}{T,TG,TTT}",
		"{A}",
		"{A,B}{C,D}{E,F}",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			e, err := ParseString(in)
			require.NoError(t, err)
			md := e.Metadata()
			n, m := e.Len(), e.Cardinality()

			require.Equal(t, m, md.CumSetSizes[n-1]+int(md.SymbolSizes[n-1]))

			var total uint64
			for _, l := range md.StringLengths {
				total += uint64(l)
			}
			require.Equal(t, e.Size(), total)

			require.Len(t, md.CumCommonPositions, n+1)
			require.Len(t, md.CumDegenerateCounts, n+1)
			require.Equal(t, format.Position(md.NumCommonChars), md.CumCommonPositions[n])

			for i := 0; i < n; i++ {
				require.Equal(t, int(md.SymbolSizes[i]) > 1, md.IsDegenerate[i])
			}
		})
	}
}

func TestAttachSources(t *testing.T) {
	e, err := ParseString("{ACGT}{A,ACA}{CGT}{T,TG}")
	require.NoError(t, err)
	require.False(t, e.HasSources())

	err = e.LoadSources(strings.NewReader("{0}{1,3}{2}{0}{1}{2,3}"))
	require.NoError(t, err)
	require.True(t, e.HasSources())
	require.Equal(t, source.NewSet(1, 3), e.Sources()[1])

	// Sources attach exactly once.
	err = e.LoadSources(strings.NewReader("{0}{1,3}{2}{0}{1}{2,3}"))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestAttachSources_CardinalityMismatch(t *testing.T) {
	e, err := ParseString("{ACGT}{A,ACA}")
	require.NoError(t, err)

	err = e.LoadSources(strings.NewReader("{0}{1}"))
	require.ErrorIs(t, err, errs.ErrCardinalityMismatch)
}

func TestSources_RoundTrip(t *testing.T) {
	const seds = "{0}{1,3}{2}{0}{1}{2,3}"

	e, err := ParseWithSources(
		strings.NewReader("{ACGT}{A,ACA}{CGT}{T,TG}"),
		strings.NewReader(seds),
	)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, e.SaveSources(&sb))
	require.Equal(t, seds+"\n", sb.String())
}

func TestLoad_MetadataOnly(t *testing.T) {
	const text = "{ACGT}{A,ACA}{CGT}{T,TG}"
	path := filepath.Join(t.TempDir(), "sample.eds")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	e, err := Load(path, WithStorageMode(format.StorageMetadataOnly))
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	require.Equal(t, format.StorageMetadataOnly, e.Mode())
	require.Equal(t, 4, e.Len())
	require.Equal(t, 6, e.Cardinality())
	require.Equal(t, uint64(14), e.Size())

	// Structural accessors work on metadata alone.
	require.True(t, e.IsDegenerate(1))
	require.Equal(t, 2, e.SymbolSize(3))

	// On-demand symbol reads re-parse from the backing file.
	sym, err := e.ReadSymbol(1)
	require.NoError(t, err)
	require.Equal(t, Symbol{"A", "ACA"}, sym)

	sym, err = e.ReadSymbol(3)
	require.NoError(t, err)
	require.Equal(t, Symbol{"T", "TG"}, sym)

	// Re-reads after seeking elsewhere still work.
	sym, err = e.ReadSymbol(0)
	require.NoError(t, err)
	require.Equal(t, Symbol{"ACGT"}, sym)

	_, err = e.ReadSymbol(4)
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	// Full-table operations are rejected.
	_, err = e.Sets()
	require.ErrorIs(t, err, errs.ErrModeUnsupported)
	_, err = e.Text(format.FormatFull)
	require.ErrorIs(t, err, errs.ErrModeUnsupported)
	_, err = e.Extract(0, 1, []int{0})
	require.ErrorIs(t, err, errs.ErrModeUnsupported)
	_, err = e.Fingerprint()
	require.ErrorIs(t, err, errs.ErrModeUnsupported)
}

func TestLoad_MetadataOnly_CompactFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.eds")
	require.NoError(t, os.WriteFile(path, []byte("ACGT{A,ACA}CGT{T,TG}\n"), 0o644))

	e, err := Load(path, WithStorageMode(format.StorageMetadataOnly))
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	require.Equal(t, 4, e.Len())

	sym, err := e.ReadSymbol(2)
	require.NoError(t, err)
	require.Equal(t, Symbol{"CGT"}, sym)

	sym, err = e.ReadSymbol(1)
	require.NoError(t, err)
	require.Equal(t, Symbol{"A", "ACA"}, sym)
}

func TestLoad_Full(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.eds")
	require.NoError(t, os.WriteFile(path, []byte("{ACGT}{A,ACA}"), 0o644))

	e, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, format.StorageFull, e.Mode())
	require.Equal(t, 2, e.Len())
	require.NoError(t, e.Close(), "Close is a no-op in full mode")
}

func TestLoad_MetadataOnly_RejectsCompressed(t *testing.T) {
	_, err := Load("sample.eds.gz", WithStorageMode(format.StorageMetadataOnly))
	require.ErrorIs(t, err, errs.ErrModeUnsupported)
}

func TestSymbols_Iterator(t *testing.T) {
	e, err := ParseString("{ACGT}{A,ACA}{CGT}")
	require.NoError(t, err)

	var got []Symbol
	for i, sym := range e.Symbols() {
		require.Equal(t, len(got), i)
		got = append(got, sym)
	}
	require.Len(t, got, 3)
	require.Equal(t, Symbol{"A", "ACA"}, got[1])

	// Restartable.
	count := 0
	for range e.Symbols() {
		count++
	}
	require.Equal(t, 3, count)
}

func TestNewFromSets(t *testing.T) {
	e, err := NewFromSets(
		[]Symbol{{"ACGT"}, {"A", "ACA"}},
		[]source.Set{source.UniversalSet(), source.NewSet(1), source.NewSet(2)},
	)
	require.NoError(t, err)
	require.Equal(t, 2, e.Len())
	require.Equal(t, 3, e.Cardinality())
	require.True(t, e.HasSources())

	_, err = NewFromSets([]Symbol{{"A"}, {}}, nil)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestFingerprint_DistinguishesSources(t *testing.T) {
	a, err := ParseString("{A,B}{C}")
	require.NoError(t, err)
	b, err := ParseString("{A,B}{C}")
	require.NoError(t, err)
	require.NoError(t, b.LoadSources(strings.NewReader("{1}{2}{0}")))

	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.Fingerprint()
	require.NoError(t, err)
	require.NotEqual(t, fa, fb)
}
