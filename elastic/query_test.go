package elastic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/varden/eds/errs"
)

func TestExtract(t *testing.T) {
	e, err := ParseString("{ACGT}{A,ACA}{CGT}{T,TG}")
	require.NoError(t, err)

	got, err := e.Extract(0, 4, []int{0, 1, 0, 1})
	require.NoError(t, err)
	require.Equal(t, "ACGTACACGTTG", got)

	got, err = e.Extract(1, 2, []int{1, 0})
	require.NoError(t, err)
	require.Equal(t, "ACACGT", got)

	got, err = e.Extract(0, 0, nil)
	require.NoError(t, err)
	require.Empty(t, got)

	// Length clamps at the end; the choice vector matches the clamped span.
	got, err = e.Extract(2, 10, []int{0, 0})
	require.NoError(t, err)
	require.Equal(t, "CGTT", got)
}

func TestExtract_Errors(t *testing.T) {
	e, err := ParseString("{ACGT}{A,ACA}")
	require.NoError(t, err)

	_, err = e.Extract(2, 1, []int{0})
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	_, err = e.Extract(0, 2, []int{0})
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = e.Extract(0, 2, []int{0, 5})
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	empty, err := ParseString("")
	require.NoError(t, err)
	_, err = empty.Extract(0, 1, []int{0})
	require.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestCheckPosition_Basic(t *testing.T) {
	e, err := ParseString("{ACGT}{A,ACA}{CGT}{T,TG}")
	require.NoError(t, err)

	cases := []struct {
		pos      uint64
		ordinals []int
		pattern  string
		want     bool
	}{
		{0, nil, "ACG", true},
		{0, nil, "ACGT", true},
		{1, nil, "CGT", true},
		{4, []int{0}, "ACG", true},
		{5, []int{2}, "GTT", true},
		{5, []int{3}, "GTT", true},
		{4, []int{0, 2}, "ACGTT", true},
		{4, []int{0, 3}, "ACGTT", true},
		{0, nil, "AXGT", false},
		{4, []int{1}, "ACG", false},
	}

	for _, tc := range cases {
		got, err := e.CheckPosition(tc.pos, tc.ordinals, tc.pattern)
		require.NoError(t, err, "pos=%d ordinals=%v pattern=%q", tc.pos, tc.ordinals, tc.pattern)
		require.Equal(t, tc.want, got, "pos=%d ordinals=%v pattern=%q", tc.pos, tc.ordinals, tc.pattern)
	}
}

func TestCheckPosition_EmptyCases(t *testing.T) {
	e, err := ParseString("{ACGT}{A,ACA}{CGT}{T,TG}")
	require.NoError(t, err)

	// Empty pattern matches at any position inside the common range.
	for pos := uint64(0); pos <= e.Metadata().NumCommonChars; pos++ {
		got, err := e.CheckPosition(pos, nil, "")
		require.NoError(t, err)
		require.True(t, got, "pos=%d", pos)
	}

	empty, err := ParseString("")
	require.NoError(t, err)
	got, err := empty.CheckPosition(0, nil, "A")
	require.NoError(t, err)
	require.False(t, got)
}

func TestCheckPosition_Errors(t *testing.T) {
	e, err := ParseString("{ACGT}{A,ACA}{CGT}{T,TG}")
	require.NoError(t, err)

	// Position beyond the common range.
	_, err = e.CheckPosition(100, nil, "ACG")
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	// Ordinal out of range.
	_, err = e.CheckPosition(4, []int{999}, "ACG")
	require.ErrorIs(t, err, errs.ErrOutOfRange)
	_, err = e.CheckPosition(4, []int{-1}, "ACG")
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	// Not enough ordinals for the span.
	_, err = e.CheckPosition(0, nil, "ACGTT")
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	// Ordinal for the wrong symbol mid-traversal.
	_, err = e.CheckPosition(4, []int{0, 1}, "ACGTT")
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestCheckPosition_WithSources(t *testing.T) {
	e, err := parseSourced("{ACGT}{A,ACA}{CGT}{T,TG}", "{0}{1,3}{2}{0}{1}{2,3}")
	require.NoError(t, err)

	// Paths {1,3} ∩ {0} ∩ {1} = {1}: structurally and biologically valid.
	got, err := e.CheckPosition(4, []int{0, 2}, "ACGTT")
	require.NoError(t, err)
	require.True(t, got)

	// ACA belongs to path {2} only, T to {1}: empty intersection.
	got, err = e.CheckPosition(4, []int{1, 2}, "ACACGTT")
	require.NoError(t, err)
	require.False(t, got)
}

func TestCheckPosition_MetadataOnly(t *testing.T) {
	e := mustLoadMetadataOnly(t, "{ACGT}{A,ACA}{CGT}{T,TG}")
	defer func() { _ = e.Close() }()

	got, err := e.CheckPosition(4, []int{0, 2}, "ACGTT")
	require.NoError(t, err)
	require.True(t, got)

	got, err = e.CheckPosition(0, nil, "ACGX")
	require.NoError(t, err)
	require.False(t, got)
}

func TestCheckPosition_TrailingDegenerate(t *testing.T) {
	e, err := ParseString("{AC}{G,T}")
	require.NoError(t, err)

	// Position 2 is the boundary past the last common block; the ordinal
	// resolves it to the trailing degenerate symbol.
	got, err := e.CheckPosition(2, []int{1}, "T")
	require.NoError(t, err)
	require.True(t, got)

	got, err = e.CheckPosition(2, []int{0}, "T")
	require.NoError(t, err)
	require.False(t, got)
}

func TestCheckPosition_LeadingDegenerate(t *testing.T) {
	e, err := ParseString("{A,T}{CG}")
	require.NoError(t, err)

	// Without ordinals, position 0 is the common block.
	got, err := e.CheckPosition(0, nil, "CG")
	require.NoError(t, err)
	require.True(t, got)

	// With an ordinal, position 0 resolves to the leading degenerate.
	got, err = e.CheckPosition(0, []int{1}, "TCG")
	require.NoError(t, err)
	require.True(t, got)
}
