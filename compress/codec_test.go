package compress

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByExtension(t *testing.T) {
	for _, ext := range []string{".gz", ".zst", ".s2", ".lz4"} {
		c, ok := ByExtension("ref" + ext)
		require.True(t, ok, ext)
		require.Equal(t, ext, c.Ext())
	}

	_, ok := ByExtension("chr1.eds")
	require.False(t, ok)
	require.False(t, IsCompressedPath("chr1.eds"))
	require.True(t, IsCompressedPath("chr1.eds.gz"))
}

func TestRoundTrip_AllCodecs(t *testing.T) {
	payload := []byte("{ACGT}{A,ACA}{CGT}{T,TG}\n")

	for ext := range codecs {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sample.eds"+ext)

			w, err := OpenWriter(path)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			// File content must not be the raw payload.
			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			require.NotEqual(t, payload, raw)

			r, err := OpenReader(path)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			require.Equal(t, payload, got)
		})
	}
}

func TestOpenReader_Passthrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.eds")
	require.NoError(t, os.WriteFile(path, []byte("{A,C}"), 0o644))

	r, err := OpenReader(path)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, "{A,C}", string(got))
}

func TestOpenReader_Missing(t *testing.T) {
	_, err := OpenReader(filepath.Join(t.TempDir(), "nope.eds.gz"))
	require.Error(t, err)
}
