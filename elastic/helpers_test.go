package elastic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/varden/eds/format"
)

// mustLoadMetadataOnly writes text to a scratch file and loads it in
// metadata-only mode.
func mustLoadMetadataOnly(t *testing.T, text string) *EDS {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scratch.eds")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	e, err := Load(path, WithStorageMode(format.StorageMetadataOnly))
	require.NoError(t, err)

	return e
}
