package elastic

import (
	"fmt"
	"io"
	"os"

	"github.com/varden/eds/compress"
	"github.com/varden/eds/errs"
	"github.com/varden/eds/format"
	"github.com/varden/eds/internal/options"
)

type loadConfig struct {
	mode format.StorageMode
}

// LoadOption configures Load and LoadWithSources.
type LoadOption = options.Option[*loadConfig]

// WithStorageMode selects the storage mode for loading. The default is
// StorageFull. StorageMetadataOnly keeps the file handle open for
// on-demand symbol reads and therefore rejects compressed paths.
func WithStorageMode(m format.StorageMode) LoadOption {
	return options.New(func(c *loadConfig) error {
		if m != format.StorageFull && m != format.StorageMetadataOnly {
			return fmt.Errorf("%w: unknown storage mode %d", errs.ErrInvalidArgument, m)
		}
		c.mode = m

		return nil
	})
}

// Load reads an EDS file. Compressed paths (.gz/.zst/.s2/.lz4) are
// decompressed transparently in full mode.
//
// In metadata-only mode the returned EDS owns the open file; callers must
// Close it when done.
func Load(path string, opts ...LoadOption) (*EDS, error) {
	cfg := &loadConfig{mode: format.StorageFull}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if cfg.mode == format.StorageMetadataOnly {
		return loadMetadataOnly(path)
	}

	r, err := compress.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	return Parse(r)
}

// LoadWithSources reads an EDS file and its sEDS sidecar.
func LoadWithSources(edsPath, sedsPath string, opts ...LoadOption) (*EDS, error) {
	e, err := Load(edsPath, opts...)
	if err != nil {
		return nil, err
	}

	sr, err := compress.OpenReader(sedsPath)
	if err != nil {
		if e.closer != nil {
			_ = e.Close()
		}
		return nil, err
	}
	defer func() { _ = sr.Close() }()

	if err := e.LoadSources(sr); err != nil {
		if e.closer != nil {
			_ = e.Close()
		}
		return nil, err
	}

	return e, nil
}

func loadMetadataOnly(path string) (*EDS, error) {
	if compress.IsCompressedPath(path) {
		return nil, fmt.Errorf("%w: metadata-only loading needs a seekable file, %s is compressed",
			errs.ErrModeUnsupported, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: reading %s: %w", errs.ErrIO, path, err)
	}

	res, err := scanText(data, false)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: rewinding %s: %w", errs.ErrIO, path, err)
	}

	e := res.build(format.StorageMetadataOnly)
	e.backing = f
	e.closer = f

	return e, nil
}
