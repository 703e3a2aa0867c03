package elastic

import (
	"fmt"
	"io"

	"github.com/varden/eds/errs"
	"github.com/varden/eds/format"
	"github.com/varden/eds/internal/pool"
	"github.com/varden/eds/source"
)

// Save writes the EDS text to w in the requested output format, followed
// by a newline. Requires StorageFull.
func (e *EDS) Save(w io.Writer, of format.OutputFormat) error {
	if err := e.write(w, of); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("%w: writing EDS: %w", errs.ErrIO, err)
	}

	return nil
}

// Text renders the EDS in the requested output format without a trailing
// newline. Requires StorageFull.
func (e *EDS) Text(of format.OutputFormat) (string, error) {
	bb := pool.GetTextBuffer()
	defer pool.PutTextBuffer(bb)

	if err := e.write(bb, of); err != nil {
		return "", err
	}

	return bb.String(), nil
}

func (e *EDS) write(w io.Writer, of format.OutputFormat) error {
	if e.mode != format.StorageFull {
		return fmt.Errorf("%w: Save requires %s storage", errs.ErrModeUnsupported, format.StorageFull)
	}

	bb := pool.GetTextBuffer()
	defer pool.PutTextBuffer(bb)

	for i, sym := range e.sets {
		brackets := of == format.FormatFull || e.meta.IsDegenerate[i]
		if brackets {
			_ = bb.WriteByte(format.SetOpen)
		}
		for j, alt := range sym {
			if j > 0 {
				_ = bb.WriteByte(format.SetSeparator)
			}
			_, _ = bb.WriteString(alt)
		}
		if brackets {
			_ = bb.WriteByte(format.SetClose)
		}
	}

	if _, err := bb.WriteTo(w); err != nil {
		return fmt.Errorf("%w: writing EDS: %w", errs.ErrIO, err)
	}

	return nil
}

// SaveSources writes the attached sources in the flat sEDS form. It fails
// with ErrInvalidArgument when no sources are attached.
func (e *EDS) SaveSources(w io.Writer) error {
	if e.sources == nil {
		return fmt.Errorf("%w: no sources attached", errs.ErrInvalidArgument)
	}

	return source.Write(w, e.sources)
}
