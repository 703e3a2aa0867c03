// Package ingest converts Multiple Sequence Alignments (FASTA with gaps)
// and VCF+FASTA variant data into EDS or l-EDS text with path provenance.
//
// Both converters are streaming: only the reference sequence (MSA) or a
// single reference region (VCF) is held in memory; other sequence data is
// re-read by seeking, using the line width recorded from the first data
// line.
package ingest

import (
	"log/slog"

	"github.com/varden/eds/internal/options"
)

// Result is the outcome of one ingestion run: EDS text plus its sEDS
// sidecar in canonical flat form, and a statistics record.
type Result struct {
	EDS     string
	Sources string
	Stats   Stats
}

// Stats summarizes one ingestion run. Warnings do not halt ingestion;
// they are counted here and written to the diagnostic logger if one is
// configured.
type Stats struct {
	Sequences int // MSA: aligned sequences read
	Records   int // VCF: data records parsed
	Skipped   int // VCF: records skipped with a warning
	Samples   int // VCF: sample columns
	Groups    int // variant groups (MSA: variant regions)
	Symbols   int // symbols emitted
}

type config struct {
	logger *slog.Logger
}

// Option configures ingestion.
type Option = options.Option[*config]

// WithLogger installs a diagnostic sink for ingestion warnings (e.g.
// unsupported VCF symbolic ALTs). Without it warnings are only counted.
func WithLogger(l *slog.Logger) Option {
	return options.NoError(func(c *config) {
		c.logger = l
	})
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *config) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
