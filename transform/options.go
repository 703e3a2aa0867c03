package transform

import (
	"fmt"

	"github.com/varden/eds/errs"
	"github.com/varden/eds/internal/options"
)

type config struct {
	workers       int
	maxIterations int
}

// Option configures the l-EDS drivers.
type Option = options.Option[*config]

func newConfig(opts []Option) (*config, error) {
	cfg := &config{
		workers:       Workers(),
		maxIterations: DefaultMaxIterations,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithWorkers bounds the merge pool. One worker makes each iteration
// fully sequential; the result is identical either way.
func WithWorkers(n int) Option {
	return options.New(func(c *config) error {
		if n < 1 {
			return fmt.Errorf("%w: workers must be >= 1", errs.ErrInvalidArgument)
		}
		c.workers = n

		return nil
	})
}

// WithMaxIterations overrides the fixed-point iteration cap.
func WithMaxIterations(n int) Option {
	return options.New(func(c *config) error {
		if n < 1 {
			return fmt.Errorf("%w: max iterations must be >= 1", errs.ErrInvalidArgument)
		}
		c.maxIterations = n

		return nil
	})
}
