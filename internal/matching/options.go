package matching

import (
	"fmt"
	"math"

	"matching-workers/internal/common/errors"
)

const (
	DefaultMinimumScore = 0.4
	DefaultMaxResults   = 20
)

// Options tune a single FindBestMatches call. Concurrency 0 means
// GOMAXPROCS.
type Options struct {
	MinimumScore float64 `json:"minimumScore"`
	MaxResults   int     `json:"maxResults"`
	Concurrency  int     `json:"concurrency,omitempty"`
}

func DefaultOptions() Options {
	return Options{
		MinimumScore: DefaultMinimumScore,
		MaxResults:   DefaultMaxResults,
	}
}

func (o Options) Validate() error {
	if math.IsNaN(o.MinimumScore) || o.MinimumScore < 0 || o.MinimumScore > 1 {
		return errors.NewInvalidOptionsError(fmt.Sprintf("minimumScore must be within [0,1], got %v", o.MinimumScore))
	}
	if o.MaxResults < 1 {
		return errors.NewInvalidOptionsError(fmt.Sprintf("maxResults must be at least 1, got %d", o.MaxResults))
	}
	if o.Concurrency < 0 {
		return errors.NewInvalidOptionsError(fmt.Sprintf("concurrency must not be negative, got %d", o.Concurrency))
	}
	return nil
}
