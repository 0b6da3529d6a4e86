// internal/workers/matching/find-best-matches/config.go
package findbestmatches

import (
	"time"

	"matching-workers/internal/common/config"
	"matching-workers/internal/matching"
)

type Config struct {
	Timeout  time.Duration
	Defaults matching.Options
}

func LoadConfig(m config.MatchingConfig, w config.WorkerConfig) *Config {
	cfg := &Config{
		Timeout: config.GetDuration(w.Timeout),
		Defaults: matching.Options{
			MinimumScore: m.MinimumScore,
			MaxResults:   m.MaxResults,
			Concurrency:  m.Concurrency,
		},
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Defaults.MaxResults <= 0 {
		cfg.Defaults.MaxResults = matching.DefaultMaxResults
	}
	return cfg
}
