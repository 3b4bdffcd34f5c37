package config

import (
	"log/slog"

	safefeed "github.com/opoint/safefeed-go"
)

// BuildOptions converts parsed configuration into SDK options.
//
// The feed key is not part of the result; pass cfg.Key to [safefeed.New]
// directly. Unset fields produce no option, leaving the SDK defaults (and
// autotuning) in effect.
func BuildOptions(cfg *Config, logger *slog.Logger) []safefeed.Option {
	var opts []safefeed.Option

	if cfg.BaseURL != "" {
		opts = append(opts, safefeed.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Interval != 0 {
		opts = append(opts, safefeed.WithInterval(cfg.Interval.Duration()))
	}
	if cfg.BatchSize != 0 {
		opts = append(opts, safefeed.WithBatchSize(cfg.BatchSize))
	}
	if cfg.ExpectedRate != 0 {
		opts = append(opts, safefeed.WithExpectedRate(cfg.ExpectedRate))
	}
	if cfg.Timeout != 0 {
		opts = append(opts, safefeed.WithTimeout(cfg.Timeout.Duration()))
	}
	if cfg.LastID != nil {
		opts = append(opts, safefeed.WithLastID(*cfg.LastID))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, safefeed.WithUserAgent(cfg.UserAgent))
	}
	if logger != nil {
		opts = append(opts, safefeed.WithLogger(logger))
	}

	return opts
}
