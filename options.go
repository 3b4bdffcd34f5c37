package safefeed

import (
	"errors"
	"log/slog"
	"time"
)

// clientConfig holds mutable state during client construction.
type clientConfig struct {
	interval     time.Duration
	batchSize    int
	expectedRate float64
	timeout      time.Duration
	baseURL      string
	userAgent    string
	lastID       *int64
	logger       *slog.Logger
	observers    []Observer
	transport    Transport
	historySize  int
}

// Option is a function that configures a [Client] during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Note that [WithInterval], [WithBatchSize], and [WithExpectedRate] each
// disable autotuning of all three pacing parameters for the lifetime of the
// client. Keep them unset unless you have a reason not to.
type Option func(*clientConfig) error

// WithInterval fixes the interval between poll attempts.
//
// The interval is ignored while the client is behind. Setting it disables
// autotuning. Defaults to 60 seconds (and from there, whatever autotuning
// derives).
//
// Returns an error if the duration is zero or negative.
func WithInterval(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return errors.New("interval must be positive")
		}
		cfg.interval = d
		return nil
	}
}

// WithBatchSize fixes the number of articles requested per fetch.
//
// Only set this if you have limitations in processing: setting it disables
// autotuning. Defaults to 500.
//
// Returns an error if the size is zero or negative.
func WithBatchSize(n int) Option {
	return func(cfg *clientConfig) error {
		if n <= 0 {
			return errors.New("batch size must be positive")
		}
		cfg.batchSize = n
		return nil
	}
}

// WithExpectedRate seeds the rate estimate with a known production rate, in
// articles per second. Setting it disables autotuning.
//
// Returns an error if the rate is zero or negative.
func WithExpectedRate(rate float64) Option {
	return func(cfg *clientConfig) error {
		if rate <= 0 {
			return errors.New("expected rate must be positive")
		}
		cfg.expectedRate = rate
		return nil
	}
}

// WithTimeout sets the per-fetch timeout. Defaults to 30 seconds.
//
// A timed-out fetch is a failed pull: it surfaces as a [*TransportError] and
// does not count as an observation for rate estimation.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithLastID starts the client at a lastid obtained from a previous
// response. 0 starts from the oldest article still in the feed. When not
// set, the client starts at the current newest article.
func WithLastID(id int64) Option {
	return func(cfg *clientConfig) error {
		cfg.lastID = &id
		return nil
	}
}

// WithBaseURL overrides the feed base URL. Defaults to the production
// safefeed endpoint.
//
// Returns an error if the URL is empty.
func WithBaseURL(rawURL string) Option {
	return func(cfg *clientConfig) error {
		if rawURL == "" {
			return errors.New("base URL cannot be empty")
		}
		cfg.baseURL = rawURL
		return nil
	}
}

// WithUserAgent sets the User-Agent header sent by the default transport.
func WithUserAgent(ua string) Option {
	return func(cfg *clientConfig) error {
		cfg.userAgent = ua
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the client.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithObserver registers a function to be called with a [CycleStats]
// snapshot after every poll cycle.
//
// Multiple observers may be registered by calling WithObserver multiple
// times; they execute in registration order. Observers must be
// non-blocking. Panics within observers are recovered and logged; they do
// not crash the client.
//
// Nil observers are silently ignored.
func WithObserver(o Observer) Option {
	return func(cfg *clientConfig) error {
		if o == nil {
			return nil // no-op for nil observer (safe to call)
		}
		cfg.observers = append(cfg.observers, o)
		return nil
	}
}

// WithTransport injects a custom [Transport] in place of the default HTTP
// one. The caller owns the transport's lifecycle; [Client.Close] does not
// touch it.
//
// Returns an error if the transport is nil.
func WithTransport(t Transport) Option {
	return func(cfg *clientConfig) error {
		if t == nil {
			return errors.New("transport cannot be nil")
		}
		cfg.transport = t
		return nil
	}
}

// WithHistorySize sets how many recent cycles [Client.History] retains.
// Defaults to 64.
//
// Returns an error if the size is zero or negative.
func WithHistorySize(n int) Option {
	return func(cfg *clientConfig) error {
		if n <= 0 {
			return errors.New("history size must be positive")
		}
		cfg.historySize = n
		return nil
	}
}
