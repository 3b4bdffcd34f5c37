package ratecontrol

import (
	"math"
	"time"
)

const (
	// defaultInterval is used until autotuning derives a better value.
	defaultInterval = 60 * time.Second

	// defaultBatchSize is the number of articles requested per fetch until
	// autotuning derives a better value.
	defaultBatchSize = 500

	// defaultRate seeds the moving average on the very first observation.
	// It also guarantees the rate is never zero entering the square root.
	defaultRate = 40.0

	// emaWeight is the smoothing factor of the rate estimate. Small enough
	// to damp per-batch variance while still tracking slow drift in volume.
	emaWeight = 0.1

	// maxInterval caps the derived interval so a near-silent feed is still
	// polled at least every 15 minutes.
	maxInterval = 900 * time.Second

	// minBatchSize floors the derived batch size so the client always makes
	// forward progress, even at near-zero rates.
	minBatchSize = 50.0

	// behindFraction is the share of the requested batch size above which a
	// batch implies the server is holding back more articles than requested.
	behindFraction = 0.95
)

// Tuning holds the three tunable polling parameters and the autotuning rule.
//
// When none of the parameters are supplied at construction, Tuning
// continuously derives all three from observed traffic. Supplying any one of
// them disables autotuning for the lifetime of the value: [Tuning.Update]
// then never mutates anything.
type Tuning struct {
	interval     time.Duration
	batchSize    float64
	expectedRate float64 // <= 0 means no estimate yet
	autoconfig   bool
}

// NewTuning creates a [Tuning] from the caller-supplied overrides.
//
// A zero interval, batchSize, or expectedRate means "not supplied"; defaults
// are 60s and 500 articles. Autotuning is enabled only when all three are
// zero.
func NewTuning(interval time.Duration, batchSize int, expectedRate float64) *Tuning {
	t := &Tuning{
		interval:   defaultInterval,
		batchSize:  defaultBatchSize,
		autoconfig: interval == 0 && batchSize == 0 && expectedRate == 0,
	}
	if interval > 0 {
		t.interval = interval
	}
	if batchSize > 0 {
		t.batchSize = float64(batchSize)
	}
	if expectedRate > 0 {
		t.expectedRate = expectedRate
	}
	return t
}

// Interval returns the current pacing interval between poll attempts.
func (t *Tuning) Interval() time.Duration {
	return t.interval
}

// BatchSize returns the current batch size as a real number. The behind
// threshold is computed against this unrounded value.
func (t *Tuning) BatchSize() float64 {
	return t.batchSize
}

// RequestSize returns the batch size to put on the wire.
func (t *Tuning) RequestSize() int {
	return int(t.batchSize)
}

// ExpectedRate returns the current estimate of articles per second, or 0 if
// no estimate has been made yet.
func (t *Tuning) ExpectedRate() float64 {
	return t.expectedRate
}

// Autoconfig reports whether the parameters are derived from observed
// traffic rather than fixed by the caller.
func (t *Tuning) Autoconfig() bool {
	return t.autoconfig
}

// Behind reports whether a batch of observed articles nearly filled a
// request of batchSize articles, implying the consumer is not keeping pace
// with the feed. The comparison is strict: exactly 95% is not behind.
func Behind(observed int, batchSize float64) bool {
	return float64(observed) > batchSize*behindFraction
}

// Update folds one successfully ingested batch into the rate estimate and
// re-derives the interval and batch size from it.
//
// observed is the number of articles in the batch; serverRate is the
// feed-reported production rate, or 0 when the response carried none. A
// positive serverRate is preferred over the client's own estimate.
//
// Update is a no-op when autotuning is disabled, and also when the batch
// indicates the client is behind: a backlog-draining batch says nothing
// about the steady-state production rate.
func (t *Tuning) Update(observed int, serverRate float64) {
	if !t.autoconfig || Behind(observed, t.batchSize) {
		return
	}

	sample := serverRate
	if sample <= 0 {
		switch {
		case observed > 0:
			sample = float64(observed) / t.interval.Seconds()
		case t.expectedRate > 0:
			sample = t.expectedRate
		default:
			sample = defaultRate
		}
	}

	prev := t.expectedRate
	if prev <= 0 {
		prev = defaultRate
	}
	t.expectedRate = (1-emaWeight)*prev + emaWeight*sample

	interval := 60 / math.Sqrt(t.expectedRate)
	t.interval = min(time.Duration(interval*float64(time.Second)), maxInterval)
	t.batchSize = max(120*math.Sqrt(t.expectedRate), minBatchSize)
}
