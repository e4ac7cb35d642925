package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Outcomes recorded on ledger_computations_total.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// LedgerMetrics records ledger computation counts, shortfall rows and latency.
type LedgerMetrics struct {
	computations  *Counter
	shortfallRows *Counter
	duration      *Histogram
}

// NewLedgerMetrics registers the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	computations, err := NewCounter(meter,
		"ledger_computations_total",
		"Number of product ledger computations by outcome",
		"{computation}",
	)
	if err != nil {
		return nil, err
	}

	shortfallRows, err := NewCounter(meter,
		"ledger_shortfall_rows_total",
		"Number of sale rows emitted without matching stock",
		"{row}",
	)
	if err != nil {
		return nil, err
	}

	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "ledger_compute_duration_seconds",
		Description: "Time to fetch sources and reconstruct a product ledger",
		Unit:        "s",
		Boundaries:  ComputeDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &LedgerMetrics{
		computations:  computations,
		shortfallRows: shortfallRows,
		duration:      duration,
	}, nil
}

// RecordComputation records one computation with its outcome and elapsed time
func (m *LedgerMetrics) RecordComputation(ctx context.Context, policy, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrReturnPolicy.String(policy), AttrOutcome.String(outcome)}
	m.computations.Inc(ctx, attrs...)
	m.duration.RecordDuration(ctx, elapsed, attrs...)
}

// RecordShortfall adds n shortfall rows
func (m *LedgerMetrics) RecordShortfall(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.shortfallRows.Add(ctx, int64(n))
}
