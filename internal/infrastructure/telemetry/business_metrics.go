package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when business metrics are built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// BusinessMetrics tracks receipts, collections, the overdue sweep and
// bulk imports.
type BusinessMetrics struct {
	logger *zap.Logger

	receiptsIssued  *Counter
	amountCollected *FloatCounter
	excessDiscarded *FloatCounter
	receiptDuration *Histogram
	partialFailures *Counter
	entriesOverdue  *Counter
	importRows      *Counter
	importDuration  *Histogram
}

// NewBusinessMetrics registers the business instruments on meter
func NewBusinessMetrics(meter metric.Meter, logger *zap.Logger) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{logger: logger}
	var err error

	if bm.receiptsIssued, err = NewCounter(meter, "receipts_issued_total",
		"Receipts issued against estate entries", "{receipt}"); err != nil {
		return nil, err
	}
	if bm.amountCollected, err = NewFloatCounter(meter, "payments_collected_amount_total",
		"Payment amount applied to estate entries", "{currency}"); err != nil {
		return nil, err
	}
	if bm.excessDiscarded, err = NewFloatCounter(meter, "payments_excess_amount_total",
		"Payment amount discarded because it exceeded the outstanding balance", "{currency}"); err != nil {
		return nil, err
	}
	if bm.receiptDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "receipt_issue_duration_seconds",
		Description: "Time spent issuing a receipt",
		Unit:        "s",
		Boundaries:  DurationBuckets,
	}); err != nil {
		return nil, err
	}
	if bm.partialFailures, err = NewCounter(meter, "receipt_partial_completion_total",
		"Receipts whose entry was updated but whose invoice could not be stored", "{receipt}"); err != nil {
		return nil, err
	}
	if bm.entriesOverdue, err = NewCounter(meter, "entries_marked_overdue_total",
		"Estate entries relabelled Overdue by the sweep", "{entry}"); err != nil {
		return nil, err
	}
	if bm.importRows, err = NewCounter(meter, "entry_import_rows_total",
		"Rows processed by the estate entry import", "{row}"); err != nil {
		return nil, err
	}
	if bm.importDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "entry_import_duration_seconds",
		Description: "Time spent importing an entry file",
		Unit:        "s",
		Boundaries:  DurationBuckets,
	}); err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordReceipt records one issued receipt
func (bm *BusinessMetrics) RecordReceipt(ctx context.Context, status string, applied, excess decimal.Decimal, elapsed time.Duration) {
	clamped := excess.IsPositive()
	bm.receiptsIssued.Inc(ctx, AttrPaymentStatus.String(status), AttrClamped.Bool(clamped))
	bm.amountCollected.Add(ctx, applied.InexactFloat64(), AttrPaymentStatus.String(status))
	if clamped {
		bm.excessDiscarded.Add(ctx, excess.InexactFloat64())
	}
	bm.receiptDuration.RecordDuration(ctx, elapsed)
}

// RecordPartialCompletion counts a receipt that left the entry updated
// without an invoice
func (bm *BusinessMetrics) RecordPartialCompletion(ctx context.Context) {
	bm.partialFailures.Inc(ctx)
}

// RecordOverdueSweep counts entries relabelled by one sweep
func (bm *BusinessMetrics) RecordOverdueSweep(ctx context.Context, marked int) {
	if marked <= 0 {
		return
	}
	bm.entriesOverdue.Add(ctx, int64(marked))
}

// RecordImport records the outcome of one import run
func (bm *BusinessMetrics) RecordImport(ctx context.Context, format string, imported, failed int, elapsed time.Duration) {
	bm.importRows.Add(ctx, int64(imported), AttrImportFormat.String(format), AttrOutcome.String("imported"))
	bm.importRows.Add(ctx, int64(failed), AttrImportFormat.String(format), AttrOutcome.String("failed"))
	bm.importDuration.RecordDuration(ctx, elapsed, AttrImportFormat.String(format))
}
