package scheduler

import (
	"context"
	"time"

	propertyapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/property"
	"go.uber.org/zap"
)

// OverdueMarker is the overdue sweep the trigger drives
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, asOf time.Time) (*propertyapp.OverdueSweepResult, error)
}

// NewOverdueSweepTrigger relabels overdue entries every interval
func NewOverdueSweepTrigger(marker OverdueMarker, interval time.Duration, logger *zap.Logger) (*PeriodicTrigger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	task := func(ctx context.Context, now time.Time) error {
		result, err := marker.MarkOverdue(ctx, now)
		if err != nil {
			return err
		}
		if result.Marked > 0 || result.Skipped > 0 || result.Failed > 0 {
			logger.Info("Overdue sweep finished",
				zap.Int("checked", result.Checked),
				zap.Int("marked", result.Marked),
				zap.Int("skipped", result.Skipped),
				zap.Int("failed", result.Failed),
			)
		}
		return nil
	}
	return NewPeriodicTrigger(Config{
		Name:       "overdue_sweep",
		Interval:   interval,
		RunOnStart: true,
	}, task, logger)
}
