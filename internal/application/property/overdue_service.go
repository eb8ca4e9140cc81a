package property

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"go.uber.org/zap"
)

// SweepRecorder receives the outcome of overdue sweeps
type SweepRecorder interface {
	RecordOverdueSweep(ctx context.Context, marked int)
}

// OverdueService relabels entries whose next due date has passed
type OverdueService struct {
	entryRepo property.EstateEntryRepository
	recorder  SweepRecorder
	logger    *zap.Logger
}

// NewOverdueService creates a new OverdueService. recorder may be nil.
func NewOverdueService(entryRepo property.EstateEntryRepository, recorder SweepRecorder, logger *zap.Logger) *OverdueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverdueService{
		entryRepo: entryRepo,
		recorder:  recorder,
		logger:    logger,
	}
}

// MarkOverdue sets Overdue on every Pending or Partial entry whose next due
// date is before asOf. An entry paid off after it was selected is skipped.
// A failed update is logged and counted; the sweep carries on with the
// remaining entries.
func (s *OverdueService) MarkOverdue(ctx context.Context, asOf time.Time) (*OverdueSweepResult, error) {
	candidates, err := s.entryRepo.FindOverdueCandidates(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to find overdue candidates: %w", err)
	}

	result := &OverdueSweepResult{AsOf: asOf, Checked: len(candidates)}
	overdue := property.PaymentStatusOverdue

	for i := range candidates {
		entry := &candidates[i]
		if !entry.MarkOverdue(asOf) {
			continue
		}
		update := property.EntryUpdate{PaymentStatus: &overdue, Unsettled: true}
		if _, err := s.entryRepo.Update(ctx, entry.EstateID, entry.ID, update); err != nil {
			if errors.Is(err, property.ErrEntryChanged) {
				result.Skipped++
				continue
			}
			result.Failed++
			s.logger.Error("Failed to mark entry overdue",
				zap.String("entry_id", entry.ID.String()),
				zap.String("estate_id", entry.EstateID.String()),
				zap.Error(err),
			)
			continue
		}
		result.Marked++
		result.EntryIDs = append(result.EntryIDs, entry.ID)
	}

	if result.Marked > 0 || result.Skipped > 0 || result.Failed > 0 {
		s.logger.Info("Overdue sweep finished",
			zap.Int("checked", result.Checked),
			zap.Int("marked", result.Marked),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed),
		)
	}
	if s.recorder != nil {
		s.recorder.RecordOverdueSweep(ctx, result.Marked)
	}
	return result, nil
}
