package invoicing

import (
	"context"
	"time"

	propertyapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/invoicing"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReceiptService reconciles payments against estate entries and issues a
// receipt invoice for every applied payment
type ReceiptService struct {
	entryRepo      property.EstateEntryRepository
	invoiceRepo    invoicing.InvoiceRepository
	eventPublisher shared.EventPublisher
	metrics        ReceiptRecorder
	logger         *zap.Logger
	now            func() time.Time
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(
	entryRepo property.EstateEntryRepository,
	invoiceRepo invoicing.InvoiceRepository,
	logger *zap.Logger,
) *ReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptService{
		entryRepo:   entryRepo,
		invoiceRepo: invoiceRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the publisher for ReceiptIssued events
func (s *ReceiptService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *ReceiptService) SetMetrics(recorder ReceiptRecorder) {
	s.metrics = recorder
}

// IssueReceipt applies a payment to an entry and records it as an invoice.
//
// The payment is clamped to the outstanding balance; the discarded excess is
// reported in the result. The entry is written before the invoice. When the
// invoice write fails the entry keeps the payment and a
// *PartialCompletionError is returned.
func (s *ReceiptService) IssueReceipt(
	ctx context.Context,
	estateID, entryID uuid.UUID,
	req IssueReceiptRequest,
) (*ReceiptResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "issue")
	defer span.End()
	start := time.Now()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrEstateID, estateID.String(),
		telemetry.SpanAttrEntryID, entryID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	entry, err := s.entryRepo.FindByID(ctx, estateID, entryID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	payment, err := entry.ApplyPayment(req.Amount)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	stored, err := s.entryRepo.Update(ctx, estateID, entryID, property.EntryUpdate{
		AmountPaid:    &payment.NewPaid,
		PaymentStatus: &payment.NewStatus,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	receipt := invoicing.NewReceipt(stored, payment, req.Notes, s.now())
	receipt.SetIssuedBy(req.IssuedBy)

	invoice, err := s.invoiceRepo.Create(ctx, receipt)
	if err != nil {
		partial := &PartialCompletionError{
			EstateID:      estateID,
			EntryID:       entryID,
			AppliedAmount: payment.Applied,
			Err:           err,
		}
		telemetry.RecordError(span, partial)
		s.logger.Error("Receipt invoice not stored after entry update",
			zap.String("estate_id", estateID.String()),
			zap.String("entry_id", entryID.String()),
			zap.String("applied", payment.Applied.String()),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.RecordPartialCompletion(ctx)
		}
		return nil, partial
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, invoice.ID.String(),
		telemetry.SpanAttrInvoiceNumber, invoice.Number,
		telemetry.SpanAttrApplied, payment.Applied.String(),
		telemetry.SpanAttrStatus, payment.NewStatus.String(),
	)
	if payment.WasClamped() {
		telemetry.AddEvent(span, "payment_clamped", "excess", payment.Excess().String())
		s.logger.Info("Payment exceeded outstanding balance",
			zap.String("entry_id", entryID.String()),
			zap.String("requested", payment.Requested.String()),
			zap.String("applied", payment.Applied.String()),
		)
	}

	invoice.RecordIssued(estateID, entryID, payment.Requested)
	s.publish(ctx, invoice.PullDomainEvents()...)
	if s.metrics != nil {
		s.metrics.RecordReceipt(ctx, payment.NewStatus.String(), payment.Applied, payment.Excess(), time.Since(start))
	}
	telemetry.SetOK(span)

	return &ReceiptResult{
		Invoice:          ToInvoiceResponse(invoice),
		Entry:            propertyapp.ToEntryResponse(stored),
		RequestedPayment: payment.Requested,
		ActualPayment:    payment.Applied,
		Excess:           payment.Excess(),
	}, nil
}

// publish hands the events to the bus. A failing handler never undoes a
// stored receipt, so errors are only logged.
func (s *ReceiptService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish receipt events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}
