package invoicing

import (
	"context"
	"fmt"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/invoicing"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReceiptArchiver archives a freshly issued receipt
type ReceiptArchiver interface {
	Archive(ctx context.Context, invoiceID uuid.UUID) (*ArchiveResponse, error)
}

// ArchiveOnIssueHandler archives every receipt as soon as it is issued
type ArchiveOnIssueHandler struct {
	archiver ReceiptArchiver
	logger   *zap.Logger
}

// NewArchiveOnIssueHandler creates a new ArchiveOnIssueHandler
func NewArchiveOnIssueHandler(archiver ReceiptArchiver, logger *zap.Logger) *ArchiveOnIssueHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveOnIssueHandler{archiver: archiver, logger: logger}
}

// EventTypes implements shared.EventHandler
func (h *ArchiveOnIssueHandler) EventTypes() []string {
	return []string{invoicing.EventTypeReceiptIssued}
}

// Handle implements shared.EventHandler
func (h *ArchiveOnIssueHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	issued, ok := event.(*invoicing.ReceiptIssuedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, invoicing.EventTypeReceiptIssued)
	}
	archived, err := h.archiver.Archive(ctx, issued.InvoiceID)
	if err != nil {
		return fmt.Errorf("failed to archive receipt %s: %w", issued.InvoiceNumber, err)
	}
	h.logger.Debug("Archived issued receipt",
		zap.String("invoice_number", issued.InvoiceNumber),
		zap.String("key", archived.Key),
	)
	return nil
}

var _ shared.EventHandler = (*ArchiveOnIssueHandler)(nil)
