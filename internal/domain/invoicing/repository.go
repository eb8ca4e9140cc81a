package invoicing

import (
	"context"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceFilter narrows invoice queries
type InvoiceFilter struct {
	shared.Filter
	ClientID   *uuid.UUID
	EstateID   *uuid.UUID
	EntryID    *uuid.UUID
	Status     *property.PaymentStatus
	IssuedFrom *time.Time
	IssuedTo   *time.Time
}

// InvoiceRepository persists invoices together with their items
type InvoiceRepository interface {
	// Create stores a new invoice, assigning its ID, number and timestamps,
	// and returns the stored invoice
	Create(ctx context.Context, invoice *Invoice) (*Invoice, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, int64, error)
	// Save updates the header fields of an existing invoice; items are not
	// rewritten
	Save(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error)
}

// NumberGenerator hands out human readable invoice numbers
type NumberGenerator interface {
	Next() string
}
