package invoicing

import (
	"time"

	propertyapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/invoicing"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Receipt DTOs
// =============================================================================

// IssueReceiptRequest records a payment against an estate entry
type IssueReceiptRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Notes  string          `json:"notes" binding:"max=1000"`
	// IssuedBy is taken from the authenticated user
	IssuedBy uuid.UUID `json:"-"`
}

// ReceiptResult reports the stored invoice together with the entry after
// the payment. ActualPayment is lower than RequestedPayment when the
// request exceeded the outstanding balance.
type ReceiptResult struct {
	Invoice          InvoiceResponse           `json:"invoice"`
	Entry            propertyapp.EntryResponse `json:"entry"`
	RequestedPayment decimal.Decimal           `json:"requested_payment"`
	ActualPayment    decimal.Decimal           `json:"actual_payment"`
	Excess           decimal.Decimal           `json:"excess"`
}

// =============================================================================
// Invoice DTOs
// =============================================================================

// InvoiceItemRequest is one line of a manually created invoice
type InvoiceItemRequest struct {
	Description   string          `json:"description" binding:"required,min=1,max=500"`
	Amount        decimal.Decimal `json:"amount"`
	EstateEntryID *uuid.UUID      `json:"estate_entry_id"`
	PlotDetails   string          `json:"plot_details" binding:"max=500"`
}

// CreateInvoiceRequest creates an invoice outside of payment reconciliation
type CreateInvoiceRequest struct {
	ClientID   *uuid.UUID           `json:"client_id"`
	EstateID   *uuid.UUID           `json:"estate_id"`
	Amount     decimal.Decimal      `json:"amount" binding:"required"`
	AmountPaid decimal.Decimal      `json:"amount_paid"`
	IssuedDate *time.Time           `json:"issued_date"`
	DueDate    *time.Time           `json:"due_date"`
	Notes      string               `json:"notes" binding:"max=1000"`
	Items      []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	IssuedBy   uuid.UUID            `json:"-"`
}

// UpdateInvoiceRequest edits the mutable fields of an invoice
type UpdateInvoiceRequest struct {
	Notes        *string    `json:"notes" binding:"omitempty,max=1000"`
	DueDate      *time.Time `json:"due_date"`
	ClearDueDate bool       `json:"clear_due_date"`
}

// InvoiceListFilter narrows invoice listings
type InvoiceListFilter struct {
	Search     string     `form:"search"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=500"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	ClientID   string     `form:"client_id" binding:"omitempty,uuid"`
	EstateID   string     `form:"estate_id" binding:"omitempty,uuid"`
	EntryID    string     `form:"entry_id" binding:"omitempty,uuid"`
	Status     string     `form:"status" binding:"omitempty,oneof=Paid Partial Pending Overdue"`
	IssuedFrom *time.Time `form:"issued_from" time_format:"2006-01-02"`
	IssuedTo   *time.Time `form:"issued_to" time_format:"2006-01-02"`
}

func (f InvoiceListFilter) toDomain() invoicing.InvoiceFilter {
	filter := invoicing.InvoiceFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   f.Search,
		}.Normalize(),
		IssuedFrom: f.IssuedFrom,
		IssuedTo:   f.IssuedTo,
	}
	if id, err := uuid.Parse(f.ClientID); err == nil {
		filter.ClientID = &id
	}
	if id, err := uuid.Parse(f.EstateID); err == nil {
		filter.EstateID = &id
	}
	if id, err := uuid.Parse(f.EntryID); err == nil {
		filter.EntryID = &id
	}
	if f.Status != "" {
		status := property.PaymentStatus(f.Status)
		filter.Status = &status
	}
	return filter
}

// InvoiceItemResponse is the API view of an invoice line
type InvoiceItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	EstateEntryID *uuid.UUID      `json:"estate_entry_id,omitempty"`
	PlotDetails   string          `json:"plot_details,omitempty"`
}

// EntrySnapshotResponse is the entry state captured by a receipt
type EntrySnapshotResponse struct {
	EntryID     uuid.UUID       `json:"entry_id"`
	ClientName  string          `json:"client_name,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	Balance     decimal.Decimal `json:"balance"`
	Status      string          `json:"status"`
	PlotNumbers []string        `json:"plot_numbers"`
}

// InvoiceResponse is the API view of an invoice
type InvoiceResponse struct {
	ID         uuid.UUID              `json:"id"`
	Number     string                 `json:"number"`
	ClientID   *uuid.UUID             `json:"client_id,omitempty"`
	EstateID   *uuid.UUID             `json:"estate_id,omitempty"`
	Amount     decimal.Decimal        `json:"amount"`
	AmountPaid decimal.Decimal        `json:"amount_paid"`
	Status     string                 `json:"status"`
	IssuedDate time.Time              `json:"issued_date"`
	DueDate    *time.Time             `json:"due_date,omitempty"`
	Notes      string                 `json:"notes,omitempty"`
	IssuedBy   *uuid.UUID             `json:"issued_by,omitempty"`
	Items      []InvoiceItemResponse  `json:"items"`
	Snapshot   *EntrySnapshotResponse `json:"entry_snapshot,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// ToInvoiceResponse maps a domain invoice to its API view
func ToInvoiceResponse(inv *invoicing.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, InvoiceItemResponse{
			ID:            item.ID,
			Description:   item.Description,
			Amount:        item.Amount,
			EstateEntryID: item.EstateEntryID,
			PlotDetails:   item.PlotDetails,
		})
	}

	resp := InvoiceResponse{
		ID:         inv.ID,
		Number:     inv.Number,
		ClientID:   inv.ClientID,
		EstateID:   inv.EstateID,
		Amount:     inv.Amount,
		AmountPaid: inv.AmountPaid,
		Status:     inv.Status.String(),
		IssuedDate: inv.IssuedDate,
		DueDate:    inv.DueDate,
		Notes:      inv.Notes,
		IssuedBy:   inv.IssuedBy,
		Items:      items,
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
	}
	if s := inv.EntrySnapshot; s != nil {
		resp.Snapshot = &EntrySnapshotResponse{
			EntryID:     s.EntryID,
			ClientName:  s.ClientName,
			Amount:      s.Amount,
			AmountPaid:  s.AmountPaid,
			Balance:     s.Balance(),
			Status:      s.Status.String(),
			PlotNumbers: s.PlotNumbers,
		}
	}
	return resp
}

// ToInvoiceResponses maps a slice of invoices
func ToInvoiceResponses(invoices []invoicing.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out
}

// ArchiveResponse points at an archived receipt document
type ArchiveResponse struct {
	InvoiceID   uuid.UUID `json:"invoice_id"`
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
