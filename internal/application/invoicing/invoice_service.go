package invoicing

import (
	"context"
	"fmt"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/invoicing"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceService manages stored invoices and manual invoice entry
type InvoiceService struct {
	invoiceRepo invoicing.InvoiceRepository
	clientRepo  property.ClientRepository
	estateRepo  property.EstateRepository
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo invoicing.InvoiceRepository,
	clientRepo property.ClientRepository,
	estateRepo property.EstateRepository,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		estateRepo:  estateRepo,
	}
}

// Create stores a manually entered invoice
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if req.ClientID != nil {
		if _, err := s.clientRepo.FindByID(ctx, *req.ClientID); err != nil {
			if shared.ErrNotFound.Is(err) {
				return nil, shared.NewValidationError(CodeInvalidClient, "Client does not exist")
			}
			return nil, err
		}
	}
	if req.EstateID != nil {
		if _, err := s.estateRepo.FindByID(ctx, *req.EstateID); err != nil {
			if shared.ErrNotFound.Is(err) {
				return nil, shared.NewValidationError(CodeInvalidEstate, "Estate does not exist")
			}
			return nil, err
		}
	}

	items := make([]invoicing.InvoiceItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, invoicing.InvoiceItem{
			Description:   item.Description,
			Amount:        item.Amount,
			EstateEntryID: item.EstateEntryID,
			PlotDetails:   item.PlotDetails,
		})
	}

	details := invoicing.InvoiceDetails{
		ClientID:   req.ClientID,
		EstateID:   req.EstateID,
		Amount:     req.Amount,
		AmountPaid: req.AmountPaid,
		DueDate:    req.DueDate,
		Notes:      req.Notes,
		Items:      items,
	}
	if req.IssuedDate != nil {
		details.IssuedDate = *req.IssuedDate
	}
	if req.IssuedBy != uuid.Nil {
		issuedBy := req.IssuedBy
		details.IssuedBy = &issuedBy
	}

	invoice, err := invoicing.NewInvoice(details)
	if err != nil {
		return nil, err
	}

	stored, err := s.invoiceRepo.Create(ctx, invoice)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	response := ToInvoiceResponse(stored)
	return &response, nil
}

// GetByID retrieves an invoice with its items
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// List retrieves invoices matching the filter
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	invoices, total, err := s.invoiceRepo.FindAll(ctx, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	return ToInvoiceResponses(invoices), total, nil
}

// Update changes the notes and due date of an invoice
func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	notes := invoice.Notes
	if req.Notes != nil {
		notes = *req.Notes
	}
	dueDate := invoice.DueDate
	if req.DueDate != nil {
		dueDate = req.DueDate
	}
	if req.ClearDueDate {
		dueDate = nil
	}
	invoice.UpdateDetails(notes, dueDate)

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Delete removes an invoice and its items
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.invoiceRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.invoiceRepo.Delete(ctx, id)
}
