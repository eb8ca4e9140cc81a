package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/invoicing"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// ErrInjected is returned by InvoiceStore.Create after FailNextCreate
var ErrInjected = errors.New("injected invoice store failure")

// InvoiceStore implements invoicing.InvoiceRepository in memory
type InvoiceStore struct {
	mu       sync.RWMutex
	invoices map[uuid.UUID]invoicing.Invoice
	numbers  invoicing.NumberGenerator
	failNext error
}

// NewInvoiceStore creates an empty invoice store numbering with numbers
func NewInvoiceStore(numbers invoicing.NumberGenerator) *InvoiceStore {
	return &InvoiceStore{
		invoices: make(map[uuid.UUID]invoicing.Invoice),
		numbers:  numbers,
	}
}

// FailNextCreate makes the next Create return err (ErrInjected when nil)
func (s *InvoiceStore) FailNextCreate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	s.failNext = err
}

func cloneInvoice(inv invoicing.Invoice) invoicing.Invoice {
	inv.Items = append([]invoicing.InvoiceItem{}, inv.Items...)
	if inv.DueDate != nil {
		d := *inv.DueDate
		inv.DueDate = &d
	}
	if inv.EntrySnapshot != nil {
		snap := *inv.EntrySnapshot
		snap.PlotNumbers = append([]string{}, snap.PlotNumbers...)
		inv.EntrySnapshot = &snap
	}
	inv.ClearDomainEvents()
	return inv
}

func (s *InvoiceStore) Create(_ context.Context, invoice *invoicing.Invoice) (*invoicing.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return nil, err
	}

	inv := cloneInvoice(*invoice)
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.Number == "" {
		inv.Number = s.numbers.Next()
	}
	stamp(&inv.BaseEntity)
	for i := range inv.Items {
		if inv.Items[i].ID == uuid.Nil {
			inv.Items[i].ID = uuid.New()
		}
	}
	s.invoices[inv.ID] = inv

	out := cloneInvoice(inv)
	return &out, nil
}

func (s *InvoiceStore) FindByID(_ context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, shared.NewNotFoundError("invoice", id)
	}
	inv = cloneInvoice(inv)
	return &inv, nil
}

func (s *InvoiceStore) FindAll(_ context.Context, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := make([]invoicing.Invoice, 0)
	for _, inv := range s.invoices {
		if matchesInvoice(inv, filter) {
			matches = append(matches, cloneInvoice(inv))
		}
	}
	return page(matches, filter.Filter, func(i invoicing.Invoice) time.Time { return i.IssuedDate }), int64(len(matches)), nil
}

func matchesInvoice(inv invoicing.Invoice, filter invoicing.InvoiceFilter) bool {
	if filter.ClientID != nil && (inv.ClientID == nil || *inv.ClientID != *filter.ClientID) {
		return false
	}
	if filter.EstateID != nil && (inv.EstateID == nil || *inv.EstateID != *filter.EstateID) {
		return false
	}
	if filter.EntryID != nil {
		found := false
		for _, item := range inv.Items {
			if item.EstateEntryID != nil && *item.EstateEntryID == *filter.EntryID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Status != nil && inv.Status != *filter.Status {
		return false
	}
	if filter.IssuedFrom != nil && inv.IssuedDate.Before(*filter.IssuedFrom) {
		return false
	}
	if filter.IssuedTo != nil && inv.IssuedDate.After(*filter.IssuedTo) {
		return false
	}
	if filter.Search != "" && !containsFold(filter.Search, inv.Number, inv.Notes) {
		return false
	}
	return true
}

// Save updates the editable header fields of an invoice
func (s *InvoiceStore) Save(_ context.Context, invoice *invoicing.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.invoices[invoice.ID]
	if !ok {
		return shared.NewNotFoundError("invoice", invoice.ID)
	}
	stored.Notes = invoice.Notes
	stored.DueDate = nil
	if invoice.DueDate != nil {
		d := *invoice.DueDate
		stored.DueDate = &d
	}
	stored.UpdatedAt = time.Now()
	s.invoices[invoice.ID] = stored
	return nil
}

func (s *InvoiceStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[id]; !ok {
		return shared.NewNotFoundError("invoice", id)
	}
	delete(s.invoices, id)
	return nil
}

func (s *InvoiceStore) CountByClient(_ context.Context, clientID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, inv := range s.invoices {
		if inv.ClientID != nil && *inv.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

var _ invoicing.InvoiceRepository = (*InvoiceStore)(nil)
