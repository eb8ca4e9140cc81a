package property

import (
	"context"
	"fmt"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/google/uuid"
)

// EntryService handles estate entries outside of payment reconciliation
type EntryService struct {
	estateRepo property.EstateRepository
	entryRepo  property.EstateEntryRepository
	clientRepo property.ClientRepository
}

// NewEntryService creates a new EntryService
func NewEntryService(
	estateRepo property.EstateRepository,
	entryRepo property.EstateEntryRepository,
	clientRepo property.ClientRepository,
) *EntryService {
	return &EntryService{
		estateRepo: estateRepo,
		entryRepo:  entryRepo,
		clientRepo: clientRepo,
	}
}

// linkClient checks a referenced client and returns the display name the
// entry should carry. Unlinked entries keep the name they were given.
func (s *EntryService) linkClient(ctx context.Context, clientID *uuid.UUID, name string) (*uuid.UUID, string, error) {
	if clientID == nil || *clientID == uuid.Nil {
		return nil, name, nil
	}
	client, err := s.clientRepo.FindByID(ctx, *clientID)
	if err != nil {
		return nil, "", err
	}
	return &client.ID, client.Name, nil
}

// Create adds an entry to an estate
func (s *EntryService) Create(ctx context.Context, estateID uuid.UUID, req CreateEntryRequest) (*EntryResponse, error) {
	if _, err := s.estateRepo.FindByID(ctx, estateID); err != nil {
		return nil, err
	}

	clientID, clientName, err := s.linkClient(ctx, req.ClientID, req.ClientName)
	if err != nil {
		return nil, err
	}

	entry, err := property.NewEstateEntry(estateID, property.EntryDetails{
		ClientID:    clientID,
		ClientName:  clientName,
		Amount:      req.Amount,
		AmountPaid:  req.AmountPaid,
		Status:      property.PaymentStatus(req.PaymentStatus),
		PlotNumbers: req.PlotNumbers,
		NextDueDate: req.NextDueDate,
		Notes:       req.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save estate entry: %w", err)
	}

	response := ToEntryResponse(entry)
	return &response, nil
}

// GetByID retrieves an entry of an estate
func (s *EntryService) GetByID(ctx context.Context, estateID, entryID uuid.UUID) (*EntryResponse, error) {
	entry, err := s.entryRepo.FindByID(ctx, estateID, entryID)
	if err != nil {
		return nil, err
	}
	response := ToEntryResponse(entry)
	return &response, nil
}

func (f EntryListFilter) toDomain() property.EntryFilter {
	filter := property.EntryFilter{Filter: f.ListFilter.toShared(), Plot: f.Plot}
	if f.Status != "" {
		status := property.PaymentStatus(f.Status)
		filter.Status = &status
	}
	if id, err := uuid.Parse(f.ClientID); err == nil {
		filter.ClientID = &id
	}
	return filter
}

// List retrieves the entries of an estate
func (s *EntryService) List(ctx context.Context, estateID uuid.UUID, filter EntryListFilter) ([]EntryResponse, int64, error) {
	if _, err := s.estateRepo.FindByID(ctx, estateID); err != nil {
		return nil, 0, err
	}

	domainFilter := filter.toDomain()
	domainFilter.EstateID = &estateID

	entries, total, err := s.entryRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToEntryResponses(entries), total, nil
}

// ListByClient retrieves the entries of a client across estates
func (s *EntryService) ListByClient(ctx context.Context, clientID uuid.UUID, filter EntryListFilter) ([]EntryResponse, int64, error) {
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		return nil, 0, err
	}

	domainFilter := filter.toDomain()
	domainFilter.ClientID = &clientID

	entries, total, err := s.entryRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToEntryResponses(entries), total, nil
}

// Update applies a partial update. Amount invariants are re-checked and the
// status re-derived; an Overdue label survives while money is still owed.
func (s *EntryService) Update(ctx context.Context, estateID, entryID uuid.UUID, req UpdateEntryRequest) (*EntryResponse, error) {
	entry, err := s.entryRepo.FindByID(ctx, estateID, entryID)
	if err != nil {
		return nil, err
	}

	details := property.EntryDetails{
		ClientID:    entry.ClientID,
		ClientName:  entry.ClientName,
		Amount:      entry.Amount,
		AmountPaid:  entry.AmountPaid,
		PlotNumbers: entry.PlotNumbers,
		NextDueDate: entry.NextDueDate,
		Notes:       entry.Notes,
	}
	if req.ClientName != nil {
		details.ClientName = *req.ClientName
	}
	switch {
	case req.UnlinkClient:
		details.ClientID = nil
	case req.ClientID != nil:
		details.ClientID, details.ClientName, err = s.linkClient(ctx, req.ClientID, details.ClientName)
		if err != nil {
			return nil, err
		}
	}
	if req.Amount != nil {
		details.Amount = *req.Amount
	}
	if req.AmountPaid != nil {
		details.AmountPaid = *req.AmountPaid
	}
	if req.PaymentStatus != nil {
		details.Status = property.PaymentStatus(*req.PaymentStatus)
	}
	if req.PlotNumbers != nil {
		details.PlotNumbers = req.PlotNumbers
	}
	if req.ClearNextDueDate {
		details.NextDueDate = nil
	} else if req.NextDueDate != nil {
		details.NextDueDate = req.NextDueDate
	}
	if req.Notes != nil {
		details.Notes = *req.Notes
	}

	if err := entry.Update(details); err != nil {
		return nil, err
	}
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save estate entry: %w", err)
	}

	response := ToEntryResponse(entry)
	return &response, nil
}

// Delete removes an entry from an estate
func (s *EntryService) Delete(ctx context.Context, estateID, entryID uuid.UUID) error {
	return s.entryRepo.Delete(ctx, estateID, entryID)
}
