package property

import (
	"context"
	"fmt"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientService handles client records
type ClientService struct {
	clientRepo property.ClientRepository
	entryRepo  property.EstateEntryRepository
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo property.ClientRepository, entryRepo property.EstateEntryRepository) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		entryRepo:  entryRepo,
	}
}

// Create creates a new client
func (s *ClientService) Create(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	client, err := property.NewClient(property.ClientDetails{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to save client: %w", err)
	}

	response := ToClientResponse(client)
	return &response, nil
}

// GetByID retrieves a client
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToClientResponse(client)
	return &response, nil
}

// List retrieves clients matching the filter
func (s *ClientService) List(ctx context.Context, filter ListFilter) ([]ClientResponse, int64, error) {
	clients, total, err := s.clientRepo.FindAll(ctx, property.ClientFilter{Filter: filter.toShared()})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = ToClientResponse(&clients[i])
	}
	return responses, total, nil
}

// Update applies a partial update to a client
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details := property.ClientDetails{
		Name:    client.Name,
		Email:   client.Email,
		Phone:   client.Phone,
		Address: client.Address,
		Notes:   client.Notes,
	}
	if req.Name != nil {
		details.Name = *req.Name
	}
	if req.Email != nil {
		details.Email = *req.Email
	}
	if req.Phone != nil {
		details.Phone = *req.Phone
	}
	if req.Address != nil {
		details.Address = *req.Address
	}
	if req.Notes != nil {
		details.Notes = *req.Notes
	}

	if err := client.Update(details); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to save client: %w", err)
	}

	response := ToClientResponse(client)
	return &response, nil
}

// Delete removes a client that no estate entry references
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.clientRepo.FindByID(ctx, id); err != nil {
		return err
	}

	count, err := s.entryRepo.CountByClient(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count client entries: %w", err)
	}
	if count > 0 {
		return shared.NewDomainError(property.CodeClientInUse,
			fmt.Sprintf("Client is linked to %d estate entries", count)).
			WithDetail("entry_count", count)
	}

	return s.clientRepo.Delete(ctx, id)
}
