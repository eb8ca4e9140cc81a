package property

import (
	"context"
	"fmt"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// EstateService handles estates and their summaries
type EstateService struct {
	estateRepo property.EstateRepository
	entryRepo  property.EstateEntryRepository
}

// NewEstateService creates a new EstateService
func NewEstateService(estateRepo property.EstateRepository, entryRepo property.EstateEntryRepository) *EstateService {
	return &EstateService{
		estateRepo: estateRepo,
		entryRepo:  entryRepo,
	}
}

func (s *EstateService) ensureUniqueName(ctx context.Context, name string, excludeID *uuid.UUID) error {
	exists, err := s.estateRepo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check estate name: %w", err)
	}
	if exists {
		return shared.NewDomainError(property.CodeEstateNameExists, "An estate with this name already exists").
			WithDetail("name", name)
	}
	return nil
}

// Create creates a new estate with a unique name
func (s *EstateService) Create(ctx context.Context, req CreateEstateRequest) (*EstateResponse, error) {
	estate, err := property.NewEstate(req.Name, req.Location, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, estate.Name, nil); err != nil {
		return nil, err
	}

	if err := s.estateRepo.Save(ctx, estate); err != nil {
		return nil, fmt.Errorf("failed to save estate: %w", err)
	}

	response := ToEstateResponse(estate)
	return &response, nil
}

// GetByID retrieves an estate
func (s *EstateService) GetByID(ctx context.Context, id uuid.UUID) (*EstateResponse, error) {
	estate, err := s.estateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToEstateResponse(estate)
	return &response, nil
}

// List retrieves estates matching the filter
func (s *EstateService) List(ctx context.Context, filter ListFilter) ([]EstateResponse, int64, error) {
	estates, total, err := s.estateRepo.FindAll(ctx, property.EstateFilter{Filter: filter.toShared()})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]EstateResponse, len(estates))
	for i := range estates {
		responses[i] = ToEstateResponse(&estates[i])
	}
	return responses, total, nil
}

// Update applies a partial update to an estate
func (s *EstateService) Update(ctx context.Context, id uuid.UUID, req UpdateEstateRequest) (*EstateResponse, error) {
	estate, err := s.estateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, location, description := estate.Name, estate.Location, estate.Description
	if req.Name != nil {
		name = *req.Name
	}
	if req.Location != nil {
		location = *req.Location
	}
	if req.Description != nil {
		description = *req.Description
	}

	if err := estate.Update(name, location, description); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, estate.Name, &estate.ID); err != nil {
		return nil, err
	}
	if err := s.estateRepo.Save(ctx, estate); err != nil {
		return nil, fmt.Errorf("failed to save estate: %w", err)
	}

	response := ToEstateResponse(estate)
	return &response, nil
}

// Delete removes an estate that holds no entries
func (s *EstateService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.estateRepo.FindByID(ctx, id); err != nil {
		return err
	}

	count, err := s.entryRepo.CountByEstate(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count estate entries: %w", err)
	}
	if count > 0 {
		return shared.NewDomainError(property.CodeEstateNotEmpty,
			fmt.Sprintf("Estate still holds %d entries", count)).
			WithDetail("entry_count", count)
	}

	return s.estateRepo.Delete(ctx, id)
}

// Summary aggregates amounts and status counts over an estate's entries
func (s *EstateService) Summary(ctx context.Context, id uuid.UUID) (*EstateSummaryResponse, error) {
	if _, err := s.estateRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	summary, err := s.entryRepo.Summarize(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize estate: %w", err)
	}

	response := ToEstateSummaryResponse(summary)
	return &response, nil
}
