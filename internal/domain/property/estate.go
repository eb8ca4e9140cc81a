package property

import (
	"strings"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estate is a property development that contains plot entries
type Estate struct {
	shared.BaseAggregateRoot
	Name        string
	Location    string
	Description string
}

// NewEstate creates a new estate
func NewEstate(name, location, description string) (*Estate, error) {
	e := &Estate{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := e.apply(name, location, description); err != nil {
		return nil, err
	}
	return e, nil
}

// Update replaces the editable fields
func (e *Estate) Update(name, location, description string) error {
	if err := e.apply(name, location, description); err != nil {
		return err
	}
	e.Touch()
	return nil
}

func (e *Estate) apply(name, location, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Estate name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Estate name cannot exceed 200 characters")
	}
	e.Name = name
	e.Location = strings.TrimSpace(location)
	e.Description = description
	return nil
}

// EstateSummary aggregates the entries of one estate
type EstateSummary struct {
	EstateID     uuid.UUID
	EntryCount   int64
	TotalAmount  decimal.Decimal
	TotalPaid    decimal.Decimal
	StatusCounts map[PaymentStatus]int64
}

// Outstanding is the unpaid remainder across all entries
func (s EstateSummary) Outstanding() decimal.Decimal {
	return s.TotalAmount.Sub(s.TotalPaid)
}
