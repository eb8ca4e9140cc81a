package property

import (
	"context"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientFilter extends the shared filter for client queries.
// Search matches name, email and phone.
type ClientFilter struct {
	shared.Filter
}

// ClientRepository persists clients.
// Finders return a NOT_FOUND DomainError when the record does not exist.
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	// FindByName matches the name case-insensitively
	FindByName(ctx context.Context, name string) (*Client, error)
	FindAll(ctx context.Context, filter ClientFilter) ([]Client, int64, error)
	Save(ctx context.Context, client *Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EstateFilter extends the shared filter for estate queries
type EstateFilter struct {
	shared.Filter
}

// EstateRepository persists estates
type EstateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Estate, error)
	FindAll(ctx context.Context, filter EstateFilter) ([]Estate, int64, error)
	// ExistsByName checks name uniqueness, ignoring excludeID when set
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, estate *Estate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EntryFilter narrows estate entry queries
type EntryFilter struct {
	shared.Filter
	EstateID *uuid.UUID
	ClientID *uuid.UUID
	Status   *PaymentStatus
	// Plot matches entries holding this plot number
	Plot string
}

// EntryUpdate is a partial update of an estate entry. Nil fields are left
// untouched.
type EntryUpdate struct {
	AmountPaid    *decimal.Decimal
	PaymentStatus *PaymentStatus
	NextDueDate   *time.Time

	// Unsettled applies the update only while the stored entry is Pending
	// or Partial with a balance left. Otherwise Update fails with
	// ErrEntryChanged.
	Unsettled bool
}

// IsEmpty reports whether the update changes nothing
func (u EntryUpdate) IsEmpty() bool {
	return u.AmountPaid == nil && u.PaymentStatus == nil && u.NextDueDate == nil
}

// EstateEntryRepository persists estate entries. Entries are always
// addressed through their owning estate.
type EstateEntryRepository interface {
	FindByID(ctx context.Context, estateID, entryID uuid.UUID) (*EstateEntry, error)
	FindAll(ctx context.Context, filter EntryFilter) ([]EstateEntry, int64, error)
	// FindOverdueCandidates returns Pending or Partial entries whose next
	// due date is before asOf
	FindOverdueCandidates(ctx context.Context, asOf time.Time) ([]EstateEntry, error)
	Save(ctx context.Context, entry *EstateEntry) error
	// Update applies a partial update and returns the stored entry
	Update(ctx context.Context, estateID, entryID uuid.UUID, update EntryUpdate) (*EstateEntry, error)
	Delete(ctx context.Context, estateID, entryID uuid.UUID) error
	CountByEstate(ctx context.Context, estateID uuid.UUID) (int64, error)
	CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error)
	Summarize(ctx context.Context, estateID uuid.UUID) (*EstateSummary, error)
}
