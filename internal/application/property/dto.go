package property

import (
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListFilter holds the paging and search parameters shared by list endpoints
type ListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=500"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f ListFilter) toShared() shared.Filter {
	return shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}.Normalize()
}

// =============================================================================
// Client DTOs
// =============================================================================

// CreateClientRequest represents a request to create a client
type CreateClientRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Email   string `json:"email" binding:"omitempty,email,max=200"`
	Phone   string `json:"phone" binding:"max=50"`
	Address string `json:"address" binding:"max=500"`
	Notes   string `json:"notes"`
}

// UpdateClientRequest represents a partial update of a client
type UpdateClientRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email   *string `json:"email" binding:"omitempty,email,max=200"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Address *string `json:"address" binding:"omitempty,max=500"`
	Notes   *string `json:"notes"`
}

// ClientResponse is the API view of a client
type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToClientResponse maps a client to its response
func ToClientResponse(c *property.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// =============================================================================
// Estate DTOs
// =============================================================================

// CreateEstateRequest represents a request to create an estate
type CreateEstateRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Location    string `json:"location" binding:"max=300"`
	Description string `json:"description"`
}

// UpdateEstateRequest represents a partial update of an estate
type UpdateEstateRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Location    *string `json:"location" binding:"omitempty,max=300"`
	Description *string `json:"description"`
}

// EstateResponse is the API view of an estate
type EstateResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToEstateResponse maps an estate to its response
func ToEstateResponse(e *property.Estate) EstateResponse {
	return EstateResponse{
		ID:          e.ID,
		Name:        e.Name,
		Location:    e.Location,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// EstateSummaryResponse aggregates the entries of an estate
type EstateSummaryResponse struct {
	EstateID     uuid.UUID        `json:"estate_id"`
	EntryCount   int64            `json:"entry_count"`
	TotalAmount  decimal.Decimal  `json:"total_amount"`
	TotalPaid    decimal.Decimal  `json:"total_paid"`
	Outstanding  decimal.Decimal  `json:"outstanding"`
	StatusCounts map[string]int64 `json:"status_counts"`
}

// ToEstateSummaryResponse maps an estate summary to its response
func ToEstateSummaryResponse(s *property.EstateSummary) EstateSummaryResponse {
	counts := make(map[string]int64, len(property.AllPaymentStatuses()))
	for _, status := range property.AllPaymentStatuses() {
		counts[status.String()] = s.StatusCounts[status]
	}
	return EstateSummaryResponse{
		EstateID:     s.EstateID,
		EntryCount:   s.EntryCount,
		TotalAmount:  s.TotalAmount,
		TotalPaid:    s.TotalPaid,
		Outstanding:  s.Outstanding(),
		StatusCounts: counts,
	}
}

// =============================================================================
// Estate entry DTOs
// =============================================================================

// CreateEntryRequest represents a request to add an entry to an estate.
// PaymentStatus is derived from the amounts unless Overdue is requested.
type CreateEntryRequest struct {
	ClientID      *uuid.UUID      `json:"client_id"`
	ClientName    string          `json:"client_name" binding:"max=200"`
	Amount        decimal.Decimal `json:"amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PaymentStatus string          `json:"payment_status" binding:"omitempty,oneof=Paid Partial Pending Overdue"`
	PlotNumbers   []string        `json:"plot_numbers" binding:"omitempty,dive,plot"`
	NextDueDate   *time.Time      `json:"next_due_date"`
	Notes         string          `json:"notes"`
}

// UpdateEntryRequest represents a partial update of an entry
type UpdateEntryRequest struct {
	ClientID         *uuid.UUID       `json:"client_id"`
	UnlinkClient     bool             `json:"unlink_client"`
	ClientName       *string          `json:"client_name" binding:"omitempty,max=200"`
	Amount           *decimal.Decimal `json:"amount"`
	AmountPaid       *decimal.Decimal `json:"amount_paid"`
	PaymentStatus    *string          `json:"payment_status" binding:"omitempty,oneof=Paid Partial Pending Overdue"`
	PlotNumbers      []string         `json:"plot_numbers" binding:"omitempty,dive,plot"`
	NextDueDate      *time.Time       `json:"next_due_date"`
	ClearNextDueDate bool             `json:"clear_next_due_date"`
	Notes            *string          `json:"notes"`
}

// EntryListFilter narrows entry lists
type EntryListFilter struct {
	ListFilter
	Status   string `form:"status" binding:"omitempty,oneof=Paid Partial Pending Overdue"`
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
	Plot     string `form:"plot"`
}

// EntryResponse is the API view of an estate entry
type EntryResponse struct {
	ID            uuid.UUID       `json:"id"`
	EstateID      uuid.UUID       `json:"estate_id"`
	ClientID      *uuid.UUID      `json:"client_id,omitempty"`
	ClientName    string          `json:"client_name,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Balance       decimal.Decimal `json:"balance"`
	PaymentStatus string          `json:"payment_status"`
	PlotNumbers   []string        `json:"plot_numbers"`
	NextDueDate   *time.Time      `json:"next_due_date,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToEntryResponse maps an entry to its response
func ToEntryResponse(e *property.EstateEntry) EntryResponse {
	plots := e.PlotNumbers
	if plots == nil {
		plots = []string{}
	}
	return EntryResponse{
		ID:            e.ID,
		EstateID:      e.EstateID,
		ClientID:      e.ClientID,
		ClientName:    e.ClientName,
		Amount:        e.Amount,
		AmountPaid:    e.AmountPaid,
		Balance:       e.Outstanding(),
		PaymentStatus: e.PaymentStatus.String(),
		PlotNumbers:   plots,
		NextDueDate:   e.NextDueDate,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// ToEntryResponses maps a slice of entries
func ToEntryResponses(entries []property.EstateEntry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i := range entries {
		out[i] = ToEntryResponse(&entries[i])
	}
	return out
}

// OverdueSweepResult reports one overdue sweep
type OverdueSweepResult struct {
	AsOf     time.Time   `json:"as_of"`
	Checked  int         `json:"checked"`
	Marked   int         `json:"marked"`
	Skipped  int         `json:"skipped"`
	Failed   int         `json:"failed"`
	EntryIDs []uuid.UUID `json:"entry_ids"`
}
