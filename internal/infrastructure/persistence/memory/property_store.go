package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientStore implements property.ClientRepository in memory
type ClientStore struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]property.Client
}

// NewClientStore creates an empty client store
func NewClientStore() *ClientStore {
	return &ClientStore{clients: make(map[uuid.UUID]property.Client)}
}

func (s *ClientStore) FindByID(_ context.Context, id uuid.UUID) (*property.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, shared.NewNotFoundError("client", id)
	}
	return &c, nil
}

func (s *ClientStore) FindByName(_ context.Context, name string) (*property.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *property.Client
	for _, c := range s.clients {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			if found == nil || c.CreatedAt.Before(found.CreatedAt) {
				c := c
				found = &c
			}
		}
	}
	if found == nil {
		return nil, shared.ErrNotFound.WithDetail("name", name)
	}
	return found, nil
}

func (s *ClientStore) FindAll(_ context.Context, filter property.ClientFilter) ([]property.Client, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := make([]property.Client, 0, len(s.clients))
	for _, c := range s.clients {
		if filter.Search != "" && !containsFold(filter.Search, c.Name, c.Email, c.Phone) {
			continue
		}
		matches = append(matches, c)
	}
	return page(matches, filter.Filter, func(c property.Client) time.Time { return c.CreatedAt }), int64(len(matches)), nil
}

func (s *ClientStore) Save(_ context.Context, client *property.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *client
	c.ClearDomainEvents()
	stamp(&c.BaseEntity)
	s.clients[c.ID] = c
	return nil
}

func (s *ClientStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		return shared.NewNotFoundError("client", id)
	}
	delete(s.clients, id)
	return nil
}

// EstateStore implements property.EstateRepository in memory
type EstateStore struct {
	mu      sync.RWMutex
	estates map[uuid.UUID]property.Estate
}

// NewEstateStore creates an empty estate store
func NewEstateStore() *EstateStore {
	return &EstateStore{estates: make(map[uuid.UUID]property.Estate)}
}

func (s *EstateStore) FindByID(_ context.Context, id uuid.UUID) (*property.Estate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.estates[id]
	if !ok {
		return nil, shared.NewNotFoundError("estate", id)
	}
	return &e, nil
}

func (s *EstateStore) FindAll(_ context.Context, filter property.EstateFilter) ([]property.Estate, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := make([]property.Estate, 0, len(s.estates))
	for _, e := range s.estates {
		if filter.Search != "" && !containsFold(filter.Search, e.Name, e.Location) {
			continue
		}
		matches = append(matches, e)
	}
	return page(matches, filter.Filter, func(e property.Estate) time.Time { return e.CreatedAt }), int64(len(matches)), nil
}

func (s *EstateStore) ExistsByName(_ context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, e := range s.estates {
		if excludeID != nil && id == *excludeID {
			continue
		}
		if strings.EqualFold(e.Name, strings.TrimSpace(name)) {
			return true, nil
		}
	}
	return false, nil
}

func (s *EstateStore) Save(_ context.Context, estate *property.Estate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := *estate
	e.ClearDomainEvents()
	stamp(&e.BaseEntity)
	s.estates[e.ID] = e
	return nil
}

func (s *EstateStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.estates[id]; !ok {
		return shared.NewNotFoundError("estate", id)
	}
	delete(s.estates, id)
	return nil
}

// EntryStore implements property.EstateEntryRepository in memory
type EntryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]property.EstateEntry
}

// NewEntryStore creates an empty entry store
func NewEntryStore() *EntryStore {
	return &EntryStore{entries: make(map[uuid.UUID]property.EstateEntry)}
}

func cloneEntry(e property.EstateEntry) property.EstateEntry {
	e.PlotNumbers = append([]string{}, e.PlotNumbers...)
	if e.ClientID != nil {
		id := *e.ClientID
		e.ClientID = &id
	}
	if e.NextDueDate != nil {
		d := *e.NextDueDate
		e.NextDueDate = &d
	}
	e.ClearDomainEvents()
	return e
}

func (s *EntryStore) FindByID(_ context.Context, estateID, entryID uuid.UUID) (*property.EstateEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[entryID]
	if !ok || e.EstateID != estateID {
		return nil, shared.NewNotFoundError("estate entry", entryID)
	}
	e = cloneEntry(e)
	return &e, nil
}

func (s *EntryStore) FindAll(_ context.Context, filter property.EntryFilter) ([]property.EstateEntry, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := make([]property.EstateEntry, 0)
	for _, e := range s.entries {
		if matchesEntry(e, filter) {
			matches = append(matches, cloneEntry(e))
		}
	}
	return page(matches, filter.Filter, func(e property.EstateEntry) time.Time { return e.CreatedAt }), int64(len(matches)), nil
}

func matchesEntry(e property.EstateEntry, filter property.EntryFilter) bool {
	if filter.EstateID != nil && e.EstateID != *filter.EstateID {
		return false
	}
	if filter.ClientID != nil && (e.ClientID == nil || *e.ClientID != *filter.ClientID) {
		return false
	}
	if filter.Status != nil && e.PaymentStatus != *filter.Status {
		return false
	}
	if plot := strings.TrimSpace(filter.Plot); plot != "" {
		found := false
		for _, p := range e.PlotNumbers {
			if strings.EqualFold(p, plot) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Search != "" && !containsFold(filter.Search, e.ClientName, e.PlotDetails(), e.Notes) {
		return false
	}
	return true
}

func (s *EntryStore) FindOverdueCandidates(_ context.Context, asOf time.Time) ([]property.EstateEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []property.EstateEntry
	for _, e := range s.entries {
		if e.IsOverdueAt(asOf) {
			out = append(out, cloneEntry(e))
		}
	}
	return out, nil
}

func (s *EntryStore) Save(_ context.Context, entry *property.EstateEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := cloneEntry(*entry)
	stamp(&e.BaseEntity)
	s.entries[e.ID] = e
	return nil
}

func (s *EntryStore) Update(_ context.Context, estateID, entryID uuid.UUID, update property.EntryUpdate) (*property.EstateEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[entryID]
	if !ok || e.EstateID != estateID {
		return nil, shared.NewNotFoundError("estate entry", entryID)
	}
	if update.Unsettled && (!e.PaymentStatus.CanBecomeOverdue() || !e.Outstanding().IsPositive()) {
		return nil, property.ErrEntryChanged
	}
	if !update.IsEmpty() {
		if update.AmountPaid != nil {
			e.AmountPaid = *update.AmountPaid
		}
		if update.PaymentStatus != nil {
			e.PaymentStatus = *update.PaymentStatus
		}
		if update.NextDueDate != nil {
			d := *update.NextDueDate
			e.NextDueDate = &d
		}
		e.UpdatedAt = time.Now()
		s.entries[entryID] = e
	}
	out := cloneEntry(e)
	return &out, nil
}

func (s *EntryStore) Delete(_ context.Context, estateID, entryID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[entryID]
	if !ok || e.EstateID != estateID {
		return shared.NewNotFoundError("estate entry", entryID)
	}
	delete(s.entries, entryID)
	return nil
}

func (s *EntryStore) CountByEstate(_ context.Context, estateID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, e := range s.entries {
		if e.EstateID == estateID {
			n++
		}
	}
	return n, nil
}

func (s *EntryStore) CountByClient(_ context.Context, clientID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, e := range s.entries {
		if e.ClientID != nil && *e.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

func (s *EntryStore) Summarize(_ context.Context, estateID uuid.UUID) (*property.EstateSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary := &property.EstateSummary{
		EstateID:     estateID,
		TotalAmount:  decimal.Zero,
		TotalPaid:    decimal.Zero,
		StatusCounts: make(map[property.PaymentStatus]int64),
	}
	for _, status := range property.AllPaymentStatuses() {
		summary.StatusCounts[status] = 0
	}
	for _, e := range s.entries {
		if e.EstateID != estateID {
			continue
		}
		summary.EntryCount++
		summary.TotalAmount = summary.TotalAmount.Add(e.Amount)
		summary.TotalPaid = summary.TotalPaid.Add(e.AmountPaid)
		summary.StatusCounts[e.PaymentStatus]++
	}
	return summary, nil
}

var (
	_ property.ClientRepository      = (*ClientStore)(nil)
	_ property.EstateRepository      = (*EstateStore)(nil)
	_ property.EstateEntryRepository = (*EntryStore)(nil)
)
