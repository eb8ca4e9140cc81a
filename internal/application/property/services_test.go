package property

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/persistence/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	clients *memory.ClientStore
	estates *memory.EstateStore
	entries *memory.EntryStore

	clientSvc *ClientService
	estateSvc *EstateService
	entrySvc  *EntryService
}

func newFixture() *fixture {
	f := &fixture{
		clients: memory.NewClientStore(),
		estates: memory.NewEstateStore(),
		entries: memory.NewEntryStore(),
	}
	f.clientSvc = NewClientService(f.clients, f.entries)
	f.estateSvc = NewEstateService(f.estates, f.entries)
	f.entrySvc = NewEntryService(f.estates, f.entries, f.clients)
	return f
}

func (f *fixture) estate(t *testing.T, name string) *EstateResponse {
	t.Helper()
	e, err := f.estateSvc.Create(context.Background(), CreateEstateRequest{Name: name, Location: "Lekki"})
	require.NoError(t, err)
	return e
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	assert.Equal(t, code, de.Code)
}

func TestClientService_CRUD(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.clientSvc.Create(ctx, CreateClientRequest{Name: "  Ada Obi ", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", created.Name)

	name := "Ada O. Obi"
	phone := "+2348000000"
	updated, err := f.clientSvc.Update(ctx, created.ID, UpdateClientRequest{Name: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "ada@example.com", updated.Email)
	assert.Equal(t, phone, updated.Phone)

	list, total, err := f.clientSvc.List(ctx, ListFilter{Search: "obi"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	require.NoError(t, f.clientSvc.Delete(ctx, created.ID))
	_, err = f.clientSvc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestClientService_CreateRejectsBlankName(t *testing.T) {
	f := newFixture()
	_, err := f.clientSvc.Create(context.Background(), CreateClientRequest{Name: "   "})
	assertCode(t, err, "INVALID_NAME")
}

func TestClientService_DeleteInUse(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	estate := f.estate(t, "Palm Grove")

	client, err := f.clientSvc.Create(ctx, CreateClientRequest{Name: "Ada"})
	require.NoError(t, err)
	_, err = f.entrySvc.Create(ctx, estate.ID, CreateEntryRequest{ClientID: &client.ID, Amount: dec(100)})
	require.NoError(t, err)

	err = f.clientSvc.Delete(ctx, client.ID)
	assertCode(t, err, property.CodeClientInUse)
}

func TestEstateService_UniqueName(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	first := f.estate(t, "Palm Grove")

	_, err := f.estateSvc.Create(ctx, CreateEstateRequest{Name: "palm grove"})
	assertCode(t, err, property.CodeEstateNameExists)

	second := f.estate(t, "Sunrise")
	clash := "Palm Grove"
	_, err = f.estateSvc.Update(ctx, second.ID, UpdateEstateRequest{Name: &clash})
	assertCode(t, err, property.CodeEstateNameExists)

	desc := "Phase 1"
	same, err := f.estateSvc.Update(ctx, first.ID, UpdateEstateRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Palm Grove", same.Name)
	assert.Equal(t, "Phase 1", same.Description)
}

func TestEstateService_DeleteAndSummary(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	estate := f.estate(t, "Palm Grove")

	_, err := f.entrySvc.Create(ctx, estate.ID, CreateEntryRequest{ClientName: "A", Amount: dec(1000), AmountPaid: dec(1000)})
	require.NoError(t, err)
	_, err = f.entrySvc.Create(ctx, estate.ID, CreateEntryRequest{ClientName: "B", Amount: dec(500), AmountPaid: dec(200)})
	require.NoError(t, err)
	entry, err := f.entrySvc.Create(ctx, estate.ID, CreateEntryRequest{ClientName: "C", Amount: dec(300), PaymentStatus: "Overdue"})
	require.NoError(t, err)
	assert.Equal(t, "Overdue", entry.PaymentStatus)

	summary, err := f.estateSvc.Summary(ctx, estate.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.EntryCount)
	assert.True(t, dec(1800).Equal(summary.TotalAmount))
	assert.True(t, dec(1200).Equal(summary.TotalPaid))
	assert.True(t, dec(600).Equal(summary.Outstanding))
	assert.Equal(t, map[string]int64{"Paid": 1, "Partial": 1, "Pending": 0, "Overdue": 1}, summary.StatusCounts)

	err = f.estateSvc.Delete(ctx, estate.ID)
	assertCode(t, err, property.CodeEstateNotEmpty)

	empty := f.estate(t, "Empty")
	require.NoError(t, f.estateSvc.Delete(ctx, empty.ID))

	_, err = f.estateSvc.Summary(ctx, empty.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEntryService_Create(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	estate := f.estate(t, "Palm Grove")
	client, err := f.clientSvc.Create(ctx, CreateClientRequest{Name: "Ada Obi"})
	require.NoError(t, err)

	t.Run("linked client supplies the display name", func(t *testing.T) {
		entry, err := f.entrySvc.Create(ctx, estate.ID, CreateEntryRequest{
			ClientID:    &client.ID,
			ClientName:  "ignored",
			Amount:      dec(1000),
			AmountPaid:  dec(250),
			PlotNumbers: []string{" A12 ", "", "A13"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Ada Obi", entry.ClientName)
		assert.Equal(t, "Partial", entry.PaymentStatus)
		assert.Equal(t, []string{"A12", "A13"}, entry.PlotNumbers)
		assert.True(t, dec(750).Equal(entry.Balance))
	})

	t.Run("unknown client", func(t *testing.T) {
		missing := uuid.New()
		_, err := f.entrySvc.Create(ctx, estate.ID, CreateEntryRequest{ClientID: &missing, Amount: dec(10)})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown estate", func(t *testing.T) {
		_, err := f.entrySvc.Create(ctx, uuid.New(), CreateEntryRequest{Amount: dec(10)})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("paid cannot exceed amount", func(t *testing.T) {
		_, err := f.entrySvc.Create(ctx, estate.ID, CreateEntryRequest{Amount: dec(10), AmountPaid: dec(11)})
		assertCode(t, err, property.CodeInvalidAmount)
	})

	t.Run("explicit status is derived unless overdue", func(t *testing.T) {
		entry, err := f.entrySvc.Create(ctx, estate.ID, CreateEntryRequest{Amount: dec(10), PaymentStatus: "Paid"})
		require.NoError(t, err)
		assert.Equal(t, "Pending", entry.PaymentStatus)
	})
}

func TestEntryService_UpdateAndList(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	estate := f.estate(t, "Palm Grove")
	client, err := f.clientSvc.Create(ctx, CreateClientRequest{Name: "Ada"})
	require.NoError(t, err)

	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	entry, err := f.entrySvc.Create(ctx, estate.ID, CreateEntryRequest{
		ClientName:    "Walk-in buyer",
		Amount:        dec(1000),
		PaymentStatus: "Overdue",
		PlotNumbers:   []string{"B1"},
		NextDueDate:   &due,
	})
	require.NoError(t, err)
	assert.Nil(t, entry.ClientID)

	paid := dec(400)
	updated, err := f.entrySvc.Update(ctx, estate.ID, entry.ID, UpdateEntryRequest{AmountPaid: &paid, ClientID: &client.ID})
	require.NoError(t, err)
	assert.Equal(t, "Overdue", updated.PaymentStatus)
	assert.Equal(t, "Ada", updated.ClientName)
	require.NotNil(t, updated.ClientID)

	full := dec(1000)
	updated, err = f.entrySvc.Update(ctx, estate.ID, entry.ID, UpdateEntryRequest{AmountPaid: &full, ClearNextDueDate: true})
	require.NoError(t, err)
	assert.Equal(t, "Paid", updated.PaymentStatus)
	assert.Nil(t, updated.NextDueDate)

	tooLow := dec(900)
	_, err = f.entrySvc.Update(ctx, estate.ID, entry.ID, UpdateEntryRequest{Amount: &tooLow})
	assertCode(t, err, property.CodeInvalidAmount)

	byClient, total, err := f.entrySvc.ListByClient(ctx, client.ID, EntryListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, entry.ID, byClient[0].ID)

	_, total, err = f.entrySvc.List(ctx, estate.ID, EntryListFilter{Status: "Paid", Plot: "B1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = f.entrySvc.List(ctx, estate.ID, EntryListFilter{Status: "Pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	updated, err = f.entrySvc.Update(ctx, estate.ID, entry.ID, UpdateEntryRequest{UnlinkClient: true})
	require.NoError(t, err)
	assert.Nil(t, updated.ClientID)
	assert.Equal(t, "Ada", updated.ClientName)

	require.NoError(t, f.entrySvc.Delete(ctx, estate.ID, entry.ID))
	_, err = f.entrySvc.GetByID(ctx, estate.ID, entry.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

type sweepRecorder struct {
	marked []int
}

func (r *sweepRecorder) RecordOverdueSweep(_ context.Context, marked int) {
	r.marked = append(r.marked, marked)
}

func TestOverdueService_MarkOverdue(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	estate := f.estate(t, "Palm Grove")

	asOf := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	past := asOf.AddDate(0, -1, 0)
	future := asOf.AddDate(0, 1, 0)

	pending, err := f.entrySvc.Create(ctx, estate.ID, CreateEntryRequest{Amount: dec(100), NextDueDate: &past})
	require.NoError(t, err)
	partial, err := f.entrySvc.Create(ctx, estate.ID, CreateEntryRequest{Amount: dec(100), AmountPaid: dec(50), NextDueDate: &past})
	require.NoError(t, err)
	_, err = f.entrySvc.Create(ctx, estate.ID, CreateEntryRequest{Amount: dec(100), NextDueDate: &future})
	require.NoError(t, err)
	_, err = f.entrySvc.Create(ctx, estate.ID, CreateEntryRequest{Amount: dec(100), AmountPaid: dec(100), NextDueDate: &past})
	require.NoError(t, err)

	recorder := &sweepRecorder{}
	svc := NewOverdueService(f.entries, recorder, nil)

	result, err := svc.MarkOverdue(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 2, result.Marked)
	assert.ElementsMatch(t, []uuid.UUID{pending.ID, partial.ID}, result.EntryIDs)

	got, err := f.entrySvc.GetByID(ctx, estate.ID, partial.ID)
	require.NoError(t, err)
	assert.Equal(t, "Overdue", got.PaymentStatus)
	assert.True(t, dec(50).Equal(got.AmountPaid))

	again, err := svc.MarkOverdue(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Marked)
	assert.Equal(t, []int{2, 0}, recorder.marked)
}

// settlingEntryStore pays off one entry right after the sweep has read its
// candidates
type settlingEntryStore struct {
	*memory.EntryStore
	estateID, entryID uuid.UUID
}

func (s *settlingEntryStore) FindOverdueCandidates(ctx context.Context, asOf time.Time) ([]property.EstateEntry, error) {
	candidates, err := s.EntryStore.FindOverdueCandidates(ctx, asOf)
	if err != nil {
		return nil, err
	}
	entry, err := s.EntryStore.FindByID(ctx, s.estateID, s.entryID)
	if err != nil {
		return nil, err
	}
	if _, err := entry.ApplyPayment(entry.Outstanding()); err != nil {
		return nil, err
	}
	_, err = s.EntryStore.Update(ctx, s.estateID, s.entryID, property.EntryUpdate{
		AmountPaid:    &entry.AmountPaid,
		PaymentStatus: &entry.PaymentStatus,
	})
	return candidates, err
}

func TestOverdueService_SkipsEntryPaidDuringSweep(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	estate := f.estate(t, "Palm Grove")

	asOf := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	past := asOf.AddDate(0, -1, 0)
	paying, err := f.entrySvc.Create(ctx, estate.ID, CreateEntryRequest{Amount: dec(100000), AmountPaid: dec(40000), NextDueDate: &past})
	require.NoError(t, err)
	late, err := f.entrySvc.Create(ctx, estate.ID, CreateEntryRequest{Amount: dec(100000), NextDueDate: &past})
	require.NoError(t, err)

	store := &settlingEntryStore{EntryStore: f.entries, estateID: estate.ID, entryID: paying.ID}
	result, err := NewOverdueService(store, nil, nil).MarkOverdue(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 1, result.Marked)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Failed)
	assert.Equal(t, []uuid.UUID{late.ID}, result.EntryIDs)

	got, err := f.entrySvc.GetByID(ctx, estate.ID, paying.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paid", got.PaymentStatus)
	assert.True(t, dec(100000).Equal(got.AmountPaid))
}

// MockEntryRepository is a testify mock of property.EstateEntryRepository
type MockEntryRepository struct {
	mock.Mock
	property.EstateEntryRepository
}

func (m *MockEntryRepository) FindOverdueCandidates(ctx context.Context, asOf time.Time) ([]property.EstateEntry, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]property.EstateEntry), args.Error(1)
}

func (m *MockEntryRepository) Update(ctx context.Context, estateID, entryID uuid.UUID, update property.EntryUpdate) (*property.EstateEntry, error) {
	args := m.Called(ctx, estateID, entryID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.EstateEntry), args.Error(1)
}

func TestOverdueService_ContinuesPastFailures(t *testing.T) {
	asOf := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	past := asOf.AddDate(0, 0, -1)
	estateID := uuid.New()

	newEntry := func() property.EstateEntry {
		e, err := property.NewEstateEntry(estateID, property.EntryDetails{Amount: dec(100), NextDueDate: &past})
		require.NoError(t, err)
		return *e
	}
	first, second := newEntry(), newEntry()

	repo := new(MockEntryRepository)
	repo.On("FindOverdueCandidates", mock.Anything, asOf).Return([]property.EstateEntry{first, second}, nil)
	repo.On("Update", mock.Anything, estateID, first.ID, mock.Anything).Return(nil, errors.New("db down"))
	repo.On("Update", mock.Anything, estateID, second.ID, mock.MatchedBy(func(u property.EntryUpdate) bool {
		return u.PaymentStatus != nil && *u.PaymentStatus == property.PaymentStatusOverdue && u.AmountPaid == nil && u.Unsettled
	})).Return(&second, nil)

	result, err := NewOverdueService(repo, nil, nil).MarkOverdue(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Marked)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []uuid.UUID{second.ID}, result.EntryIDs)
	repo.AssertExpectations(t)
}

func TestOverdueService_FindFails(t *testing.T) {
	repo := new(MockEntryRepository)
	repo.On("FindOverdueCandidates", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	_, err := NewOverdueService(repo, nil, nil).MarkOverdue(context.Background(), time.Now())
	assert.ErrorContains(t, err, "failed to find overdue candidates")
}
