package persistence

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveEntry(t *testing.T, repo *GormEstateEntryRepository, estateID uuid.UUID, details property.EntryDetails) *property.EstateEntry {
	t.Helper()
	entry, err := property.NewEstateEntry(estateID, details)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), entry))
	return entry
}

func TestGormClientRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormClientRepository(newSQLiteDB(t))

	ada, err := property.NewClient(property.ClientDetails{Name: "Ada Obi", Email: "ada@example.com", Phone: "0803"})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, ada))
	bola, err := property.NewClient(property.ClientDetails{Name: "Bola Ade", Email: "bola@test.ng"})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, bola))

	t.Run("find by id", func(t *testing.T) {
		got, err := repo.FindByID(ctx, ada.ID)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", got.Email)
	})

	t.Run("missing client is not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("find by name ignores case", func(t *testing.T) {
		got, err := repo.FindByName(ctx, "  ADA obi ")
		require.NoError(t, err)
		assert.Equal(t, ada.ID, got.ID)
	})

	t.Run("search and count", func(t *testing.T) {
		clients, total, err := repo.FindAll(ctx, property.ClientFilter{Filter: shared.Filter{Search: "test.ng"}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, clients, 1)
		assert.Equal(t, bola.ID, clients[0].ID)
	})

	t.Run("ordered by name by default", func(t *testing.T) {
		clients, total, err := repo.FindAll(ctx, property.ClientFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, clients, 2)
		assert.Equal(t, "Ada Obi", clients[0].Name)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, bola.ID))
		assert.True(t, errors.Is(repo.Delete(ctx, bola.ID), shared.ErrNotFound))
	})
}

func TestGormEstateRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormEstateRepository(newSQLiteDB(t))

	estate, err := property.NewEstate("Palm Gardens", "Lekki", "Phase 1")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, estate))

	exists, err := repo.ExistsByName(ctx, "palm gardens", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByName(ctx, "Palm Gardens", &estate.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, estate.Update("Palm Gardens II", "Lekki", "Phase 2"))
	require.NoError(t, repo.Save(ctx, estate))

	got, err := repo.FindByID(ctx, estate.ID)
	require.NoError(t, err)
	assert.Equal(t, "Palm Gardens II", got.Name)

	estates, total, err := repo.FindAll(ctx, property.EstateFilter{Filter: shared.Filter{Search: "lekki"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, estates, 1)
}

func TestGormEstateEntryRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewGormEstateEntryRepository(newSQLiteDB(t))
	estateID := uuid.New()
	clientID := uuid.New()
	due := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	entry := saveEntry(t, repo, estateID, property.EntryDetails{
		ClientID:    &clientID,
		ClientName:  "Ada Obi",
		Amount:      decimal.NewFromInt(1000000),
		AmountPaid:  decimal.NewFromInt(250000),
		PlotNumbers: []string{"A12", "A13"},
		NextDueDate: &due,
	})

	got, err := repo.FindByID(ctx, estateID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A12", "A13"}, got.PlotNumbers)
	assert.Equal(t, property.PaymentStatusPartial, got.PaymentStatus)
	assert.True(t, decimal.NewFromInt(250000).Equal(got.AmountPaid))
	require.NotNil(t, got.ClientID)
	assert.Equal(t, clientID, *got.ClientID)
	require.NotNil(t, got.NextDueDate)
	assert.True(t, due.Equal(*got.NextDueDate))

	_, err = repo.FindByID(ctx, uuid.New(), entry.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormEstateEntryRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewGormEstateEntryRepository(newSQLiteDB(t))
	estateID := uuid.New()
	entry := saveEntry(t, repo, estateID, property.EntryDetails{
		ClientName:  "Ada Obi",
		Amount:      decimal.NewFromInt(500000),
		AmountPaid:  decimal.NewFromInt(450000),
		PlotNumbers: []string{"B1"},
	})

	paid := decimal.NewFromInt(500000)
	status := property.PaymentStatusPaid
	updated, err := repo.Update(ctx, estateID, entry.ID, property.EntryUpdate{AmountPaid: &paid, PaymentStatus: &status})
	require.NoError(t, err)
	assert.True(t, paid.Equal(updated.AmountPaid))
	assert.Equal(t, property.PaymentStatusPaid, updated.PaymentStatus)
	assert.Equal(t, "Ada Obi", updated.ClientName)
	assert.Equal(t, []string{"B1"}, updated.PlotNumbers)

	unchanged, err := repo.Update(ctx, estateID, entry.ID, property.EntryUpdate{})
	require.NoError(t, err)
	assert.True(t, paid.Equal(unchanged.AmountPaid))

	_, err = repo.Update(ctx, uuid.New(), entry.ID, property.EntryUpdate{AmountPaid: &paid})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormEstateEntryRepository_UpdateUnsettled(t *testing.T) {
	ctx := context.Background()
	repo := NewGormEstateEntryRepository(newSQLiteDB(t))
	estateID := uuid.New()
	open := saveEntry(t, repo, estateID, property.EntryDetails{
		ClientName: "Ada Obi", Amount: decimal.NewFromInt(100000), AmountPaid: decimal.NewFromInt(40000),
	})
	settled := saveEntry(t, repo, estateID, property.EntryDetails{
		ClientName: "Bola Ade", Amount: decimal.NewFromInt(100000), AmountPaid: decimal.NewFromInt(100000),
	})
	overdue := property.PaymentStatusOverdue

	updated, err := repo.Update(ctx, estateID, open.ID, property.EntryUpdate{PaymentStatus: &overdue, Unsettled: true})
	require.NoError(t, err)
	assert.Equal(t, property.PaymentStatusOverdue, updated.PaymentStatus)

	_, err = repo.Update(ctx, estateID, settled.ID, property.EntryUpdate{PaymentStatus: &overdue, Unsettled: true})
	assert.True(t, errors.Is(err, property.ErrEntryChanged))
	got, err := repo.FindByID(ctx, estateID, settled.ID)
	require.NoError(t, err)
	assert.Equal(t, property.PaymentStatusPaid, got.PaymentStatus)

	_, err = repo.Update(ctx, estateID, uuid.New(), property.EntryUpdate{PaymentStatus: &overdue, Unsettled: true})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormEstateEntryRepository_FindAll(t *testing.T) {
	ctx := context.Background()
	repo := NewGormEstateEntryRepository(newSQLiteDB(t))
	estateID := uuid.New()
	otherEstate := uuid.New()
	clientID := uuid.New()

	a := saveEntry(t, repo, estateID, property.EntryDetails{ClientID: &clientID, ClientName: "Ada", Amount: decimal.NewFromInt(100), PlotNumbers: []string{"A12", "A13"}})
	b := saveEntry(t, repo, estateID, property.EntryDetails{ClientName: "Bola", Amount: decimal.NewFromInt(100), AmountPaid: decimal.NewFromInt(100), PlotNumbers: []string{"A1"}})
	saveEntry(t, repo, otherEstate, property.EntryDetails{ClientName: "Chidi", Amount: decimal.NewFromInt(100), PlotNumbers: []string{"A12"}})

	entries, total, err := repo.FindAll(ctx, property.EntryFilter{EstateID: &estateID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, entries, 2)

	// A1 must not match A12 or A13
	entries, _, err = repo.FindAll(ctx, property.EntryFilter{EstateID: &estateID, Plot: "A1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, b.ID, entries[0].ID)

	entries, total, err = repo.FindAll(ctx, property.EntryFilter{Plot: "A12"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	paid := property.PaymentStatusPaid
	entries, _, err = repo.FindAll(ctx, property.EntryFilter{Status: &paid})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, b.ID, entries[0].ID)

	entries, _, err = repo.FindAll(ctx, property.EntryFilter{ClientID: &clientID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, a.ID, entries[0].ID)

	entries, total, err = repo.FindAll(ctx, property.EntryFilter{Filter: shared.Filter{Page: 1, PageSize: 2, OrderBy: "client_name", OrderDir: "asc"}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 2)
	assert.Equal(t, "Ada", entries[0].ClientName)

	n, err := repo.CountByEstate(ctx, estateID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.CountByClient(ctx, clientID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestGormEstateEntryRepository_OverdueAndSummary(t *testing.T) {
	ctx := context.Background()
	repo := NewGormEstateEntryRepository(newSQLiteDB(t))
	estateID := uuid.New()
	now := time.Now().UTC()
	past := now.Add(-72 * time.Hour)
	future := now.Add(72 * time.Hour)

	late := saveEntry(t, repo, estateID, property.EntryDetails{Amount: decimal.NewFromInt(1000), AmountPaid: decimal.NewFromInt(300), NextDueDate: &past})
	saveEntry(t, repo, estateID, property.EntryDetails{Amount: decimal.NewFromInt(1000), NextDueDate: &future})
	saveEntry(t, repo, estateID, property.EntryDetails{Amount: decimal.NewFromInt(500), AmountPaid: decimal.NewFromInt(500), NextDueDate: &past})

	candidates, err := repo.FindOverdueCandidates(ctx, now)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, late.ID, candidates[0].ID)

	summary, err := repo.Summarize(ctx, estateID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.EntryCount)
	assert.True(t, decimal.NewFromInt(2500).Equal(summary.TotalAmount))
	assert.True(t, decimal.NewFromInt(800).Equal(summary.TotalPaid))
	assert.Equal(t, int64(1), summary.StatusCounts[property.PaymentStatusPaid])
	assert.Equal(t, int64(1), summary.StatusCounts[property.PaymentStatusPartial])
	assert.Equal(t, int64(1), summary.StatusCounts[property.PaymentStatusPending])
	assert.Equal(t, int64(0), summary.StatusCounts[property.PaymentStatusOverdue])

	empty, err := repo.Summarize(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.EntryCount)
	assert.True(t, empty.TotalAmount.IsZero())
}

func TestGormEstateEntryRepository_DeleteScopedToEstate(t *testing.T) {
	ctx := context.Background()
	repo := NewGormEstateEntryRepository(newSQLiteDB(t))
	estateID := uuid.New()
	entry := saveEntry(t, repo, estateID, property.EntryDetails{Amount: decimal.NewFromInt(1)})

	assert.True(t, errors.Is(repo.Delete(ctx, uuid.New(), entry.ID), shared.ErrNotFound))
	require.NoError(t, repo.Delete(ctx, estateID, entry.ID))
	_, err := repo.FindByID(ctx, estateID, entry.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormEstateEntryRepository_UpdateSQL(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormEstateEntryRepository(db.DB)

	estateID := uuid.New()
	entryID := uuid.New()
	paid := decimal.NewFromInt(650000)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "estate_entries" SET "amount_paid"=$1,"updated_at"=$2 WHERE estate_id = $3 AND id = $4`)).
		WithArgs(paid, sqlmock.AnyArg(), estateID, entryID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Update(context.Background(), estateID, entryID, property.EntryUpdate{AmountPaid: &paid})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
