package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/invoicing"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/idgen"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repos struct {
	clients  *persistence.GormClientRepository
	estates  *persistence.GormEstateRepository
	entries  *persistence.GormEstateEntryRepository
	invoices *persistence.GormInvoiceRepository
}

func newRepos(t *testing.T, tdb *TestDB) repos {
	t.Helper()
	numbers, err := idgen.NewSnowflakeNumberGenerator("INV", 1)
	require.NoError(t, err)
	return repos{
		clients:  persistence.NewGormClientRepository(tdb.DB),
		estates:  persistence.NewGormEstateRepository(tdb.DB),
		entries:  persistence.NewGormEstateEntryRepository(tdb.DB),
		invoices: persistence.NewGormInvoiceRepository(tdb.DB, numbers),
	}
}

func (r repos) seedEstate(t *testing.T, name string) *property.Estate {
	t.Helper()
	estate, err := property.NewEstate(name, "Lekki", "")
	require.NoError(t, err)
	require.NoError(t, r.estates.Save(context.Background(), estate))
	return estate
}

func (r repos) seedEntry(t *testing.T, estateID uuid.UUID, details property.EntryDetails) *property.EstateEntry {
	t.Helper()
	entry, err := property.NewEstateEntry(estateID, details)
	require.NoError(t, err)
	require.NoError(t, r.entries.Save(context.Background(), entry))
	return entry
}

func TestPostgresRepositories(t *testing.T) {
	tdb := NewTestDB(t)
	r := newRepos(t, tdb)
	ctx := context.Background()

	t.Run("estate names are unique", func(t *testing.T) {
		tdb.CleanTables()
		estate := r.seedEstate(t, "Palm Court")

		exists, err := r.estates.ExistsByName(ctx, " palm court ", nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = r.estates.ExistsByName(ctx, "Palm Court", &estate.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		dup, err := property.NewEstate("Palm Court", "Ikoyi", "")
		require.NoError(t, err)
		assert.Error(t, r.estates.Save(ctx, dup), "unique index rejects the duplicate")
	})

	t.Run("estate with entries cannot be deleted", func(t *testing.T) {
		tdb.CleanTables()
		estate := r.seedEstate(t, "Cedar Gardens")
		r.seedEntry(t, estate.ID, property.EntryDetails{ClientName: "Ada", Amount: decimal.NewFromInt(1000)})

		assert.Error(t, r.estates.Delete(ctx, estate.ID))
	})

	t.Run("plot filter matches whole plot numbers", func(t *testing.T) {
		tdb.CleanTables()
		estate := r.seedEstate(t, "Oak Ridge")
		r.seedEntry(t, estate.ID, property.EntryDetails{ClientName: "Ada", Amount: decimal.NewFromInt(1000), PlotNumbers: []string{"A1", "A12"}})
		r.seedEntry(t, estate.ID, property.EntryDetails{ClientName: "Bola", Amount: decimal.NewFromInt(1000), PlotNumbers: []string{"A123"}})

		entries, total, err := r.entries.FindAll(ctx, property.EntryFilter{EstateID: &estate.ID, Plot: "A12"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, entries, 1)
		assert.Equal(t, "Ada", entries[0].ClientName)
		assert.Equal(t, []string{"A1", "A12"}, entries[0].PlotNumbers)
	})

	t.Run("overdue candidates and partial updates", func(t *testing.T) {
		tdb.CleanTables()
		estate := r.seedEstate(t, "Maple Close")
		past := time.Now().UTC().Add(-48 * time.Hour)
		future := time.Now().UTC().Add(48 * time.Hour)

		late := r.seedEntry(t, estate.ID, property.EntryDetails{
			ClientName: "Late", Amount: decimal.NewFromInt(1000), AmountPaid: decimal.NewFromInt(100), NextDueDate: &past,
		})
		r.seedEntry(t, estate.ID, property.EntryDetails{
			ClientName: "Early", Amount: decimal.NewFromInt(1000), NextDueDate: &future,
		})
		r.seedEntry(t, estate.ID, property.EntryDetails{
			ClientName: "Settled", Amount: decimal.NewFromInt(1000), AmountPaid: decimal.NewFromInt(1000), NextDueDate: &past,
		})

		candidates, err := r.entries.FindOverdueCandidates(ctx, time.Now().UTC())
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, late.ID, candidates[0].ID)

		overdue := property.PaymentStatusOverdue
		updated, err := r.entries.Update(ctx, estate.ID, late.ID, property.EntryUpdate{PaymentStatus: &overdue})
		require.NoError(t, err)
		assert.Equal(t, property.PaymentStatusOverdue, updated.PaymentStatus)
		assert.True(t, decimal.NewFromInt(100).Equal(updated.AmountPaid))

		summary, err := r.entries.Summarize(ctx, estate.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), summary.EntryCount)
		assert.Equal(t, int64(1), summary.StatusCounts[property.PaymentStatusOverdue])
		assert.True(t, decimal.NewFromInt(1900).Equal(summary.Outstanding()))

		_, err = r.entries.Update(ctx, uuid.New(), late.ID, property.EntryUpdate{PaymentStatus: &overdue})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("receipts keep their items and client link", func(t *testing.T) {
		tdb.CleanTables()
		estate := r.seedEstate(t, "Birch Hill")
		client, err := property.NewClient(property.ClientDetails{Name: "Chidi Eze", Email: "chidi@example.com"})
		require.NoError(t, err)
		require.NoError(t, r.clients.Save(ctx, client))

		entry := r.seedEntry(t, estate.ID, property.EntryDetails{
			ClientID: &client.ID, ClientName: client.Name, Amount: decimal.NewFromInt(500000), PlotNumbers: []string{"B4"},
		})
		payment, err := entry.ApplyPayment(decimal.NewFromInt(200000))
		require.NoError(t, err)

		first, err := r.invoices.Create(ctx, invoicing.NewReceipt(entry, payment, "first", time.Now().UTC()))
		require.NoError(t, err)
		second, err := r.invoices.Create(ctx, invoicing.NewReceipt(entry, payment, "second", time.Now().UTC()))
		require.NoError(t, err)
		assert.NotEqual(t, first.Number, second.Number)

		got, err := r.invoices.FindByID(ctx, first.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "B4", got.Items[0].PlotDetails)
		require.NotNil(t, got.ClientID)
		assert.Equal(t, client.ID, *got.ClientID)

		count, err := r.invoices.CountByClient(ctx, client.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		list, total, err := r.invoices.FindAll(ctx, invoicing.InvoiceFilter{EntryID: &entry.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, list, 2)

		require.NoError(t, r.invoices.Delete(ctx, first.ID))
		_, err = r.invoices.FindByID(ctx, first.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}
