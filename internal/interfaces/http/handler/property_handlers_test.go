package handler

import (
	"net/http"
	"testing"

	propertyapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientHandler_CreateAndGet(t *testing.T) {
	f := newAPIFixture(t)

	client := f.createClient(t, "Ada Obi")
	assert.Equal(t, "Ada Obi", client.Name)

	w := f.do(http.MethodGet, "/api/v1/clients/"+client.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, client.ID, decode[propertyapp.ClientResponse](t, w).Data.ID)
}

func TestClientHandler_Create_Validation(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPost, "/api/v1/clients", map[string]any{"email": "not-an-email"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[any](t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Details)
}

func TestClientHandler_Create_InvalidJSON(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPost, "/api/v1/clients", `{"name":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClientHandler_GetByID_Errors(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodGet, "/api/v1/clients/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodGet, "/api/v1/clients/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode[any](t, w)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestClientHandler_ListPaginates(t *testing.T) {
	f := newAPIFixture(t)
	f.createClient(t, "Ada Obi")
	f.createClient(t, "Bola Ade")
	f.createClient(t, "Chidi Eze")

	w := f.do(http.MethodGet, "/api/v1/clients?page=1&page_size=2", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[[]propertyapp.ClientResponse](t, w)
	assert.Len(t, resp.Data, 2)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(3), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)
	assert.Equal(t, 1, resp.Meta.Page)
}

func TestClientHandler_Update(t *testing.T) {
	f := newAPIFixture(t)
	client := f.createClient(t, "Ada Obi")

	w := f.do(http.MethodPut, "/api/v1/clients/"+client.ID.String(), map[string]any{"phone": "+2348000000000"})

	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[propertyapp.ClientResponse](t, w).Data
	assert.Equal(t, "+2348000000000", updated.Phone)
	assert.Equal(t, "Ada Obi", updated.Name)
}

func TestClientHandler_DeleteInUse(t *testing.T) {
	f := newAPIFixture(t)
	estate := f.createEstate(t, "Palm Grove")
	client := f.createClient(t, "Ada Obi")
	f.createEntry(t, estate.ID, map[string]any{"client_id": client.ID, "amount": "1000"})

	w := f.do(http.MethodDelete, "/api/v1/clients/"+client.ID.String(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.CodeClientInUse, decode[any](t, w).Error.Code)

	w = f.do(http.MethodGet, "/api/v1/clients/"+client.ID.String()+"/entries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]propertyapp.EntryResponse](t, w).Data, 1)

	unused := f.createClient(t, "Bola Ade")
	w = f.do(http.MethodDelete, "/api/v1/clients/"+unused.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestEstateHandler_DuplicateName(t *testing.T) {
	f := newAPIFixture(t)
	f.createEstate(t, "Palm Grove")

	w := f.do(http.MethodPost, "/api/v1/estates", map[string]any{"name": "Palm Grove"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.CodeEstateNameExists, decode[any](t, w).Error.Code)
}

func TestEstateHandler_Summary(t *testing.T) {
	f := newAPIFixture(t)
	estate := f.createEstate(t, "Palm Grove")
	f.createEntry(t, estate.ID, map[string]any{"client_name": "Ada", "amount": "1000", "amount_paid": "1000"})
	f.createEntry(t, estate.ID, map[string]any{"client_name": "Bola", "amount": "2000", "amount_paid": "500"})
	f.createEntry(t, estate.ID, map[string]any{"client_name": "Chidi", "amount": "3000"})

	w := f.do(http.MethodGet, "/api/v1/estates/"+estate.ID.String()+"/summary", nil)

	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[propertyapp.EstateSummaryResponse](t, w).Data
	assert.Equal(t, int64(3), summary.EntryCount)
	assert.Equal(t, "6000", summary.TotalAmount.String())
	assert.Equal(t, "1500", summary.TotalPaid.String())
	assert.Equal(t, "4500", summary.Outstanding.String())
	assert.Equal(t, int64(1), summary.StatusCounts["Paid"])
	assert.Equal(t, int64(1), summary.StatusCounts["Partial"])
	assert.Equal(t, int64(1), summary.StatusCounts["Pending"])
	assert.Equal(t, int64(0), summary.StatusCounts["Overdue"])
}

func TestEstateHandler_DeleteNotEmpty(t *testing.T) {
	f := newAPIFixture(t)
	estate := f.createEstate(t, "Palm Grove")
	entry := f.createEntry(t, estate.ID, map[string]any{"client_name": "Ada", "amount": "1000"})

	w := f.do(http.MethodDelete, "/api/v1/estates/"+estate.ID.String(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.CodeEstateNotEmpty, decode[any](t, w).Error.Code)

	require.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, entryPath(estate.ID, entry.ID), nil).Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/v1/estates/"+estate.ID.String(), nil).Code)
}

func TestEntryHandler_CreateDerivesStatus(t *testing.T) {
	f := newAPIFixture(t)
	estate := f.createEstate(t, "Palm Grove")

	entry := f.createEntry(t, estate.ID, map[string]any{
		"client_name":  "Ada",
		"amount":       "5000",
		"amount_paid":  "2000",
		"plot_numbers": []string{"A1", "A2"},
	})

	assert.Equal(t, "Partial", entry.PaymentStatus)
	assert.Equal(t, "3000", entry.Balance.String())
	assert.Equal(t, []string{"A1", "A2"}, entry.PlotNumbers)
	assert.Nil(t, entry.ClientID)
}

func TestEntryHandler_CreateRejectsOverpaid(t *testing.T) {
	f := newAPIFixture(t)
	estate := f.createEstate(t, "Palm Grove")

	w := f.do(http.MethodPost, "/api/v1/estates/"+estate.ID.String()+"/entries",
		map[string]any{"amount": "1000", "amount_paid": "1500"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.CodeInvalidAmount, decode[any](t, w).Error.Code)
}

func TestEntryHandler_CreateUnknownEstate(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPost, "/api/v1/estates/"+uuid.NewString()+"/entries", map[string]any{"amount": "1000"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEntryHandler_ListFiltersByStatus(t *testing.T) {
	f := newAPIFixture(t)
	estate := f.createEstate(t, "Palm Grove")
	f.createEntry(t, estate.ID, map[string]any{"client_name": "Ada", "amount": "1000", "amount_paid": "1000"})
	f.createEntry(t, estate.ID, map[string]any{"client_name": "Bola", "amount": "1000"})

	w := f.do(http.MethodGet, "/api/v1/estates/"+estate.ID.String()+"/entries?status=Pending", nil)

	require.Equal(t, http.StatusOK, w.Code)
	entries := decode[[]propertyapp.EntryResponse](t, w).Data
	require.Len(t, entries, 1)
	assert.Equal(t, "Bola", entries[0].ClientName)

	w = f.do(http.MethodGet, "/api/v1/estates/"+estate.ID.String()+"/entries?status=Unknown", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEntryHandler_UpdateRederivesStatus(t *testing.T) {
	f := newAPIFixture(t)
	estate := f.createEstate(t, "Palm Grove")
	entry := f.createEntry(t, estate.ID, map[string]any{"client_name": "Ada", "amount": "1000"})

	w := f.do(http.MethodPut, entryPath(estate.ID, entry.ID), map[string]any{"amount_paid": "1000"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Paid", decode[propertyapp.EntryResponse](t, w).Data.PaymentStatus)

	w = f.do(http.MethodGet, entryPath(estate.ID, entry.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1000", decode[propertyapp.EntryResponse](t, w).Data.AmountPaid.String())
}

func TestEntryHandler_WrongEstate(t *testing.T) {
	f := newAPIFixture(t)
	estate := f.createEstate(t, "Palm Grove")
	other := f.createEstate(t, "Cedar Park")
	entry := f.createEntry(t, estate.ID, map[string]any{"client_name": "Ada", "amount": "1000"})

	w := f.do(http.MethodGet, entryPath(other.ID, entry.ID), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
