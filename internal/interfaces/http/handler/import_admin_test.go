package handler

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	importapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/import"
	propertyapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *apiFixture) upload(t *testing.T, estateID uuid.UUID, filename, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/estates/"+estateID.String()+"/entries/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestImportHandler_CSV(t *testing.T) {
	f := newAPIFixture(t)
	estate := f.createEstate(t, "Palm Grove")

	csv := "Buyer,Price,Deposit,Plot\n" +
		"Ada Obi,1000,1000,A1\n" +
		"Bola Ade,2000,500,\"B1, B2\"\n" +
		"Chidi Eze,abc,0,C1\n"

	w := f.upload(t, estate.ID, "entries.csv", csv, map[string]string{
		"mapping":        `{"client":"Buyer","amount":"Price","amount_paid":"Deposit","plots":"Plot"}`,
		"create_clients": "true",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[importapp.EntryImportResult](t, w).Data
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 2, result.ImportedRows)
	assert.Equal(t, 1, result.ErrorRows)
	assert.Equal(t, 2, result.CreatedClients)
	assert.NotEmpty(t, result.Errors)

	w = f.do(http.MethodGet, "/api/v1/estates/"+estate.ID.String()+"/entries?status=Partial", nil)
	entries := decode[[]propertyapp.EntryResponse](t, w).Data
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"B1", "B2"}, entries[0].PlotNumbers)
	assert.NotNil(t, entries[0].ClientID)
}

func TestImportHandler_Errors(t *testing.T) {
	f := newAPIFixture(t)
	estate := f.createEstate(t, "Palm Grove")

	w := f.upload(t, estate.ID, "entries.pdf", "x", nil)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, dto.CodeInvalidImportType, decode[any](t, w).Error.Code)

	w = f.upload(t, estate.ID, "entries.csv", "amount\n100\n", map[string]string{"mapping": "[1,2]"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.upload(t, estate.ID, "entries.csv", "name,notes\nAda,hi\n", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.CodeMissingColumn, decode[any](t, w).Error.Code)

	w = f.do(http.MethodPost, "/api/v1/estates/"+estate.ID.String()+"/entries/import", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "file is required")
}

func TestAdminHandler_OverdueSweep(t *testing.T) {
	f := newAPIFixture(t)
	estate := f.createEstate(t, "Palm Grove")
	due := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	late := f.createEntry(t, estate.ID, map[string]any{"client_name": "Ada", "amount": "1000", "next_due_date": due})
	f.createEntry(t, estate.ID, map[string]any{"client_name": "Bola", "amount": "1000", "amount_paid": "1000", "next_due_date": due})

	w := f.do(http.MethodPost, "/api/v1/admin/overdue-sweep", map[string]any{"as_of": due.AddDate(0, 0, 1)})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[propertyapp.OverdueSweepResult](t, w).Data
	assert.Equal(t, 1, result.Marked)
	assert.Equal(t, []uuid.UUID{late.ID}, result.EntryIDs)

	w = f.do(http.MethodGet, entryPath(estate.ID, late.ID), nil)
	assert.Equal(t, "Overdue", decode[propertyapp.EntryResponse](t, w).Data.PaymentStatus)
}

func TestAdminHandler_OverdueSweepWithoutBody(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPost, "/api/v1/admin/overdue-sweep", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[propertyapp.OverdueSweepResult](t, w).Data.Marked)
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

type pooledPinger struct{ stubPinger }

func (pooledPinger) PoolStats() sql.DBStats {
	return sql.DBStats{OpenConnections: 3, InUse: 1, Idle: 2}
}

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name     string
		db       Pinger
		status   int
		database string
	}{
		{"memory", nil, http.StatusOK, "memory"},
		{"database up", stubPinger{}, http.StatusOK, "ok"},
		{"database down", stubPinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "error"},
		{"pool reported", pooledPinger{}, http.StatusOK, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler("pfo", "1.0.0", tt.db)
			router := gin.New()
			router.GET("/health", h.Health)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), `"database":"`+tt.database+`"`)
			if _, ok := tt.db.(pooledPinger); ok {
				assert.Contains(t, w.Body.String(), `"pool":{"open":3,"in_use":1,"idle":2,"wait_count":0}`)
			}
		})
	}
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("pfo", "1.2.3", nil)
	router := gin.New()
	router.GET("/system/info", h.GetSystemInfo)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/system/info", nil))

	require.Equal(t, http.StatusOK, w.Code)
	info := decode[SystemInfoResponse](t, w).Data
	assert.Equal(t, "pfo", info.Name)
	assert.Equal(t, "1.2.3", info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
