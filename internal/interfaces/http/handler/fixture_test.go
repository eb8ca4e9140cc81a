package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	importapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/import"
	invoicingapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/invoicing"
	propertyapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/auth"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/cache"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/idgen"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/persistence/memory"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubTemplate struct{}

func (stubTemplate) Render(doc *invoicingapp.ReceiptDocument) ([]byte, error) {
	return []byte("<html><body>Receipt " + doc.Number + "</body></html>"), nil
}

type stubPDF struct{}

func (stubPDF) ConvertHTML(_ context.Context, html []byte, _ string) ([]byte, error) {
	return append([]byte("%PDF-1.4\n"), html...), nil
}

// apiFixture serves the handlers on in-memory stores behind a fake
// authentication step
type apiFixture struct {
	clients  *memory.ClientStore
	estates  *memory.EstateStore
	entries  *memory.EntryStore
	invoices *memory.InvoiceStore
	docs     *invoicingapp.ReceiptDocumentService
	engine   *gin.Engine
	userID   uuid.UUID
	roles    []string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	numbers, err := idgen.NewSnowflakeNumberGenerator("INV", 1)
	require.NoError(t, err)

	f := &apiFixture{
		clients:  memory.NewClientStore(),
		estates:  memory.NewEstateStore(),
		entries:  memory.NewEntryStore(),
		invoices: memory.NewInvoiceStore(numbers),
		userID:   uuid.New(),
		roles:    []string{"admin"},
	}

	entrySvc := propertyapp.NewEntryService(f.estates, f.entries, f.clients)
	f.docs = invoicingapp.NewReceiptDocumentService(f.invoices, f.clients, f.estates, stubTemplate{}, nil)

	clientH := NewClientHandler(propertyapp.NewClientService(f.clients, f.entries), entrySvc)
	estateH := NewEstateHandler(propertyapp.NewEstateService(f.estates, f.entries))
	entryH := NewEntryHandler(entrySvc)
	receiptH := NewReceiptHandler(invoicingapp.NewReceiptService(f.entries, f.invoices, nil))
	importH := NewImportHandler(importapp.NewEntryImportService(f.estates, f.entries, f.clients, nil))
	invoiceH := NewInvoiceHandler(
		invoicingapp.NewInvoiceService(f.invoices, f.clients, f.estates),
		invoicingapp.NewInvoiceExportService(f.invoices, f.clients, f.estates),
	)
	docH := NewDocumentHandler(f.docs)
	adminH := NewAdminHandler(propertyapp.NewOverdueService(f.entries, nil, nil))

	idem := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idem.Close() })

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1", func(c *gin.Context) {
		if f.userID != uuid.Nil {
			c.Set(middleware.JWTClaimsKey, &auth.Claims{UserID: f.userID.String(), Roles: f.roles})
		}
		c.Next()
	})

	api.GET("/clients", clientH.List)
	api.POST("/clients", clientH.Create)
	api.GET("/clients/:id", clientH.GetByID)
	api.PUT("/clients/:id", clientH.Update)
	api.DELETE("/clients/:id", clientH.Delete)
	api.GET("/clients/:id/entries", clientH.ListEntries)

	api.GET("/estates", estateH.List)
	api.POST("/estates", estateH.Create)
	api.GET("/estates/:id", estateH.GetByID)
	api.PUT("/estates/:id", estateH.Update)
	api.DELETE("/estates/:id", estateH.Delete)
	api.GET("/estates/:id/summary", estateH.Summary)

	api.GET("/estates/:id/entries", entryH.List)
	api.POST("/estates/:id/entries", entryH.Create)
	api.POST("/estates/:id/entries/import", importH.ImportEntries)
	api.GET("/estates/:id/entries/:entryId", entryH.GetByID)
	api.PUT("/estates/:id/entries/:entryId", entryH.Update)
	api.DELETE("/estates/:id/entries/:entryId", entryH.Delete)
	api.POST("/estates/:id/entries/:entryId/receipts",
		middleware.Idempotency(middleware.IdempotencyConfig{Store: idem}), receiptH.Issue)

	api.GET("/invoices", invoiceH.List)
	api.POST("/invoices", invoiceH.Create)
	api.GET("/invoices/export", invoiceH.Export)
	api.GET("/invoices/:id", invoiceH.GetByID)
	api.PATCH("/invoices/:id", invoiceH.Update)
	api.DELETE("/invoices/:id", invoiceH.Delete)
	api.GET("/invoices/:id/receipt", docH.Receipt)
	api.POST("/invoices/:id/archive", docH.Archive)

	api.POST("/admin/overdue-sweep", adminH.OverdueSweep)

	f.engine = engine
	return f
}

func (f *apiFixture) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, _ := json.Marshal(b)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

// decode unmarshals a response envelope
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) APIResponse[T] {
	t.Helper()
	var resp APIResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func (f *apiFixture) createEstate(t *testing.T, name string) propertyapp.EstateResponse {
	t.Helper()
	w := f.do(http.MethodPost, "/api/v1/estates", map[string]any{"name": name, "location": "Lekki"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[propertyapp.EstateResponse](t, w).Data
}

func (f *apiFixture) createClient(t *testing.T, name string) propertyapp.ClientResponse {
	t.Helper()
	w := f.do(http.MethodPost, "/api/v1/clients", map[string]any{"name": name, "email": "ada@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[propertyapp.ClientResponse](t, w).Data
}

func (f *apiFixture) createEntry(t *testing.T, estateID uuid.UUID, body map[string]any) propertyapp.EntryResponse {
	t.Helper()
	w := f.do(http.MethodPost, "/api/v1/estates/"+estateID.String()+"/entries", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[propertyapp.EntryResponse](t, w).Data
}

func entryPath(estateID, entryID uuid.UUID) string {
	return "/api/v1/estates/" + estateID.String() + "/entries/" + entryID.String()
}

func (f *apiFixture) issueReceipt(t *testing.T, estateID, entryID uuid.UUID, amount string) invoicingapp.ReceiptResult {
	t.Helper()
	w := f.do(http.MethodPost, entryPath(estateID, entryID)+"/receipts", map[string]any{"amount": amount})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[invoicingapp.ReceiptResult](t, w).Data
}
