package invoicing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/invoicing"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type stubTemplate struct {
	last *ReceiptDocument
}

func (s *stubTemplate) Render(doc *ReceiptDocument) ([]byte, error) {
	s.last = doc
	return []byte("<html>" + doc.Number + "</html>"), nil
}

type stubPDF struct {
	title string
	err   error
}

func (s *stubPDF) ConvertHTML(_ context.Context, html []byte, title string) ([]byte, error) {
	s.title = title
	if s.err != nil {
		return nil, s.err
	}
	return append([]byte("%PDF-"), html...), nil
}

type stubStorage struct {
	objects map[string]string
}

func (s *stubStorage) Upload(_ context.Context, key string, data []byte, contentType string) error {
	s.objects[key] = contentType + "|" + string(data)
	return nil
}

func (s *stubStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://files.test/" + key, time.Now().Add(expiresIn), nil
}

func issueOne(t *testing.T, f *fixture) (*ReceiptResult, *property.Client) {
	t.Helper()
	ctx := context.Background()
	client, err := property.NewClient(property.ClientDetails{Name: "Ngozi Ade", Phone: "+234 801", Address: "12 Marina"})
	require.NoError(t, err)
	require.NoError(t, f.clients.Save(ctx, client))

	entry := f.entry(t, property.EntryDetails{
		ClientID:    &client.ID,
		ClientName:  client.Name,
		Amount:      dec(2500000),
		AmountPaid:  dec(500000),
		PlotNumbers: []string{"D7"},
	})
	result, err := f.receipts.IssueReceipt(ctx, f.estateID, entry.ID, IssueReceiptRequest{Amount: dec(750000)})
	require.NoError(t, err)
	return result, client
}

func TestReceiptDocumentService_BuildDocument(t *testing.T) {
	f := newFixture(t)
	result, client := issueOne(t, f)
	tmpl := &stubTemplate{}
	svc := NewReceiptDocumentService(f.invoices, f.clients, f.estates, tmpl, nil)

	doc, err := svc.BuildDocument(context.Background(), result.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Invoice.Number, doc.Number)
	assert.Equal(t, client.Name, doc.ClientName)
	assert.Equal(t, "12 Marina", doc.ClientAddress)
	assert.Equal(t, "Palm Gardens", doc.EstateName)
	assert.Equal(t, "Lekki", doc.EstateLocation)
	assert.Equal(t, "D7", doc.PlotNumber)
	assert.True(t, dec(750000).Equal(doc.AmountPaid))
	require.NotNil(t, doc.TotalPaid)
	assert.True(t, dec(1250000).Equal(*doc.TotalPaid))
	require.NotNil(t, doc.Balance)
	assert.True(t, dec(1250000).Equal(*doc.Balance))
	require.Len(t, doc.Lines, 1)
}

func TestReceiptDocumentService_FallsBackToSnapshotName(t *testing.T) {
	f := newFixture(t)
	result, client := issueOne(t, f)
	require.NoError(t, f.clients.Delete(context.Background(), client.ID))

	svc := NewReceiptDocumentService(f.invoices, f.clients, f.estates, &stubTemplate{}, nil)
	doc, err := svc.BuildDocument(context.Background(), result.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ngozi Ade", doc.ClientName)
	assert.Empty(t, doc.ClientAddress)
}

func TestReceiptDocumentService_RenderAndArchive(t *testing.T) {
	f := newFixture(t)
	result, _ := issueOne(t, f)
	ctx := context.Background()
	svc := NewReceiptDocumentService(f.invoices, f.clients, f.estates, &stubTemplate{}, nil)

	html, err := svc.RenderHTML(ctx, result.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeHTML, html.ContentType)
	assert.Equal(t, result.Invoice.Number+".html", html.Filename)

	_, err = svc.RenderPDF(ctx, result.Invoice.ID)
	assertCode(t, err, CodePDFDisabled)
	_, err = svc.Archive(ctx, result.Invoice.ID)
	assertCode(t, err, CodeArchiveDisabled)

	store := &stubStorage{objects: map[string]string{}}
	svc.SetStorage(store, time.Hour)

	archived, err := svc.Archive(ctx, result.Invoice.ID)
	require.NoError(t, err)
	year := time.Now().Format("2006")
	assert.Equal(t, "receipts/"+year+"/"+result.Invoice.Number+".html", archived.Key)
	assert.Equal(t, "https://files.test/"+archived.Key, archived.URL)
	assert.True(t, strings.HasPrefix(store.objects[archived.Key], ContentTypeHTML+"|<html>"))

	pdf := &stubPDF{}
	svc.SetPDFConverter(pdf)
	assert.True(t, svc.PDFEnabled())
	archived, err = svc.Archive(ctx, result.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, ContentTypePDF, archived.ContentType)
	assert.True(t, strings.HasSuffix(archived.Key, ".pdf"))
	assert.Equal(t, "Receipt "+result.Invoice.Number, pdf.title)

	pdf.err = errors.New("chrome crashed")
	_, err = svc.RenderPDF(ctx, result.Invoice.ID)
	assert.ErrorIs(t, err, pdf.err)

	_, err = svc.RenderHTML(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

type stubArchiver struct {
	ids []uuid.UUID
	err error
}

func (s *stubArchiver) Archive(_ context.Context, id uuid.UUID) (*ArchiveResponse, error) {
	s.ids = append(s.ids, id)
	if s.err != nil {
		return nil, s.err
	}
	return &ArchiveResponse{InvoiceID: id, Key: "receipts/" + id.String()}, nil
}

type otherEvent struct {
	shared.BaseDomainEvent
}

func TestArchiveOnIssueHandler(t *testing.T) {
	archiver := &stubArchiver{}
	h := NewArchiveOnIssueHandler(archiver, nil)
	assert.Equal(t, []string{invoicing.EventTypeReceiptIssued}, h.EventTypes())

	inv := &invoicing.Invoice{Number: "INV-9", AmountPaid: dec(5), Status: property.PaymentStatusPartial}
	inv.ID = uuid.New()
	event := invoicing.NewReceiptIssuedEvent(inv, uuid.New(), uuid.New(), dec(5))

	require.NoError(t, h.Handle(context.Background(), event))
	assert.Equal(t, []uuid.UUID{inv.ID}, archiver.ids)

	archiver.err = errors.New("bucket missing")
	err := h.Handle(context.Background(), event)
	assert.ErrorIs(t, err, archiver.err)

	other := &otherEvent{BaseDomainEvent: shared.NewBaseDomainEvent("Other", "Invoice", uuid.New())}
	assert.Error(t, h.Handle(context.Background(), other))
}

func TestInvoiceExportService_ExportXLSX(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issueOne(t, f)
	unlinked := f.entry(t, property.EntryDetails{ClientName: "Walk-in buyer", Amount: dec(1000), PlotNumbers: []string{"Z1", "Z2"}})
	_, err := f.receipts.IssueReceipt(ctx, f.estateID, unlinked.ID, IssueReceiptRequest{Amount: dec(1000), Notes: "full"})
	require.NoError(t, err)

	svc := NewInvoiceExportService(f.invoices, f.clients, f.estates)
	data, err := svc.ExportXLSX(ctx, InvoiceListFilter{EstateID: f.estateID.String()})
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	rows, err := wb.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeaders, rows[0])

	byNumber := map[string][]string{}
	for _, row := range rows[1:] {
		byNumber[row[0]] = row
	}
	walkIn := byNumber["INV-0002"]
	require.NotNil(t, walkIn)
	assert.Equal(t, "Walk-in buyer", walkIn[2])
	assert.Equal(t, "Palm Gardens", walkIn[3])
	assert.Equal(t, "Z1, Z2", walkIn[4])
	assert.Equal(t, "Paid", walkIn[7])
	assert.Equal(t, fmt.Sprint(1000), walkIn[6])

	linked := byNumber["INV-0001"]
	require.NotNil(t, linked)
	assert.Equal(t, "Ngozi Ade", linked[2])
	assert.Equal(t, "Partial", linked[7])
}
