package invoicing

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/invoicing"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Content types of rendered receipts
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypePDF  = "application/pdf"
)

// ReceiptLine is one printed line of a receipt
type ReceiptLine struct {
	Description string
	PlotDetails string
	Amount      decimal.Decimal
}

// ReceiptDocument is everything printed on a receipt
type ReceiptDocument struct {
	InvoiceID      uuid.UUID
	Number         string
	IssuedDate     time.Time
	DueDate        *time.Time
	Status         string
	ClientName     string
	ClientEmail    string
	ClientPhone    string
	ClientAddress  string
	EstateName     string
	EstateLocation string
	Lines          []ReceiptLine
	// PropertyAmount is the full price of the property
	PropertyAmount decimal.Decimal
	// AmountPaid is what this receipt records
	AmountPaid decimal.Decimal
	// TotalPaid and Balance are the running totals after this receipt. They
	// are only known for receipts that captured an entry snapshot.
	TotalPaid  *decimal.Decimal
	Balance    *decimal.Decimal
	PlotNumber string
	Notes      string
}

// RenderedDocument is a rendered receipt ready to be served
type RenderedDocument struct {
	Number      string
	Filename    string
	ContentType string
	Data        []byte
}

// ReceiptDocumentService renders receipts and archives them
type ReceiptDocumentService struct {
	invoiceRepo invoicing.InvoiceRepository
	clientRepo  property.ClientRepository
	estateRepo  property.EstateRepository
	template    ReceiptTemplate
	pdf         PDFConverter
	storage     ObjectStorage
	urlExpiry   time.Duration
	logger      *zap.Logger
}

// NewReceiptDocumentService creates a new ReceiptDocumentService. PDF
// rendering and archiving stay disabled until SetPDFConverter and
// SetStorage are called.
func NewReceiptDocumentService(
	invoiceRepo invoicing.InvoiceRepository,
	clientRepo property.ClientRepository,
	estateRepo property.EstateRepository,
	template ReceiptTemplate,
	logger *zap.Logger,
) *ReceiptDocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptDocumentService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		estateRepo:  estateRepo,
		template:    template,
		urlExpiry:   15 * time.Minute,
		logger:      logger,
	}
}

// SetPDFConverter enables PDF output
func (s *ReceiptDocumentService) SetPDFConverter(pdf PDFConverter) {
	s.pdf = pdf
}

// SetStorage enables archiving; urlExpiry bounds the returned links
func (s *ReceiptDocumentService) SetStorage(storage ObjectStorage, urlExpiry time.Duration) {
	s.storage = storage
	if urlExpiry > 0 {
		s.urlExpiry = urlExpiry
	}
}

// PDFEnabled reports whether RenderPDF can succeed
func (s *ReceiptDocumentService) PDFEnabled() bool {
	return s.pdf != nil
}

// BuildDocument collects the printable view of an invoice. Missing client
// or estate records do not fail the receipt; it falls back to the names
// captured at issuance.
func (s *ReceiptDocumentService) BuildDocument(ctx context.Context, invoiceID uuid.UUID) (*ReceiptDocument, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	doc := &ReceiptDocument{
		InvoiceID:      inv.ID,
		Number:         inv.Number,
		IssuedDate:     inv.IssuedDate,
		DueDate:        inv.DueDate,
		Status:         inv.Status.String(),
		PropertyAmount: inv.Amount,
		AmountPaid:     inv.AmountPaid,
		PlotNumber:     inv.PlotDetails(),
		Notes:          inv.Notes,
	}
	for _, item := range inv.Items {
		doc.Lines = append(doc.Lines, ReceiptLine{
			Description: item.Description,
			PlotDetails: item.PlotDetails,
			Amount:      item.Amount,
		})
	}
	if snap := inv.EntrySnapshot; snap != nil {
		total, balance := snap.AmountPaid, snap.Balance()
		doc.TotalPaid = &total
		doc.Balance = &balance
		doc.ClientName = snap.ClientName
	}

	if inv.ClientID != nil {
		client, err := s.clientRepo.FindByID(ctx, *inv.ClientID)
		switch {
		case err == nil:
			doc.ClientName = client.Name
			doc.ClientEmail = client.Email
			doc.ClientPhone = client.Phone
			doc.ClientAddress = client.Address
		case !shared.ErrNotFound.Is(err):
			return nil, err
		}
	}
	if inv.EstateID != nil {
		estate, err := s.estateRepo.FindByID(ctx, *inv.EstateID)
		switch {
		case err == nil:
			doc.EstateName = estate.Name
			doc.EstateLocation = estate.Location
		case !shared.ErrNotFound.Is(err):
			return nil, err
		}
	}
	return doc, nil
}

// RenderHTML renders the receipt of an invoice as HTML
func (s *ReceiptDocumentService) RenderHTML(ctx context.Context, invoiceID uuid.UUID) (*RenderedDocument, error) {
	doc, err := s.BuildDocument(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	html, err := s.template.Render(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return &RenderedDocument{
		Number:      doc.Number,
		Filename:    doc.Number + ".html",
		ContentType: ContentTypeHTML,
		Data:        html,
	}, nil
}

// RenderPDF renders the receipt of an invoice as PDF
func (s *ReceiptDocumentService) RenderPDF(ctx context.Context, invoiceID uuid.UUID) (*RenderedDocument, error) {
	if s.pdf == nil {
		return nil, shared.NewDomainError(CodePDFDisabled, "PDF rendering is not enabled")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "render_pdf")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrInvoiceID, invoiceID.String())

	html, err := s.RenderHTML(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	data, err := s.pdf.ConvertHTML(ctx, html.Data, "Receipt "+html.Number)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to convert receipt to PDF: %w", err)
	}
	telemetry.SetOK(span)
	return &RenderedDocument{
		Number:      html.Number,
		Filename:    html.Number + ".pdf",
		ContentType: ContentTypePDF,
		Data:        data,
	}, nil
}

// archiveKey places receipts under receipts/<year>/<number>.<ext>
func archiveKey(doc *RenderedDocument, issued time.Time) string {
	return path.Join("receipts", issued.Format("2006"), doc.Filename)
}

// Archive stores the receipt in object storage and returns a download
// link. The PDF is archived when PDF rendering is enabled, the HTML
// otherwise.
func (s *ReceiptDocumentService) Archive(ctx context.Context, invoiceID uuid.UUID) (*ArchiveResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError(CodeArchiveDisabled, "Receipt archiving is not enabled")
	}
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	var rendered *RenderedDocument
	if s.pdf != nil {
		rendered, err = s.RenderPDF(ctx, invoiceID)
	} else {
		rendered, err = s.RenderHTML(ctx, invoiceID)
	}
	if err != nil {
		return nil, err
	}

	key := archiveKey(rendered, inv.IssuedDate)
	if err := s.storage.Upload(ctx, key, rendered.Data, rendered.ContentType); err != nil {
		return nil, fmt.Errorf("failed to archive receipt: %w", err)
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.urlExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign receipt link: %w", err)
	}

	s.logger.Info("Receipt archived",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("key", key),
		zap.Int("bytes", len(rendered.Data)),
	)
	return &ArchiveResponse{
		InvoiceID:   invoiceID,
		Key:         key,
		ContentType: rendered.ContentType,
		URL:         url,
		ExpiresAt:   expiresAt,
	}, nil
}
