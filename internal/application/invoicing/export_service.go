package invoicing

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/invoicing"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the media type of exported workbooks
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	exportSheet    = "Invoices"
	exportPageSize = 500
	// exportMaxRows caps a single workbook
	exportMaxRows = 50000
)

var exportHeaders = []string{
	"Number", "Issued", "Client", "Estate", "Plots",
	"Property Amount", "Amount Paid", "Status", "Due Date", "Notes",
}

// InvoiceExportService writes invoice listings to spreadsheets
type InvoiceExportService struct {
	invoiceRepo invoicing.InvoiceRepository
	clientRepo  property.ClientRepository
	estateRepo  property.EstateRepository
}

// NewInvoiceExportService creates a new InvoiceExportService
func NewInvoiceExportService(
	invoiceRepo invoicing.InvoiceRepository,
	clientRepo property.ClientRepository,
	estateRepo property.EstateRepository,
) *InvoiceExportService {
	return &InvoiceExportService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		estateRepo:  estateRepo,
	}
}

// nameCache memoises client and estate names for one export
type nameCache struct {
	ctx     context.Context
	svc     *InvoiceExportService
	clients map[uuid.UUID]string
	estates map[uuid.UUID]string
}

func (c *nameCache) client(inv *invoicing.Invoice) string {
	if inv.ClientID == nil {
		if inv.EntrySnapshot != nil {
			return inv.EntrySnapshot.ClientName
		}
		return ""
	}
	if name, ok := c.clients[*inv.ClientID]; ok {
		return name
	}
	name := ""
	if client, err := c.svc.clientRepo.FindByID(c.ctx, *inv.ClientID); err == nil {
		name = client.Name
	}
	c.clients[*inv.ClientID] = name
	return name
}

func (c *nameCache) estate(inv *invoicing.Invoice) string {
	if inv.EstateID == nil {
		return ""
	}
	if name, ok := c.estates[*inv.EstateID]; ok {
		return name
	}
	name := ""
	if estate, err := c.svc.estateRepo.FindByID(c.ctx, *inv.EstateID); err == nil {
		name = estate.Name
	}
	c.estates[*inv.EstateID] = name
	return name
}

// ExportXLSX writes every invoice matching the filter, ignoring its paging,
// into a single-sheet workbook
func (s *InvoiceExportService) ExportXLSX(ctx context.Context, filter InvoiceListFilter) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to prepare sheet: %w", err)
	}
	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(exportSheet, 1, 1, style)
	}

	names := &nameCache{
		ctx:     ctx,
		svc:     s,
		clients: make(map[uuid.UUID]string),
		estates: make(map[uuid.UUID]string),
	}

	domainFilter := filter.toDomain()
	domainFilter.PageSize = exportPageSize
	row := 2
	for page := 1; ; page++ {
		domainFilter.Page = page
		invoices, total, err := s.invoiceRepo.FindAll(ctx, domainFilter)
		if err != nil {
			return nil, err
		}
		for i := range invoices {
			if row-1 > exportMaxRows {
				return nil, shared.NewValidationError(shared.CodeInvalidInput,
					fmt.Sprintf("Export is limited to %d invoices; narrow the filter", exportMaxRows))
			}
			if err := writeInvoiceRow(f, row, &invoices[i], names); err != nil {
				return nil, err
			}
			row++
		}
		if len(invoices) == 0 || int64(page*exportPageSize) >= total {
			break
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 24)
	_ = f.SetColWidth(exportSheet, "C", "E", 28)
	_ = f.SetColWidth(exportSheet, "J", "J", 40)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeInvoiceRow(f *excelize.File, row int, inv *invoicing.Invoice, names *nameCache) error {
	amount, _ := inv.Amount.Float64()
	paid, _ := inv.AmountPaid.Float64()
	due := ""
	if inv.DueDate != nil {
		due = inv.DueDate.Format("2006-01-02")
	}
	values := []any{
		inv.Number,
		inv.IssuedDate.Format("2006-01-02"),
		names.client(inv),
		names.estate(inv),
		inv.PlotDetails(),
		amount,
		paid,
		inv.Status.String(),
		due,
		inv.Notes,
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
