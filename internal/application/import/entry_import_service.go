package importapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/tabular"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Entry fields a file column can be mapped to
const (
	FieldClient      = "client"
	FieldAmount      = "amount"
	FieldAmountPaid  = "amount_paid"
	FieldPlots       = "plots"
	FieldNextDueDate = "next_due_date"
	FieldNotes       = "notes"
)

// Import error codes
const (
	CodeInvalidFile   = "INVALID_IMPORT_FILE"
	CodeMissingColumn = "MISSING_COLUMN"
	CodeInvalidFormat = "INVALID_IMPORT_FORMAT"
)

const maxRowErrors = 200

// EntryFields lists the mappable fields in file order
var EntryFields = []string{FieldClient, FieldAmount, FieldAmountPaid, FieldPlots, FieldNextDueDate, FieldNotes}

// headerAliases are common spreadsheet spellings of each field
var headerAliases = map[string][]string{
	FieldClient:      {"client name", "name", "customer", "buyer"},
	FieldAmount:      {"price", "property amount", "total", "cost"},
	FieldAmountPaid:  {"paid", "deposit", "amount received"},
	FieldPlots:       {"plot", "plot number", "plot numbers", "plot no"},
	FieldNextDueDate: {"due date", "next due", "next payment"},
	FieldNotes:       {"note", "remarks", "comment"},
}

// ImportRecorder receives the outcome of import runs
type ImportRecorder interface {
	RecordImport(ctx context.Context, format string, imported, failed int, elapsed time.Duration)
}

// EntryImportOptions controls one import run
type EntryImportOptions struct {
	// Mapping maps an entry field to the file header holding it. Unmapped
	// fields are matched by name.
	Mapping map[string]string `json:"mapping"`
	// CreateClients creates a client for every unknown name. Otherwise the
	// entry stays unlinked and keeps the name as written.
	CreateClients bool `json:"create_clients"`
}

// EntryImportResult summarizes an import run
type EntryImportResult struct {
	TotalRows      int                `json:"total_rows"`
	ImportedRows   int                `json:"imported_rows"`
	ErrorRows      int                `json:"error_rows"`
	CreatedClients int                `json:"created_clients"`
	Columns        map[string]string  `json:"columns"`
	Errors         []tabular.RowError `json:"errors,omitempty"`
	IsTruncated    bool               `json:"is_truncated,omitempty"`
	TotalErrors    int                `json:"total_errors,omitempty"`
	EntryIDs       []uuid.UUID        `json:"entry_ids,omitempty"`
}

// EntryImportService loads estate entries from CSV or XLSX files
type EntryImportService struct {
	estateRepo property.EstateRepository
	entryRepo  property.EstateEntryRepository
	clientRepo property.ClientRepository
	recorder   ImportRecorder
	logger     *zap.Logger
	now        func() time.Time
}

// NewEntryImportService creates a new EntryImportService
func NewEntryImportService(
	estateRepo property.EstateRepository,
	entryRepo property.EstateEntryRepository,
	clientRepo property.ClientRepository,
	logger *zap.Logger,
) *EntryImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntryImportService{
		estateRepo: estateRepo,
		entryRepo:  entryRepo,
		clientRepo: clientRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// SetRecorder sets the metrics recorder
func (s *EntryImportService) SetRecorder(recorder ImportRecorder) {
	s.recorder = recorder
}

func validationRules() []tabular.FieldRule {
	return []tabular.FieldRule{
		tabular.Field(FieldClient).MaxLength(200).Build(),
		tabular.Field(FieldAmount).Required().Decimal().MinValue(decimal.Zero).Build(),
		tabular.Field(FieldAmountPaid).Decimal().MinValue(decimal.Zero).Build(),
		tabular.Field(FieldPlots).MaxLength(500).Build(),
		tabular.Field(FieldNextDueDate).Date().Build(),
		tabular.Field(FieldNotes).MaxLength(2000).Build(),
	}
}

// Import reads a file and adds one entry per valid row to the estate.
// Invalid rows are reported and skipped; the rest are imported.
func (s *EntryImportService) Import(
	ctx context.Context,
	estateID uuid.UUID,
	format tabular.Format,
	r io.Reader,
	opts EntryImportOptions,
) (*EntryImportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "entry_import", "import")
	defer span.End()
	start := s.now()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrEstateID, estateID.String(),
		telemetry.SpanAttrImportFormat, string(format),
	)

	if _, err := s.estateRepo.FindByID(ctx, estateID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	for field := range opts.Mapping {
		if !isEntryField(field) {
			return nil, shared.NewValidationError(CodeMissingColumn, fmt.Sprintf("Unknown entry field %q in mapping", field))
		}
	}

	table, err := tabular.Read(r, format)
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, tabular.ErrUnknownFormat) {
			return nil, shared.NewValidationError(CodeInvalidFormat, err.Error())
		}
		return nil, shared.NewValidationError(CodeInvalidFile, err.Error())
	}
	columns, err := tabular.Remap(table, EntryFields, opts.Mapping, headerAliases)
	if err != nil {
		return nil, shared.NewValidationError(CodeMissingColumn, err.Error())
	}
	if _, ok := columns[FieldAmount]; !ok {
		return nil, shared.NewValidationError(CodeMissingColumn, "No column found for the amount field")
	}

	result := &EntryImportResult{TotalRows: len(table.Rows), Columns: columns}
	telemetry.SetAttributes(span, telemetry.SpanAttrRowCount, result.TotalRows)

	validator := tabular.NewFieldValidator(validationRules(), maxRowErrors)
	resolver := &clientResolver{repo: s.clientRepo, create: opts.CreateClients, cache: map[string]*property.Client{}}

	for _, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if !validator.ValidateRow(row) {
			result.ErrorRows++
			continue
		}
		entryID, rowErr := s.importRow(ctx, estateID, row, resolver)
		if rowErr != nil {
			validator.Errors().Add(*rowErr)
			result.ErrorRows++
			continue
		}
		result.ImportedRows++
		result.EntryIDs = append(result.EntryIDs, entryID)
	}

	errs := validator.Errors()
	result.Errors = errs.Errors()
	result.TotalErrors = errs.TotalCount()
	result.IsTruncated = errs.IsTruncated()
	result.CreatedClients = resolver.created

	elapsed := s.now().Sub(start)
	if s.recorder != nil {
		s.recorder.RecordImport(ctx, string(format), result.ImportedRows, result.ErrorRows, elapsed)
	}
	s.logger.Info("Estate entries imported",
		zap.String("estate_id", estateID.String()),
		zap.String("format", string(format)),
		zap.Int("total", result.TotalRows),
		zap.Int("imported", result.ImportedRows),
		zap.Int("failed", result.ErrorRows),
		zap.Int("created_clients", result.CreatedClients),
		zap.Duration("elapsed", elapsed),
	)
	telemetry.SetOK(span)
	return result, nil
}

func (s *EntryImportService) importRow(
	ctx context.Context,
	estateID uuid.UUID,
	row *tabular.Row,
	resolver *clientResolver,
) (uuid.UUID, *tabular.RowError) {
	rowError := func(column, code, msg string) *tabular.RowError {
		e := tabular.NewRowError(row.LineNumber, column, code, msg)
		return &e
	}

	amount, _ := tabular.ParseAmount(row.Get(FieldAmount))
	paid := decimal.Zero
	if v := row.Get(FieldAmountPaid); v != "" {
		paid, _ = tabular.ParseAmount(v)
	}
	var due *time.Time
	if v := row.Get(FieldNextDueDate); v != "" {
		t, _ := tabular.ParseDate(v)
		due = &t
	}

	clientName := row.Get(FieldClient)
	var clientID *uuid.UUID
	if clientName != "" {
		client, err := resolver.resolve(ctx, clientName)
		if err != nil {
			s.logger.Warn("Failed to resolve import client",
				zap.Int("row", row.LineNumber), zap.String("client", clientName), zap.Error(err))
			return uuid.Nil, rowError(FieldClient, tabular.ErrCodeReference, "client could not be resolved: "+err.Error())
		}
		if client != nil {
			clientID = &client.ID
			clientName = client.Name
		}
	}

	entry, err := property.NewEstateEntry(estateID, property.EntryDetails{
		ClientID:    clientID,
		ClientName:  clientName,
		Amount:      amount,
		AmountPaid:  paid,
		PlotNumbers: property.ParsePlotNumbers(row.Get(FieldPlots)),
		NextDueDate: due,
		Notes:       row.Get(FieldNotes),
	})
	if err != nil {
		column := ""
		var de *shared.DomainError
		if errors.As(err, &de) && de.Code == property.CodeInvalidAmount {
			column = FieldAmountPaid
		}
		return uuid.Nil, rowError(column, tabular.ErrCodeValidation, err.Error())
	}
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		s.logger.Error("Failed to save imported entry", zap.Int("row", row.LineNumber), zap.Error(err))
		return uuid.Nil, rowError("", tabular.ErrCodeValidation, "entry could not be saved")
	}
	return entry.ID, nil
}

func isEntryField(field string) bool {
	for _, f := range EntryFields {
		if f == field {
			return true
		}
	}
	return false
}

// clientResolver looks clients up by name once per import
type clientResolver struct {
	repo    property.ClientRepository
	create  bool
	cache   map[string]*property.Client
	created int
}

// resolve returns nil when the client is unknown and creation is off
func (r *clientResolver) resolve(ctx context.Context, name string) (*property.Client, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := r.cache[key]; ok {
		return c, nil
	}

	client, err := r.repo.FindByName(ctx, name)
	switch {
	case err == nil:
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	case !r.create:
		client = nil
	default:
		client, err = property.NewClient(property.ClientDetails{Name: name})
		if err != nil {
			return nil, err
		}
		if err := r.repo.Save(ctx, client); err != nil {
			return nil, err
		}
		r.created++
	}
	r.cache[key] = client
	return client, nil
}
