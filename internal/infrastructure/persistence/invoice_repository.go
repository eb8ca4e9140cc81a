package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/invoicing"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements invoicing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db      *gorm.DB
	numbers invoicing.NumberGenerator
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB, numbers invoicing.NumberGenerator) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db, numbers: numbers}
}

// Create stores a new invoice with its items. ID, number and timestamps
// are assigned here when missing.
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *invoicing.Invoice) (*invoicing.Invoice, error) {
	stored := *invoice
	now := time.Now()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.Number == "" {
		stored.Number = r.numbers.Next()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	model := models.InvoiceModelFromDomain(&stored)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds an invoice with its items
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("invoice", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of invoices and the total match count
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, int64, error) {
	f := filter.Normalize()
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoiceModels []models.InvoiceModel
	if err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Order(invoiceSort.order(f)).
		Offset(f.Offset()).Limit(f.PageSize).
		Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]invoicing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, total, nil
}

// Save updates the editable header fields of an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ?", invoice.ID).
		Updates(map[string]any{
			"notes":      invoice.Notes,
			"due_date":   invoice.DueDate,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("invoice", invoice.ID)
	}
	return nil
}

// Delete removes an invoice and its items
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.InvoiceItemModel{}, "invoice_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.InvoiceModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError("invoice", id)
		}
		return nil
	})
}

// CountByClient counts the invoices issued to a client
func (r *GormInvoiceRepository) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("client_id = ?", clientID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter invoicing.InvoiceFilter) *gorm.DB {
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.EstateID != nil {
		query = query.Where("estate_id = ?", *filter.EstateID)
	}
	if filter.EntryID != nil {
		query = query.Where("id IN (?)",
			r.db.Model(&models.InvoiceItemModel{}).Select("invoice_id").Where("estate_entry_id = ?", *filter.EntryID))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.IssuedFrom != nil {
		query = query.Where("issued_date >= ?", *filter.IssuedFrom)
	}
	if filter.IssuedTo != nil {
		query = query.Where("issued_date <= ?", *filter.IssuedTo)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		op := likeOperator(r.db)
		query = query.Where("number "+op+" ? OR notes "+op+" ?", pattern, pattern)
	}
	return query
}
