package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormEstateEntryRepository implements property.EstateEntryRepository using GORM
type GormEstateEntryRepository struct {
	db *gorm.DB
}

// NewGormEstateEntryRepository creates a new GormEstateEntryRepository
func NewGormEstateEntryRepository(db *gorm.DB) *GormEstateEntryRepository {
	return &GormEstateEntryRepository{db: db}
}

// FindByID finds an entry within its estate
func (r *GormEstateEntryRepository) FindByID(ctx context.Context, estateID, entryID uuid.UUID) (*property.EstateEntry, error) {
	var model models.EstateEntryModel
	if err := r.db.WithContext(ctx).
		Where("estate_id = ? AND id = ?", estateID, entryID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("estate entry", entryID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of entries and the total match count
func (r *GormEstateEntryRepository) FindAll(ctx context.Context, filter property.EntryFilter) ([]property.EstateEntry, int64, error) {
	f := filter.Normalize()
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.EstateEntryModel{}), filter)

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entryModels []models.EstateEntryModel
	if err := query.
		Order(entrySort.order(f)).
		Offset(f.Offset()).Limit(f.PageSize).
		Find(&entryModels).Error; err != nil {
		return nil, 0, err
	}
	return toEntries(entryModels), total, nil
}

// FindOverdueCandidates returns unsettled entries whose due date has passed
func (r *GormEstateEntryRepository) FindOverdueCandidates(ctx context.Context, asOf time.Time) ([]property.EstateEntry, error) {
	var entryModels []models.EstateEntryModel
	if err := r.db.WithContext(ctx).
		Where("payment_status IN ?", []property.PaymentStatus{property.PaymentStatusPending, property.PaymentStatusPartial}).
		Where("next_due_date IS NOT NULL AND next_due_date < ?", asOf).
		Where("amount_paid < amount").
		Order("next_due_date ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toEntries(entryModels), nil
}

// Save creates or updates an entry
func (r *GormEstateEntryRepository) Save(ctx context.Context, entry *property.EstateEntry) error {
	return r.db.WithContext(ctx).Save(models.EstateEntryModelFromDomain(entry)).Error
}

// Update writes only the fields set on the update, then reloads the entry
func (r *GormEstateEntryRepository) Update(ctx context.Context, estateID, entryID uuid.UUID, update property.EntryUpdate) (*property.EstateEntry, error) {
	if update.IsEmpty() {
		return r.FindByID(ctx, estateID, entryID)
	}

	changes := map[string]any{"updated_at": time.Now()}
	if update.AmountPaid != nil {
		changes["amount_paid"] = *update.AmountPaid
	}
	if update.PaymentStatus != nil {
		changes["payment_status"] = *update.PaymentStatus
	}
	if update.NextDueDate != nil {
		changes["next_due_date"] = *update.NextDueDate
	}

	query := r.db.WithContext(ctx).
		Model(&models.EstateEntryModel{}).
		Where("estate_id = ? AND id = ?", estateID, entryID)
	if update.Unsettled {
		query = query.
			Where("payment_status IN ?", []property.PaymentStatus{property.PaymentStatusPending, property.PaymentStatusPartial}).
			Where("amount_paid < amount")
	}
	result := query.Updates(changes)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if !update.Unsettled {
			return nil, shared.NewNotFoundError("estate entry", entryID)
		}
		if _, err := r.FindByID(ctx, estateID, entryID); err != nil {
			return nil, err
		}
		return nil, property.ErrEntryChanged
	}
	return r.FindByID(ctx, estateID, entryID)
}

// Delete deletes an entry within its estate
func (r *GormEstateEntryRepository) Delete(ctx context.Context, estateID, entryID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.EstateEntryModel{}, "estate_id = ? AND id = ?", estateID, entryID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("estate entry", entryID)
	}
	return nil
}

// CountByEstate counts the entries of an estate
func (r *GormEstateEntryRepository) CountByEstate(ctx context.Context, estateID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.EstateEntryModel{}).
		Where("estate_id = ?", estateID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByClient counts the entries linked to a client
func (r *GormEstateEntryRepository) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.EstateEntryModel{}).
		Where("client_id = ?", clientID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type statusTotals struct {
	PaymentStatus property.PaymentStatus
	Entries       int64
	TotalAmount   decimal.Decimal
	TotalPaid     decimal.Decimal
}

// Summarize aggregates the entries of an estate per payment status
func (r *GormEstateEntryRepository) Summarize(ctx context.Context, estateID uuid.UUID) (*property.EstateSummary, error) {
	var rows []statusTotals
	if err := r.db.WithContext(ctx).
		Model(&models.EstateEntryModel{}).
		Select("payment_status, COUNT(*) AS entries, COALESCE(SUM(amount), 0) AS total_amount, COALESCE(SUM(amount_paid), 0) AS total_paid").
		Where("estate_id = ?", estateID).
		Group("payment_status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	summary := &property.EstateSummary{
		EstateID:     estateID,
		TotalAmount:  decimal.Zero,
		TotalPaid:    decimal.Zero,
		StatusCounts: make(map[property.PaymentStatus]int64, len(property.AllPaymentStatuses())),
	}
	for _, status := range property.AllPaymentStatuses() {
		summary.StatusCounts[status] = 0
	}
	for _, row := range rows {
		summary.EntryCount += row.Entries
		summary.TotalAmount = summary.TotalAmount.Add(row.TotalAmount)
		summary.TotalPaid = summary.TotalPaid.Add(row.TotalPaid)
		summary.StatusCounts[row.PaymentStatus] = row.Entries
	}
	return summary, nil
}

func (r *GormEstateEntryRepository) applyFilter(query *gorm.DB, filter property.EntryFilter) *gorm.DB {
	if filter.EstateID != nil {
		query = query.Where("estate_id = ?", *filter.EstateID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Status != nil {
		query = query.Where("payment_status = ?", *filter.Status)
	}
	if plot := strings.TrimSpace(filter.Plot); plot != "" {
		// plot numbers are a JSON array of strings; match the quoted element
		query = query.Where("CAST(plot_numbers AS TEXT) "+likeOperator(r.db)+" ?", `%"`+plot+`"%`)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		op := likeOperator(r.db)
		query = query.Where("client_name "+op+" ? OR CAST(plot_numbers AS TEXT) "+op+" ? OR notes "+op+" ?",
			pattern, pattern, pattern)
	}
	return query
}

func toEntries(entryModels []models.EstateEntryModel) []property.EstateEntry {
	entries := make([]property.EstateEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries
}
