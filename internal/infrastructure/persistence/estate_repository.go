package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEstateRepository implements property.EstateRepository using GORM
type GormEstateRepository struct {
	db *gorm.DB
}

// NewGormEstateRepository creates a new GormEstateRepository
func NewGormEstateRepository(db *gorm.DB) *GormEstateRepository {
	return &GormEstateRepository{db: db}
}

// FindByID finds an estate by its ID
func (r *GormEstateRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Estate, error) {
	var model models.EstateModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("estate", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of estates and the total match count
func (r *GormEstateRepository) FindAll(ctx context.Context, filter property.EstateFilter) ([]property.Estate, int64, error) {
	f := filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.EstateModel{})
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		op := likeOperator(r.db)
		query = query.Where("name "+op+" ? OR location "+op+" ?", pattern, pattern)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var estateModels []models.EstateModel
	if err := query.
		Order(estateSort.order(f)).
		Offset(f.Offset()).Limit(f.PageSize).
		Find(&estateModels).Error; err != nil {
		return nil, 0, err
	}

	estates := make([]property.Estate, len(estateModels))
	for i, model := range estateModels {
		estates[i] = *model.ToDomain()
	}
	return estates, total, nil
}

// ExistsByName checks if another estate already uses the name
func (r *GormEstateRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.EstateModel{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an estate
func (r *GormEstateRepository) Save(ctx context.Context, estate *property.Estate) error {
	return r.db.WithContext(ctx).Save(models.EstateModelFromDomain(estate)).Error
}

// Delete deletes an estate
func (r *GormEstateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.EstateModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("estate", id)
	}
	return nil
}
