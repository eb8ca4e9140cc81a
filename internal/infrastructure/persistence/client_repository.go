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

// GormClientRepository implements property.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("client", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByName finds a client by name, ignoring case
func (r *GormClientRepository) FindByName(ctx context.Context, name string) (*property.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		Order("created_at ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithDetail("name", name)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of clients and the total match count
func (r *GormClientRepository) FindAll(ctx context.Context, filter property.ClientFilter) ([]property.Client, int64, error) {
	f := filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.ClientModel{})
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		op := likeOperator(r.db)
		query = query.Where("name "+op+" ? OR email "+op+" ? OR phone "+op+" ?", pattern, pattern, pattern)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clientModels []models.ClientModel
	if err := query.
		Order(clientSort.order(f)).
		Offset(f.Offset()).Limit(f.PageSize).
		Find(&clientModels).Error; err != nil {
		return nil, 0, err
	}

	clients := make([]property.Client, len(clientModels))
	for i, model := range clientModels {
		clients[i] = *model.ToDomain()
	}
	return clients, total, nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *property.Client) error {
	return r.db.WithContext(ctx).Save(models.ClientModelFromDomain(client)).Error
}

// Delete deletes a client
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ClientModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("client", id)
	}
	return nil
}
