package models

import (
	"encoding/json"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ClientModel is the persistence model for the Client domain entity.
type ClientModel struct {
	BaseModel
	Name    string `gorm:"type:varchar(200);not null;index"`
	Email   string `gorm:"type:varchar(200);index"`
	Phone   string `gorm:"type:varchar(50);index"`
	Address string `gorm:"type:text"`
	Notes   string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client entity.
func (m *ClientModel) ToDomain() *property.Client {
	return &property.Client{
		BaseAggregateRoot: m.aggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		Address:           m.Address,
		Notes:             m.Notes,
	}
}

// ClientModelFromDomain creates a persistence model from a domain Client.
func ClientModelFromDomain(c *property.Client) *ClientModel {
	m := &ClientModel{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
		Notes:   c.Notes,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// EstateModel is the persistence model for the Estate domain entity.
type EstateModel struct {
	BaseModel
	Name        string `gorm:"type:varchar(200);not null;uniqueIndex:idx_estate_name"`
	Location    string `gorm:"type:varchar(300)"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (EstateModel) TableName() string {
	return "estates"
}

// ToDomain converts the persistence model to a domain Estate entity.
func (m *EstateModel) ToDomain() *property.Estate {
	return &property.Estate{
		BaseAggregateRoot: m.aggregateRoot(),
		Name:              m.Name,
		Location:          m.Location,
		Description:       m.Description,
	}
}

// EstateModelFromDomain creates a persistence model from a domain Estate.
func EstateModelFromDomain(e *property.Estate) *EstateModel {
	m := &EstateModel{
		Name:        e.Name,
		Location:    e.Location,
		Description: e.Description,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// EstateEntryModel is the persistence model for the EstateEntry domain entity.
// Plot numbers are stored as a JSON array.
type EstateEntryModel struct {
	BaseModel
	EstateID      uuid.UUID              `gorm:"type:uuid;not null;index"`
	ClientID      *uuid.UUID             `gorm:"type:uuid;index"`
	ClientName    string                 `gorm:"type:varchar(200)"`
	Amount        decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	AmountPaid    decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	PaymentStatus property.PaymentStatus `gorm:"type:varchar(20);not null;default:'Pending';index"`
	PlotNumbers   datatypes.JSON         `gorm:"type:jsonb"`
	NextDueDate   *time.Time             `gorm:"index"`
	Notes         string                 `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (EstateEntryModel) TableName() string {
	return "estate_entries"
}

// ToDomain converts the persistence model to a domain EstateEntry entity.
func (m *EstateEntryModel) ToDomain() *property.EstateEntry {
	return &property.EstateEntry{
		BaseAggregateRoot: m.aggregateRoot(),
		EstateID:          m.EstateID,
		ClientID:          m.ClientID,
		ClientName:        m.ClientName,
		Amount:            m.Amount,
		AmountPaid:        m.AmountPaid,
		PaymentStatus:     m.PaymentStatus,
		PlotNumbers:       decodePlots(m.PlotNumbers),
		NextDueDate:       m.NextDueDate,
		Notes:             m.Notes,
	}
}

// EstateEntryModelFromDomain creates a persistence model from a domain EstateEntry.
func EstateEntryModelFromDomain(e *property.EstateEntry) *EstateEntryModel {
	m := &EstateEntryModel{
		EstateID:      e.EstateID,
		ClientID:      e.ClientID,
		ClientName:    e.ClientName,
		Amount:        e.Amount,
		AmountPaid:    e.AmountPaid,
		PaymentStatus: e.PaymentStatus,
		PlotNumbers:   EncodePlots(e.PlotNumbers),
		NextDueDate:   e.NextDueDate,
		Notes:         e.Notes,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// EncodePlots renders plot numbers as a JSON array; nil becomes []
func EncodePlots(plots []string) datatypes.JSON {
	if plots == nil {
		plots = []string{}
	}
	raw, _ := json.Marshal(plots)
	return datatypes.JSON(raw)
}

func decodePlots(raw datatypes.JSON) []string {
	plots := []string{}
	if len(raw) == 0 {
		return plots
	}
	if err := json.Unmarshal(raw, &plots); err != nil {
		return []string{}
	}
	return plots
}
