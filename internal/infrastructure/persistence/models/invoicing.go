package models

import (
	"encoding/json"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/invoicing"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	BaseModel
	Number        string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	ClientID      *uuid.UUID             `gorm:"type:uuid;index"`
	EstateID      *uuid.UUID             `gorm:"type:uuid;index"`
	Amount        decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	AmountPaid    decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	Status        property.PaymentStatus `gorm:"type:varchar(20);not null;index"`
	IssuedDate    time.Time              `gorm:"not null;index"`
	DueDate       *time.Time
	Notes         string             `gorm:"type:text"`
	IssuedBy      *uuid.UUID         `gorm:"type:uuid"`
	EntrySnapshot datatypes.JSON     `gorm:"type:jsonb"`
	Items         []InvoiceItemModel `gorm:"foreignKey:InvoiceID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceItemModel is the persistence model for an invoice line.
type InvoiceItemModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description   string          `gorm:"type:varchar(500);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	EstateEntryID *uuid.UUID      `gorm:"type:uuid;index"`
	PlotDetails   string          `gorm:"type:text"`
	CreatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain Invoice.
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: m.BaseModel.ToDomain()},
		Number:            m.Number,
		ClientID:          m.ClientID,
		EstateID:          m.EstateID,
		Amount:            m.Amount,
		AmountPaid:        m.AmountPaid,
		Status:            m.Status,
		IssuedDate:        m.IssuedDate,
		DueDate:           m.DueDate,
		Notes:             m.Notes,
		IssuedBy:          m.IssuedBy,
		Items:             make([]invoicing.InvoiceItem, len(m.Items)),
	}
	for i, item := range m.Items {
		inv.Items[i] = invoicing.InvoiceItem{
			ID:            item.ID,
			Description:   item.Description,
			Amount:        item.Amount,
			EstateEntryID: item.EstateEntryID,
			PlotDetails:   item.PlotDetails,
		}
	}
	if len(m.EntrySnapshot) > 0 && string(m.EntrySnapshot) != "null" {
		var snap invoicing.EntrySnapshot
		if err := json.Unmarshal(m.EntrySnapshot, &snap); err == nil {
			inv.EntrySnapshot = &snap
		}
	}
	return inv
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice.
// Items without an ID get one here.
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		Number:     inv.Number,
		ClientID:   inv.ClientID,
		EstateID:   inv.EstateID,
		Amount:     inv.Amount,
		AmountPaid: inv.AmountPaid,
		Status:     inv.Status,
		IssuedDate: inv.IssuedDate,
		DueDate:    inv.DueDate,
		Notes:      inv.Notes,
		IssuedBy:   inv.IssuedBy,
		Items:      make([]InvoiceItemModel, len(inv.Items)),
	}
	m.FromDomainBaseEntity(inv.BaseEntity)

	if inv.EntrySnapshot != nil {
		if raw, err := json.Marshal(inv.EntrySnapshot); err == nil {
			m.EntrySnapshot = datatypes.JSON(raw)
		}
	}

	for i, item := range inv.Items {
		id := item.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		m.Items[i] = InvoiceItemModel{
			ID:            id,
			InvoiceID:     inv.ID,
			Description:   item.Description,
			Amount:        item.Amount,
			EstateEntryID: item.EstateEntryID,
			PlotDetails:   item.PlotDetails,
			CreatedAt:     inv.CreatedAt,
		}
	}
	return m
}
