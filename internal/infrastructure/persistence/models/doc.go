// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of ORM tags; each model converts with ToDomain and
// a <Name>ModelFromDomain constructor.
//
// Structure:
//   - base.go: BaseModel and the AutoMigrate model list
//   - property.go: clients, estates and estate entries
//   - invoicing.go: invoices and their items
package models
