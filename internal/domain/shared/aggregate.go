package shared

// BaseAggregateRoot is embedded by clients, estates, entries and invoices.
// Events recorded on it are handed out once by PullDomainEvents.
// There is no version column: concurrent writers to the same record are
// last-write-wins.
type BaseAggregateRoot struct {
	BaseEntity
	domainEvents []DomainEvent
}

// NewBaseAggregateRoot returns a root with a fresh identity
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity()}
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// PullDomainEvents returns the recorded events and forgets them
func (a *BaseAggregateRoot) PullDomainEvents() []DomainEvent {
	events := a.domainEvents
	a.domainEvents = nil
	return events
}

func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}
