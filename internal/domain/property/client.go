package property

import (
	"strings"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
)

// Client is a buyer who owns one or more estate entries
type Client struct {
	shared.BaseAggregateRoot
	Name    string
	Email   string
	Phone   string
	Address string
	Notes   string
}

// ClientDetails carries the editable fields of a client
type ClientDetails struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Notes   string
}

// NewClient creates a new client
func NewClient(details ClientDetails) (*Client, error) {
	c := &Client{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := c.apply(details); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the editable fields
func (c *Client) Update(details ClientDetails) error {
	if err := c.apply(details); err != nil {
		return err
	}
	c.Touch()
	return nil
}

func (c *Client) apply(details ClientDetails) error {
	name := strings.TrimSpace(details.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	c.Name = name
	c.Email = strings.TrimSpace(details.Email)
	c.Phone = strings.TrimSpace(details.Phone)
	c.Address = strings.TrimSpace(details.Address)
	c.Notes = details.Notes
	return nil
}
