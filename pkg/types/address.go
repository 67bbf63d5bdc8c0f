package types

import (
	"fmt"
	"strings"
)

// Address is the shipping/billing snapshot stored on an order. It is
// serialized as jsonb, so the values on the order never change after
// checkout even if the customer edits their saved addresses.
type Address struct {
	Name         string  `json:"name"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postal_code"`
	Country      string  `json:"country"`
	Phone        *string `json:"phone,omitempty"`
	IsDefault    bool    `json:"is_default,omitempty"`
}

// Validate checks the fields an order snapshot cannot do without.
func (a Address) Validate() error {
	for _, field := range []struct {
		name  string
		value string
	}{
		{"name", a.Name},
		{"address_line1", a.AddressLine1},
		{"city", a.City},
		{"state", a.State},
		{"postal_code", a.PostalCode},
		{"country", a.Country},
	} {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("address: missing %s", field.name)
		}
	}
	return nil
}
