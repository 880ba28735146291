package address

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"irokart-be/internal/apperr"
)

const DefaultCountry = "India"

var ErrIncompleteAddress = apperr.Validationf("Please fill in your delivery address (address line 1, city, pincode).")

// Snapshot is the delivery address copied onto an order at checkout. It is
// stored as jsonb and never follows later profile edits.
type Snapshot struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
}

// Validate enforces the checkout rule: line 1, city and postal code are required.
func (s *Snapshot) Validate() error {
	if s == nil ||
		strings.TrimSpace(s.AddressLine1) == "" ||
		strings.TrimSpace(s.City) == "" ||
		strings.TrimSpace(s.PostalCode) == "" {
		return ErrIncompleteAddress
	}
	return nil
}

// Normalize trims every field and fills the default country.
func (s *Snapshot) Normalize() {
	s.FullName = strings.TrimSpace(s.FullName)
	s.Phone = strings.TrimSpace(s.Phone)
	s.AddressLine1 = strings.TrimSpace(s.AddressLine1)
	s.AddressLine2 = strings.TrimSpace(s.AddressLine2)
	s.City = strings.TrimSpace(s.City)
	s.State = strings.TrimSpace(s.State)
	s.PostalCode = strings.TrimSpace(s.PostalCode)
	s.Country = strings.TrimSpace(s.Country)
	if s.Country == "" {
		s.Country = DefaultCountry
	}
}

func (s Snapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *Snapshot) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = Snapshot{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("address: cannot scan %T into Snapshot", src)
	}
	if len(raw) == 0 {
		return errors.New("address: empty snapshot")
	}
	*s = Snapshot{}
	return json.Unmarshal(raw, s)
}
