package order

import (
	"errors"
	"strings"
)

var ErrIncompleteAddress = errors.New("shipping address is incomplete")

type ShippingAddress struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code"`
}

// IncompleteAddressError names every required field that was left blank.
type IncompleteAddressError struct {
	Fields []string
}

func (e *IncompleteAddressError) Error() string {
	return ErrIncompleteAddress.Error() + ": missing " + strings.Join(e.Fields, ", ")
}

func (e *IncompleteAddressError) Is(target error) bool {
	return target == ErrIncompleteAddress
}

// Validate returns an *IncompleteAddressError when a required field is blank.
func (a ShippingAddress) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"fullName", a.FullName},
		{"phone", a.Phone},
		{"addressLine1", a.AddressLine1},
		{"city", a.City},
		{"postalCode", a.PostalCode},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &IncompleteAddressError{Fields: missing}
	}
	return nil
}
