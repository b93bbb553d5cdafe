package enums

import "fmt"

// FocusField identifies which numeric editor field accepts keypad input.
type FocusField string

const (
	FocusFieldPrice    FocusField = "price"
	FocusFieldQuantity FocusField = "quantity"
	FocusFieldTotal    FocusField = "total"
)

var validFocusFields = []FocusField{
	FocusFieldPrice,
	FocusFieldQuantity,
	FocusFieldTotal,
}

// String implements fmt.Stringer.
func (f FocusField) String() string {
	return string(f)
}

// IsValid reports whether the value matches a known FocusField.
func (f FocusField) IsValid() bool {
	for _, candidate := range validFocusFields {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFocusField converts raw input into a FocusField.
func ParseFocusField(value string) (FocusField, error) {
	for _, candidate := range validFocusFields {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid focus field %q", value)
}
