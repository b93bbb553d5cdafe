package enums

import "fmt"

// Unit defines how a product quantity is measured at the till.
type Unit string

const (
	UnitKilogram Unit = "kg"
	UnitPiece    Unit = "pcs"
)

var validUnits = []Unit{
	UnitKilogram,
	UnitPiece,
}

// String implements fmt.Stringer.
func (u Unit) String() string {
	return string(u)
}

// IsValid reports whether the value matches a known Unit.
func (u Unit) IsValid() bool {
	for _, candidate := range validUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUnit converts raw input into a Unit.
func ParseUnit(value string) (Unit, error) {
	for _, candidate := range validUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit %q", value)
}
