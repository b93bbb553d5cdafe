package enums

// ModalContext enumerates which blocking panel, if any, is open on a register.
// Escape handling and shortcut gating are pure functions of this value.
type ModalContext string

const (
	ModalContextNone        ModalContext = "none"
	ModalContextOverview    ModalContext = "overview"
	ModalContextPriceEditor ModalContext = "price_editor"
)

// String implements fmt.Stringer.
func (m ModalContext) String() string {
	return string(m)
}

// IsValid reports whether the value matches a known ModalContext.
func (m ModalContext) IsValid() bool {
	switch m {
	case ModalContextNone, ModalContextOverview, ModalContextPriceEditor:
		return true
	}
	return false
}
