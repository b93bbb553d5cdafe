package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	"github.com/tillpoint/tillpoint-backend/pkg/types"
)

// EditorState is the transient price/quantity/total panel: three coupled
// text fields, a focused field, and a recorded caret/selection per field.
// It only exists while the panel is open and is rebuilt from scratch on each
// open. All transitions are value-to-value; nothing here touches the basket
// until Confirm's result is applied by the caller.
type EditorState struct {
	Open           bool             `json:"open"`
	TargetItemID   string           `json:"target_item_id,omitempty"`
	PriceText      string           `json:"price_text"`
	QtyText        string           `json:"qty_text"`
	TotalText      string           `json:"total_text"`
	Focused        enums.FocusField `json:"focused_field"`
	PriceSelection types.Selection  `json:"price_selection"`
	QtySelection   types.Selection  `json:"qty_selection"`
	TotalSelection types.Selection  `json:"total_selection"`
}

// OpenEditor seeds the panel from the target item. Selections start at full
// text length so the first keypad tap replaces the seeded value outright.
func OpenEditor(item LineItem, focus enums.FocusField) EditorState {
	if !focus.IsValid() {
		focus = enums.FocusFieldPrice
	}
	price := item.EffectivePrice()
	e := EditorState{
		Open:         true,
		TargetItemID: item.ID,
		PriceText:    formatAmount(price),
		QtyText:      formatAmount(item.Qty),
		TotalText:    formatAmount(price.Mul(item.Qty)),
		Focused:      focus,
	}
	e.PriceSelection = fullSelection(e.PriceText)
	e.QtySelection = fullSelection(e.QtyText)
	e.TotalSelection = fullSelection(e.TotalText)
	return e
}

// WithFieldText replaces one field's text wholesale (a direct form edit),
// runs the recompute rules, and parks the caret after the new text.
func (e EditorState) WithFieldText(field enums.FocusField, text string) EditorState {
	e = e.setText(field, text)
	e = e.setSelection(field, types.Caret(len([]rune(text))))
	return e.recompute(field)
}

// WithSelection records a caret/selection change reported for a field.
func (e EditorState) WithSelection(field enums.FocusField, sel types.Selection) EditorState {
	return e.setSelection(field, sel.Clamp(len([]rune(e.text(field)))))
}

// WithFocus moves input focus to the given field.
func (e EditorState) WithFocus(field enums.FocusField) EditorState {
	if field.IsValid() {
		e.Focused = field
	}
	return e
}

// ApplyKeypad routes a virtual keypad key to the focused field, keeps the
// caret the router produced, and recomputes the coupled fields.
func (e EditorState) ApplyKeypad(key string) EditorState {
	text, sel, ok := ApplyKey(e.text(e.Focused), e.selection(e.Focused), key)
	if !ok {
		return e
	}
	e = e.setText(e.Focused, text)
	e = e.setSelection(e.Focused, sel)
	return e.recompute(e.Focused)
}

// Confirm validates the pending price and quantity. Both must parse to
// positive numbers; otherwise ok is false and the panel stays as-is.
func (e EditorState) Confirm() (price, qty decimal.Decimal, ok bool) {
	price, err := decimal.NewFromString(e.PriceText)
	if err != nil || !price.IsPositive() {
		return decimal.Zero, decimal.Zero, false
	}
	qty, err = decimal.NewFromString(e.QtyText)
	if err != nil || !qty.IsPositive() {
		return decimal.Zero, decimal.Zero, false
	}
	return price, qty, true
}

// recompute applies the coupling rules after the given field changed:
// price/qty edits drive the total; total edits drive the price, and only
// when the quantity is positive. Quantity is never derived.
func (e EditorState) recompute(edited enums.FocusField) EditorState {
	switch edited {
	case enums.FocusFieldPrice, enums.FocusFieldQuantity:
		total := numeric(e.PriceText).Mul(numeric(e.QtyText))
		e.TotalText = formatAmount(total)
		e.TotalSelection = e.TotalSelection.Clamp(len([]rune(e.TotalText)))

	case enums.FocusFieldTotal:
		qty := numeric(e.QtyText)
		if qty.IsPositive() {
			e.PriceText = formatAmount(numeric(e.TotalText).Div(qty))
			e.PriceSelection = e.PriceSelection.Clamp(len([]rune(e.PriceText)))
		}
	}
	return e
}

func (e EditorState) text(field enums.FocusField) string {
	switch field {
	case enums.FocusFieldQuantity:
		return e.QtyText
	case enums.FocusFieldTotal:
		return e.TotalText
	default:
		return e.PriceText
	}
}

func (e EditorState) setText(field enums.FocusField, text string) EditorState {
	switch field {
	case enums.FocusFieldQuantity:
		e.QtyText = text
	case enums.FocusFieldTotal:
		e.TotalText = text
	default:
		e.PriceText = text
	}
	return e
}

func (e EditorState) selection(field enums.FocusField) types.Selection {
	switch field {
	case enums.FocusFieldQuantity:
		return e.QtySelection
	case enums.FocusFieldTotal:
		return e.TotalSelection
	default:
		return e.PriceSelection
	}
}

func (e EditorState) setSelection(field enums.FocusField, sel types.Selection) EditorState {
	switch field {
	case enums.FocusFieldQuantity:
		e.QtySelection = sel
	case enums.FocusFieldTotal:
		e.TotalSelection = sel
	default:
		e.PriceSelection = sel
	}
	return e
}

func fullSelection(text string) types.Selection {
	return types.Selection{Start: 0, End: len([]rune(text))}
}

// numeric parses field text for the live preview, treating unparsable input
// as zero so intermediate typing states never block recompute.
func numeric(text string) decimal.Decimal {
	v, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return v
}

func formatAmount(v decimal.Decimal) string {
	return v.String()
}
