package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint-backend/pkg/enums"
)

// Totals is derived from a basket's items on every read, never stored.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discounts     decimal.Decimal `json:"discounts"`
	VAT           decimal.Decimal `json:"vat"`
	Total         decimal.Decimal `json:"total"`
	Lines         int             `json:"lines"`
	ProduceWeight decimal.Decimal `json:"produce_weight"`
	PieceCount    decimal.Decimal `json:"piece_count"`
}

// CalculateTotals folds a line item list into display totals. The counter
// register passes a zero tax rate; the quick-sale variant passes the
// configured VAT rate, applied to subtotal minus discounts.
func CalculateTotals(items []LineItem, taxRate decimal.Decimal) Totals {
	t := Totals{
		Subtotal:      decimal.Zero,
		Discounts:     decimal.Zero,
		VAT:           decimal.Zero,
		Total:         decimal.Zero,
		ProduceWeight: decimal.Zero,
		PieceCount:    decimal.Zero,
	}

	for _, item := range items {
		t.Subtotal = t.Subtotal.Add(item.EffectivePrice().Mul(item.Qty))
		if item.DiscountValue != nil {
			t.Discounts = t.Discounts.Add(*item.DiscountValue)
		}
		switch item.Unit {
		case enums.UnitKilogram:
			t.ProduceWeight = t.ProduceWeight.Add(item.Qty)
		case enums.UnitPiece:
			t.PieceCount = t.PieceCount.Add(item.Qty)
		}
	}

	t.Lines = len(items)
	net := t.Subtotal.Sub(t.Discounts)
	if taxRate.IsPositive() {
		t.VAT = net.Mul(taxRate).Round(2)
	}
	t.Total = net.Add(t.VAT)
	return t
}
