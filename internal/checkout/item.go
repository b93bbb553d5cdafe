package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint-backend/pkg/enums"
)

// Product is the read-only catalog view the checkout core consumes. The
// catalog collaborator owns the full record; the core only captures what a
// line item needs at add time.
type Product struct {
	ID        string
	SKU       string
	Barcode   *string
	Name      string
	Unit      enums.Unit
	Price     decimal.Decimal
	SellPrice *decimal.Decimal
	Category  string
	StockQty  decimal.Decimal
}

// LineItem is one aggregated product entry within a basket, keyed by SKU.
type LineItem struct {
	ID            string           `json:"id"`
	Barcode       string           `json:"barcode"`
	Name          string           `json:"name"`
	SKU           string           `json:"sku"`
	Unit          enums.Unit       `json:"unit"`
	Qty           decimal.Decimal  `json:"qty"`
	Price         decimal.Decimal  `json:"price"`
	SellPrice     *decimal.Decimal `json:"sell_price,omitempty"`
	Category      string           `json:"category"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty"`
	DiscountLabel *string          `json:"discount_label,omitempty"`
}

// EffectivePrice is the unit price a sale charges: the override when one is
// set, the captured price otherwise.
func (li LineItem) EffectivePrice() decimal.Decimal {
	if li.SellPrice != nil {
		return *li.SellPrice
	}
	return li.Price
}

// Clone returns a deep copy, detaching the pointer fields.
func (li LineItem) Clone() LineItem {
	out := li
	if li.SellPrice != nil {
		v := *li.SellPrice
		out.SellPrice = &v
	}
	if li.DiscountValue != nil {
		v := *li.DiscountValue
		out.DiscountValue = &v
	}
	if li.DiscountLabel != nil {
		v := *li.DiscountLabel
		out.DiscountLabel = &v
	}
	return out
}

// CloneItems deep-copies a line item slice.
func CloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}
