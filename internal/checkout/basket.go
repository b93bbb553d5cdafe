package checkout

import (
	"time"

	"github.com/shopspring/decimal"
)

// Basket is an in-progress, uncommitted sale. It is never destroyed once
// created, only cleared and reused.
type Basket struct {
	ID       string     `json:"id"`
	Items    []LineItem `json:"items"`
	OpenedAt time.Time  `json:"opened_at"`
}

// Upsert merges qty into the line item with the product's SKU, or appends a
// new line capturing the product's current price. Non-positive quantities are
// rejected as a silent no-op. Reports whether the basket changed.
func (b *Basket) Upsert(product Product, qty decimal.Decimal) bool {
	if !qty.IsPositive() {
		return false
	}

	for i := range b.Items {
		if b.Items[i].SKU == product.SKU {
			b.Items[i].Qty = b.Items[i].Qty.Add(qty)
			return true
		}
	}

	barcode := product.ID
	if product.Barcode != nil && *product.Barcode != "" {
		barcode = *product.Barcode
	}
	var sellPrice *decimal.Decimal
	if product.SellPrice != nil {
		v := *product.SellPrice
		sellPrice = &v
	}
	b.Items = append(b.Items, LineItem{
		ID:        product.ID,
		Barcode:   barcode,
		Name:      product.Name,
		SKU:       product.SKU,
		Unit:      product.Unit,
		Qty:       qty,
		Price:     product.Price,
		SellPrice: sellPrice,
		Category:  product.Category,
	})
	return true
}

// RemoveByID deletes the matching item if present.
func (b *Basket) RemoveByID(itemID string) bool {
	for i := range b.Items {
		if b.Items[i].ID == itemID {
			b.Items = append(b.Items[:i], b.Items[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveLast drops the most recently appended item.
func (b *Basket) RemoveLast() bool {
	if len(b.Items) == 0 {
		return false
	}
	b.Items = b.Items[:len(b.Items)-1]
	return true
}

// Clear empties the item list.
func (b *Basket) Clear() {
	b.Items = nil
}

// IsEmpty reports whether the basket holds no items.
func (b *Basket) IsEmpty() bool {
	return len(b.Items) == 0
}

// ItemByID returns a pointer into the basket's item list, or nil.
func (b *Basket) ItemByID(itemID string) *LineItem {
	for i := range b.Items {
		if b.Items[i].ID == itemID {
			return &b.Items[i]
		}
	}
	return nil
}
