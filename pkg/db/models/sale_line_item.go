package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint-backend/pkg/enums"
)

// SaleLineItem mirrors one aggregated basket line inside a finalized sale.
type SaleLineItem struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID        uuid.UUID        `gorm:"column:sale_id;type:uuid;not null;index"`
	ProductID     string           `gorm:"column:product_id;not null"`
	Barcode       string           `gorm:"column:barcode;not null"`
	Name          string           `gorm:"column:name;not null"`
	SKU           string           `gorm:"column:sku;not null"`
	Unit          enums.Unit       `gorm:"column:unit;not null"`
	Qty           decimal.Decimal  `gorm:"column:qty;type:numeric(12,3);not null"`
	Price         decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	SellPrice     *decimal.Decimal `gorm:"column:sell_price;type:numeric(12,2)"`
	Category      string           `gorm:"column:category;not null"`
	DiscountValue *decimal.Decimal `gorm:"column:discount_value;type:numeric(12,2)"`
	DiscountLabel *string          `gorm:"column:discount_label"`
}
