package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint-backend/pkg/enums"
)

// Product is a catalog entry the checkout core reads but never writes.
type Product struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU       string           `gorm:"column:sku;not null;uniqueIndex"`
	Barcode   *string          `gorm:"column:barcode;index"`
	Name      string           `gorm:"column:name;not null"`
	Unit      enums.Unit       `gorm:"column:unit;not null"`
	Price     decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	SellPrice *decimal.Decimal `gorm:"column:sell_price;type:numeric(12,2)"`
	Category  string           `gorm:"column:category;not null"`
	StockQty  decimal.Decimal  `gorm:"column:stock_qty;type:numeric(12,3);not null;default:0"`
	MinQty    *decimal.Decimal `gorm:"column:min_qty;type:numeric(12,3)"`
	IsActive  bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
