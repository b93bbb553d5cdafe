package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint-backend/pkg/enums"
)

// SaleRecord is a finalized basket. Rows are immutable except when a recalled
// sale is resaved, which replaces the row and its line items wholesale.
type SaleRecord struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	RegisterID    string              `gorm:"column:register_id;not null;index"`
	ClientName    string              `gorm:"column:client_name;not null"`
	CashierName   string              `gorm:"column:cashier_name;not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null"`
	Total         decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	LineItems     []SaleLineItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;not null;index"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
