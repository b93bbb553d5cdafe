package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint-backend/api/responses"
	"github.com/tillpoint/tillpoint-backend/api/validators"
	salessvc "github.com/tillpoint/tillpoint-backend/internal/sales"
	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
)

const maxSalesPageSize = 100

// SalesList returns finalized sales newest first, optionally scoped to one
// register.
func SalesList(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, maxSalesPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		registerID := strings.TrimSpace(r.URL.Query().Get("register_id"))
		records, err := svc.ListSales(r.Context(), registerID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]saleResponse, 0, len(records))
		for i := range records {
			out = append(out, newSaleResponse(&records[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// SalesGet returns one finalized sale with its line items.
func SalesGet(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		rawID := strings.TrimSpace(chi.URLParam(r, "saleId"))
		id, err := uuid.Parse(rawID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sale id"))
			return
		}

		record, err := svc.GetSale(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSaleResponse(record))
	}
}

type saleResponse struct {
	ID            string             `json:"id"`
	RegisterID    string             `json:"register_id"`
	ClientName    string             `json:"client_name"`
	CashierName   string             `json:"cashier_name"`
	PaymentMethod string             `json:"payment_method"`
	Total         decimal.Decimal    `json:"total"`
	LineItems     []saleLineResponse `json:"line_items,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

type saleLineResponse struct {
	ProductID     string           `json:"product_id"`
	Barcode       string           `json:"barcode,omitempty"`
	Name          string           `json:"name"`
	SKU           string           `json:"sku"`
	Unit          string           `json:"unit"`
	Qty           decimal.Decimal  `json:"qty"`
	Price         decimal.Decimal  `json:"price"`
	SellPrice     *decimal.Decimal `json:"sell_price,omitempty"`
	Category      string           `json:"category"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty"`
	DiscountLabel *string          `json:"discount_label,omitempty"`
}

func newSaleResponse(m *models.SaleRecord) saleResponse {
	lines := make([]saleLineResponse, 0, len(m.LineItems))
	for _, line := range m.LineItems {
		lines = append(lines, saleLineResponse{
			ProductID:     line.ProductID,
			Barcode:       line.Barcode,
			Name:          line.Name,
			SKU:           line.SKU,
			Unit:          line.Unit.String(),
			Qty:           line.Qty,
			Price:         line.Price,
			SellPrice:     line.SellPrice,
			Category:      line.Category,
			DiscountValue: line.DiscountValue,
			DiscountLabel: line.DiscountLabel,
		})
	}
	return saleResponse{
		ID:            m.ID.String(),
		RegisterID:    m.RegisterID,
		ClientName:    m.ClientName,
		CashierName:   m.CashierName,
		PaymentMethod: m.PaymentMethod.String(),
		Total:         m.Total,
		LineItems:     lines,
		CreatedAt:     m.CreatedAt,
	}
}
