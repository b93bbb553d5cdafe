package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint-backend/api/responses"
	"github.com/tillpoint/tillpoint-backend/api/validators"
	checkoutsvc "github.com/tillpoint/tillpoint-backend/internal/checkout"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
)

type quickSaleQuoteRequest struct {
	Items []quickSaleItemPayload `json:"items" validate:"required,min=1,dive"`
}

type quickSaleItemPayload struct {
	Name          string           `json:"name"`
	Unit          string           `json:"unit"`
	Qty           decimal.Decimal  `json:"qty" validate:"required"`
	Price         decimal.Decimal  `json:"price" validate:"required"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty"`
}

// QuickSaleQuote totals an ad-hoc item list at the quick-sale VAT rate
// without touching any register session.
func QuickSaleQuote(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload quickSaleQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]checkoutsvc.LineItem, 0, len(payload.Items))
		for _, entry := range payload.Items {
			if !entry.Qty.IsPositive() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "qty must be positive"))
				return
			}
			if entry.Price.IsNegative() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative"))
				return
			}

			unit := enums.UnitPiece
			if entry.Unit != "" {
				parsed, err := enums.ParseUnit(entry.Unit)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit"))
					return
				}
				unit = parsed
			}

			items = append(items, checkoutsvc.LineItem{
				Name:          entry.Name,
				Unit:          unit,
				Qty:           entry.Qty,
				Price:         entry.Price,
				DiscountValue: entry.DiscountValue,
			})
		}

		responses.WriteSuccess(w, svc.QuickSaleTotals(items))
	}
}
