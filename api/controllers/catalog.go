package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint-backend/api/responses"
	"github.com/tillpoint/tillpoint-backend/api/validators"
	catalogsvc "github.com/tillpoint/tillpoint-backend/internal/catalog"
	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
)

const maxProductPageSize = 200

// CatalogListProducts serves the product browser: search over name, sku and
// barcode, category filter, name/price sorts.
func CatalogListProducts(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, maxProductPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sort, err := catalogsvc.ParseProductSort(r.URL.Query().Get("sort"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort"))
			return
		}

		input := catalogsvc.ListInput{
			Search:   strings.TrimSpace(r.URL.Query().Get("search")),
			Category: strings.TrimSpace(r.URL.Query().Get("category")),
			Sort:     sort,
			Limit:    limit,
		}

		products, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]productResponse, 0, len(products))
		for i := range products {
			out = append(out, newProductResponse(&products[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// CatalogGetProduct returns a single product by id.
func CatalogGetProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		rawID := strings.TrimSpace(chi.URLParam(r, "productId"))
		id, err := uuid.Parse(rawID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

type productResponse struct {
	ID        string           `json:"id"`
	SKU       string           `json:"sku"`
	Barcode   *string          `json:"barcode,omitempty"`
	Name      string           `json:"name"`
	Unit      string           `json:"unit"`
	Price     decimal.Decimal  `json:"price"`
	SellPrice *decimal.Decimal `json:"sell_price,omitempty"`
	Category  string           `json:"category"`
	StockQty  decimal.Decimal  `json:"stock_qty"`
}

func newProductResponse(m *models.Product) productResponse {
	return productResponse{
		ID:        m.ID.String(),
		SKU:       m.SKU,
		Barcode:   m.Barcode,
		Name:      m.Name,
		Unit:      m.Unit.String(),
		Price:     m.Price,
		SellPrice: m.SellPrice,
		Category:  m.Category,
		StockQty:  m.StockQty,
	}
}
