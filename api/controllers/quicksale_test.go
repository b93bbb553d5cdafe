package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	checkoutsvc "github.com/tillpoint/tillpoint-backend/internal/checkout"
)

func TestQuickSaleQuoteAppliesVAT(t *testing.T) {
	svc := newTestCheckoutService(t)
	body := `{"items":[{"name":"Coffee","qty":2,"price":"10.00"},{"name":"Bags","qty":1,"price":"1.00","discount_value":"1.00"}]}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quick-sale/quote", bytes.NewBufferString(body))
	QuickSaleQuote(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data checkoutsvc.Totals `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding totals: %v", err)
	}
	if !envelope.Data.Subtotal.Equal(decimal.RequireFromString("21")) {
		t.Fatalf("expected subtotal 21, got %s", envelope.Data.Subtotal)
	}
	if !envelope.Data.Discounts.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected discounts 1, got %s", envelope.Data.Discounts)
	}
	// 19% of 20.00
	if !envelope.Data.VAT.Equal(decimal.RequireFromString("3.8")) {
		t.Fatalf("expected vat 3.8, got %s", envelope.Data.VAT)
	}
}

func TestQuickSaleQuoteValidation(t *testing.T) {
	svc := newTestCheckoutService(t)
	cases := []struct {
		name string
		body string
	}{
		{name: "no items", body: `{"items":[]}`},
		{name: "zero qty", body: `{"items":[{"qty":0,"price":"1.00"}]}`},
		{name: "negative price", body: `{"items":[{"qty":1,"price":"-1.00"}]}`},
		{name: "bad unit", body: `{"items":[{"qty":1,"price":"1.00","unit":"litres"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/quick-sale/quote", bytes.NewBufferString(tc.body))
			QuickSaleQuote(svc, testLogger()).ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}
