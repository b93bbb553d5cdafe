package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	checkoutsvc "github.com/tillpoint/tillpoint-backend/internal/checkout"
	"github.com/tillpoint/tillpoint-backend/pkg/config"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
	"github.com/tillpoint/tillpoint-backend/pkg/types"
)

type stubRegisterCatalog struct{}

func (stubRegisterCatalog) ProductByBarcode(_ context.Context, barcode string) (*checkoutsvc.Product, error) {
	if barcode != "4000001" {
		return nil, nil
	}
	return &checkoutsvc.Product{
		ID:      "prod-1",
		SKU:     "APL-1",
		Barcode: &barcode,
		Name:    "Apples",
		Unit:    enums.UnitKilogram,
		Price:   decimal.RequireFromString("3.50"),
	}, nil
}

func (s stubRegisterCatalog) ProductByRef(ctx context.Context, ref string) (*checkoutsvc.Product, error) {
	if ref == "APL-1" || ref == "prod-1" {
		return s.ProductByBarcode(ctx, "4000001")
	}
	return nil, nil
}

func testCheckoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		MaxBaskets:       3,
		HoldSlots:        2,
		VATRate:          "0",
		QuickSaleVATRate: "0.19",
		DefaultClient:    "Standard client",
		DefaultCashier:   "FirstLastName",
	}
}

func newTestCheckoutService(t *testing.T) checkoutsvc.Service {
	t.Helper()
	svc, err := checkoutsvc.NewService(testCheckoutConfig(), checkoutsvc.Deps{Catalog: stubRegisterCatalog{}})
	if err != nil {
		t.Fatalf("building checkout service: %v", err)
	}
	return svc
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func registerRequest(t *testing.T, method, path string, body string) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("registerId", "till-1")
	if idx := strings.LastIndex(path, "/items/"); idx >= 0 && method == http.MethodDelete {
		routeCtx.URLParams.Add("itemId", path[idx+len("/items/"):])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) checkoutsvc.SessionState {
	t.Helper()
	var envelope struct {
		Data checkoutsvc.SessionState `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding state envelope: %v", err)
	}
	return envelope.Data
}

func TestRegisterScanAddsItem(t *testing.T) {
	svc := newTestCheckoutService(t)
	rec := httptest.NewRecorder()
	req := registerRequest(t, http.MethodPost, "/api/v1/registers/till-1/scan", `{"barcode":"4000001"}`)

	RegisterScan(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	state := decodeState(t, rec)
	if len(state.Items) != 1 {
		t.Fatalf("expected one line item, got %d", len(state.Items))
	}
	if !state.Items[0].Qty.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected scan to default qty to 1, got %s", state.Items[0].Qty)
	}
}

func TestRegisterScanUnknownBarcodeIsNotAnError(t *testing.T) {
	svc := newTestCheckoutService(t)
	rec := httptest.NewRecorder()
	req := registerRequest(t, http.MethodPost, "/api/v1/registers/till-1/scan", `{"barcode":"999"}`)

	RegisterScan(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown barcode, got %d", rec.Code)
	}
	state := decodeState(t, rec)
	if len(state.Items) != 0 {
		t.Fatalf("unknown barcode must not add items")
	}
	if len(state.Activity) == 0 {
		t.Fatalf("expected an activity log line for the unknown barcode")
	}
}

func TestRegisterAddItemValidation(t *testing.T) {
	svc := newTestCheckoutService(t)
	logg := testLogger()

	cases := []struct {
		name string
		body string
	}{
		{name: "missing ref", body: `{"qty":1}`},
		{name: "non-positive qty", body: `{"sku":"APL-1","qty":0}`},
		{name: "malformed json", body: `{"sku":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := registerRequest(t, http.MethodPost, "/api/v1/registers/till-1/items", tc.body)
			RegisterAddItem(svc, logg).ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestRegisterAddItemBySKU(t *testing.T) {
	svc := newTestCheckoutService(t)
	rec := httptest.NewRecorder()
	req := registerRequest(t, http.MethodPost, "/api/v1/registers/till-1/items", `{"sku":"APL-1","qty":"0.5"}`)

	RegisterAddItem(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	state := decodeState(t, rec)
	if len(state.Items) != 1 || !state.Items[0].Qty.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("unexpected items %+v", state.Items)
	}
}

func TestRegisterFinalizeFlow(t *testing.T) {
	svc := newTestCheckoutService(t)
	logg := testLogger()

	scanRec := httptest.NewRecorder()
	RegisterScan(svc, logg).ServeHTTP(scanRec, registerRequest(t, http.MethodPost, "/api/v1/registers/till-1/scan", `{"barcode":"4000001","qty":2}`))
	if scanRec.Code != http.StatusOK {
		t.Fatalf("scan failed: %d", scanRec.Code)
	}

	rec := httptest.NewRecorder()
	req := registerRequest(t, http.MethodPost, "/api/v1/registers/till-1/finalize", `{"payment_method":"card"}`)
	RegisterFinalize(testCheckoutConfig(), svc, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			State checkoutsvc.SessionState  `json:"state"`
			Sale  *checkoutsvc.HistoryEntry `json:"sale"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding finalize envelope: %v", err)
	}
	if envelope.Data.Sale == nil {
		t.Fatalf("expected a sale entry")
	}
	if envelope.Data.Sale.PaymentMethod != enums.PaymentMethodCard {
		t.Fatalf("expected card payment, got %s", envelope.Data.Sale.PaymentMethod)
	}
	if envelope.Data.Sale.ClientName != "Standard client" {
		t.Fatalf("expected default client name, got %q", envelope.Data.Sale.ClientName)
	}
	if !envelope.Data.Sale.Total.Equal(decimal.RequireFromString("7")) {
		t.Fatalf("expected total 7, got %s", envelope.Data.Sale.Total)
	}
	if len(envelope.Data.State.Items) != 0 {
		t.Fatalf("finalize must clear the basket")
	}
}

func TestRegisterFinalizeEmptyBasketReturnsNoSale(t *testing.T) {
	svc := newTestCheckoutService(t)
	rec := httptest.NewRecorder()
	req := registerRequest(t, http.MethodPost, "/api/v1/registers/till-1/finalize", `{}`)

	RegisterFinalize(testCheckoutConfig(), svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var envelope struct {
		Data struct {
			Sale *checkoutsvc.HistoryEntry `json:"sale"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding finalize envelope: %v", err)
	}
	if envelope.Data.Sale != nil {
		t.Fatalf("empty basket must not produce a sale")
	}
}

func TestRegisterRecallUnknownSale(t *testing.T) {
	svc := newTestCheckoutService(t)
	rec := httptest.NewRecorder()
	req := registerRequest(t, http.MethodPost, "/api/v1/registers/till-1/recall", `{"sale_id":"missing"}`)

	RegisterRecall(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	if body.Error.Code != "NOT_FOUND" {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
}

func TestRegisterCycleBasketValidation(t *testing.T) {
	svc := newTestCheckoutService(t)
	rec := httptest.NewRecorder()
	req := registerRequest(t, http.MethodPost, "/api/v1/registers/till-1/baskets/cycle", `{"direction":"sideways"}`)

	RegisterCycleBasket(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid direction, got %d", rec.Code)
	}
}

func TestRegisterKeyTogglesManualEntry(t *testing.T) {
	svc := newTestCheckoutService(t)
	rec := httptest.NewRecorder()
	req := registerRequest(t, http.MethodPost, "/api/v1/registers/till-1/keys", `{"key":"F2"}`)

	RegisterKey(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var envelope struct {
		Data struct {
			State   checkoutsvc.SessionState `json:"state"`
			Command string                   `json:"command"`
			Handled bool                     `json:"handled"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding key envelope: %v", err)
	}
	if !envelope.Data.Handled {
		t.Fatalf("expected F2 to be handled")
	}
	if !envelope.Data.State.ManualEntry {
		t.Fatalf("expected manual entry to toggle on")
	}
}

func TestRegisterEditorEndToEnd(t *testing.T) {
	svc := newTestCheckoutService(t)
	logg := testLogger()

	scanRec := httptest.NewRecorder()
	RegisterScan(svc, logg).ServeHTTP(scanRec, registerRequest(t, http.MethodPost, "/api/v1/registers/till-1/scan", `{"barcode":"4000001","qty":3}`))
	state := decodeState(t, scanRec)
	itemID := state.Items[0].ID

	openRec := httptest.NewRecorder()
	RegisterEditorOpen(svc, logg).ServeHTTP(openRec, registerRequest(t, http.MethodPost, "/api/v1/registers/till-1/editor/open", `{"item_id":"`+itemID+`","focus":"price"}`))
	state = decodeState(t, openRec)
	if !state.Editor.Open {
		t.Fatalf("expected editor to open")
	}
	if state.Editor.TotalText != "10.5" {
		t.Fatalf("expected seeded total 10.5, got %q", state.Editor.TotalText)
	}

	keyRec := httptest.NewRecorder()
	RegisterEditorKeypad(svc, logg).ServeHTTP(keyRec, registerRequest(t, http.MethodPost, "/api/v1/registers/till-1/editor/keypad", `{"key":"5"}`))
	state = decodeState(t, keyRec)
	if state.Editor.PriceText != "5" {
		t.Fatalf("keypad press on a fully selected field must replace it, got %q", state.Editor.PriceText)
	}

	confirmRec := httptest.NewRecorder()
	RegisterEditorConfirm(svc, logg).ServeHTTP(confirmRec, registerRequest(t, http.MethodPost, "/api/v1/registers/till-1/editor/confirm", ""))
	state = decodeState(t, confirmRec)
	if state.Editor.Open {
		t.Fatalf("expected editor to close after confirm")
	}
	if !state.Items[0].EffectivePrice().Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected confirmed price 5, got %s", state.Items[0].EffectivePrice())
	}
}

func TestRegisterEditorFieldValidation(t *testing.T) {
	svc := newTestCheckoutService(t)
	rec := httptest.NewRecorder()
	req := registerRequest(t, http.MethodPost, "/api/v1/registers/till-1/editor/field", `{"field":"weight","text":"1"}`)

	RegisterEditorField(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestRegisterStateRequiresRegisterID(t *testing.T) {
	svc := newTestCheckoutService(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/registers//", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chi.NewRouteContext()))

	RegisterState(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without register id, got %d", rec.Code)
	}
}
