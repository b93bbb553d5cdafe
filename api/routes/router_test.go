package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	catalogsvc "github.com/tillpoint/tillpoint-backend/internal/catalog"
	checkoutsvc "github.com/tillpoint/tillpoint-backend/internal/checkout"
	"github.com/tillpoint/tillpoint-backend/pkg/config"
	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubRouterCatalog struct{}

func (stubRouterCatalog) ProductByBarcode(_ context.Context, barcode string) (*checkoutsvc.Product, error) {
	if barcode != "4000001" {
		return nil, nil
	}
	return &checkoutsvc.Product{
		ID:    "prod-1",
		SKU:   "APL-1",
		Name:  "Apples",
		Unit:  enums.UnitKilogram,
		Price: decimal.RequireFromString("3.50"),
	}, nil
}

func (s stubRouterCatalog) ProductByRef(ctx context.Context, ref string) (*checkoutsvc.Product, error) {
	return s.ProductByBarcode(ctx, "4000001")
}

func (stubRouterCatalog) GetProduct(context.Context, uuid.UUID) (*models.Product, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (stubRouterCatalog) ListProducts(context.Context, catalogsvc.ListInput) ([]models.Product, error) {
	return nil, nil
}

type stubRouterSales struct{}

func (stubRouterSales) RecordFinalized(context.Context, string, checkoutsvc.HistoryEntry, string) error {
	return nil
}

func (stubRouterSales) GetSale(context.Context, uuid.UUID) (*models.SaleRecord, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
}

func (stubRouterSales) ListSales(context.Context, string, int) ([]models.SaleRecord, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		Checkout: config.CheckoutConfig{
			MaxBaskets:       7,
			HoldSlots:        6,
			VATRate:          "0",
			QuickSaleVATRate: "0.19",
			DefaultClient:    "Standard client",
			DefaultCashier:   "FirstLastName",
		},
	}
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})

	checkoutService, err := checkoutsvc.NewService(cfg.Checkout, checkoutsvc.Deps{Catalog: stubRouterCatalog{}})
	if err != nil {
		t.Fatalf("building checkout service: %v", err)
	}

	return NewRouter(cfg, logg, stubPinger{}, stubPinger{}, prometheus.NewRegistry(), checkoutService, stubRouterCatalog{}, stubRouterSales{})
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouterRegisterFlow(t *testing.T) {
	router := newTestRouter(t)

	scanRec := httptest.NewRecorder()
	scanReq := httptest.NewRequest(http.MethodPost, "/api/v1/registers/till-9/scan", strings.NewReader(`{"barcode":"4000001","qty":2}`))
	router.ServeHTTP(scanRec, scanReq)
	if scanRec.Code != http.StatusOK {
		t.Fatalf("scan: expected 200, got %d: %s", scanRec.Code, scanRec.Body.String())
	}

	stateRec := httptest.NewRecorder()
	router.ServeHTTP(stateRec, httptest.NewRequest(http.MethodGet, "/api/v1/registers/till-9", nil))
	if stateRec.Code != http.StatusOK {
		t.Fatalf("state: expected 200, got %d", stateRec.Code)
	}

	var envelope struct {
		Data checkoutsvc.SessionState `json:"data"`
	}
	if err := json.NewDecoder(stateRec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding state: %v", err)
	}
	if envelope.Data.RegisterID != "till-9" {
		t.Fatalf("unexpected register id %q", envelope.Data.RegisterID)
	}
	if len(envelope.Data.Items) != 1 {
		t.Fatalf("expected one item after scan, got %d", len(envelope.Data.Items))
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
