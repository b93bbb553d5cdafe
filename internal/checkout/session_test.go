package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	"github.com/tillpoint/tillpoint-backend/pkg/idgen"
)

type stubCatalog struct {
	products []Product
}

func (s *stubCatalog) ProductByBarcode(_ context.Context, barcode string) (*Product, error) {
	for _, p := range s.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			cp := p
			return &cp, nil
		}
	}
	return nil, errors.New("product not found")
}

func (s *stubCatalog) ProductByRef(_ context.Context, ref string) (*Product, error) {
	for _, p := range s.products {
		if p.ID == ref || p.SKU == ref {
			cp := p
			return &cp, nil
		}
	}
	return nil, errors.New("product not found")
}

type recordedSale struct {
	registerID   string
	entry        HistoryEntry
	supersededID string
}

type stubRecorder struct {
	calls []recordedSale
	err   error
}

func (s *stubRecorder) RecordFinalized(_ context.Context, registerID string, entry HistoryEntry, supersededID string) error {
	s.calls = append(s.calls, recordedSale{registerID: registerID, entry: entry, supersededID: supersededID})
	return s.err
}

func barcodePtr(code string) *string {
	return &code
}

func testSession(catalog *stubCatalog, recorder *stubRecorder) *Session {
	if catalog == nil {
		catalog = &stubCatalog{products: []Product{
			{ID: "p1", SKU: "APPLE", Barcode: barcodePtr("4001"), Name: "Apples", Unit: enums.UnitKilogram, Price: dec("4"), Category: "produce"},
			{ID: "p2", SKU: "MILK", Barcode: barcodePtr("4002"), Name: "Milk", Unit: enums.UnitPiece, Price: dec("1.2")},
		}}
	}
	cfg := SessionConfig{MaxBaskets: 3, HoldSlots: 6, TaxRate: decimal.Zero}
	var rec saleRecorder
	if recorder != nil {
		rec = recorder
	}
	return NewSession("till-1", cfg, catalog, rec, &idgen.Sequential{Prefix: "id"}, time.Now, nil, nil)
}

func TestSessionScanAddsItem(t *testing.T) {
	t.Parallel()

	s := testSession(nil, nil)
	state, err := s.Scan(context.Background(), "4001", decimal.Zero)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(state.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(state.Items))
	}
	// zero qty defaults to one unit
	if !state.Items[0].Qty.Equal(dec("1")) {
		t.Fatalf("qty = %s, want 1", state.Items[0].Qty)
	}
}

func TestSessionScanUnknownBarcode(t *testing.T) {
	t.Parallel()

	s := testSession(nil, nil)
	state, err := s.Scan(context.Background(), "9999", dec("1"))
	if err != nil {
		t.Fatalf("unknown barcode surfaced an error: %v", err)
	}
	if len(state.Items) != 0 {
		t.Fatal("unknown barcode added an item")
	}
	if len(state.Activity) == 0 {
		t.Fatal("unknown barcode left no activity line")
	}
}

func TestSessionRemoveClearsSelection(t *testing.T) {
	t.Parallel()

	s := testSession(nil, nil)
	s.Scan(context.Background(), "4001", dec("1"))
	s.SelectItem("p1")

	state := s.RemoveItem("p1")
	if state.SelectedItemID != "" {
		t.Fatalf("selection = %q, want cleared", state.SelectedItemID)
	}
	if len(state.Items) != 0 {
		t.Fatal("item not removed")
	}
}

func TestSessionEditorEndToEnd(t *testing.T) {
	t.Parallel()

	s := testSession(nil, nil)
	s.AddItem(context.Background(), "APPLE", dec("3"))

	state := s.OpenEditor("p1", enums.FocusFieldPrice)
	if !state.Editor.Open {
		t.Fatal("editor did not open")
	}
	if state.Editor.PriceText != "4" || state.Editor.QtyText != "3" || state.Editor.TotalText != "12" {
		t.Fatalf("seeded editor: %+v", state.Editor)
	}

	// replace the seeded price with 5 via the keypad, then confirm
	s.EditorKeypad("5")
	state = s.EditorConfirm()
	if state.Editor.Open {
		t.Fatal("editor still open after confirm")
	}
	if !state.Items[0].Price.Equal(dec("5")) {
		t.Fatalf("price = %s, want 5", state.Items[0].Price)
	}
	if state.Items[0].SellPrice == nil || !state.Items[0].SellPrice.Equal(dec("5")) {
		t.Fatal("confirm did not set the sell price override")
	}
	if !state.Totals.Total.Equal(dec("15")) {
		t.Fatalf("total = %s, want 15", state.Totals.Total)
	}
}

func TestSessionEditorConfirmInvalidKeepsPanelOpen(t *testing.T) {
	t.Parallel()

	s := testSession(nil, nil)
	s.AddItem(context.Background(), "APPLE", dec("3"))
	s.OpenEditor("p1", enums.FocusFieldQuantity)

	s.EditorSetField(enums.FocusFieldQuantity, "0")
	state := s.EditorConfirm()
	if !state.Editor.Open {
		t.Fatal("invalid confirm closed the panel")
	}
	if !state.Items[0].Qty.Equal(dec("3")) {
		t.Fatalf("qty = %s, basket must stay untouched", state.Items[0].Qty)
	}
}

func TestSessionFinalizeRecordsSale(t *testing.T) {
	t.Parallel()

	recorder := &stubRecorder{}
	s := testSession(nil, recorder)
	s.Scan(context.Background(), "4001", dec("2"))

	state, entry := s.Finalize(context.Background(), FinalizeMeta{ClientName: "Walk-in"})
	if entry == nil {
		t.Fatal("finalize returned no entry")
	}
	if len(state.Items) != 0 {
		t.Fatal("basket not cleared")
	}
	if len(recorder.calls) != 1 {
		t.Fatalf("recorder calls = %d, want 1", len(recorder.calls))
	}
	if recorder.calls[0].registerID != "till-1" || !recorder.calls[0].entry.Total.Equal(dec("8")) {
		t.Fatalf("recorded %+v", recorder.calls[0])
	}
}

func TestSessionFinalizeRecorderFailureDoesNotBlock(t *testing.T) {
	t.Parallel()

	recorder := &stubRecorder{err: errors.New("db down")}
	s := testSession(nil, recorder)
	s.Scan(context.Background(), "4001", dec("1"))

	state, entry := s.Finalize(context.Background(), FinalizeMeta{})
	if entry == nil {
		t.Fatal("recorder failure blocked the finalize")
	}
	if len(state.History) != 1 {
		t.Fatal("history entry missing after recorder failure")
	}
}

func TestSessionRecallResaveSingleEntry(t *testing.T) {
	t.Parallel()

	recorder := &stubRecorder{}
	s := testSession(nil, recorder)
	s.Scan(context.Background(), "4001", dec("1"))
	s.Scan(context.Background(), "4002", dec("1"))
	_, first := s.Finalize(context.Background(), FinalizeMeta{})

	state, ok := s.Recall(first.ID)
	if !ok {
		t.Fatal("recall failed")
	}
	if len(state.Items) != 2 || state.PreviewSaleID != first.ID {
		t.Fatalf("recalled state: items=%d preview=%q", len(state.Items), state.PreviewSaleID)
	}

	s.AddItem(context.Background(), "APPLE", dec("1"))
	state, second := s.Finalize(context.Background(), FinalizeMeta{})
	if len(state.History) != 1 {
		t.Fatalf("history = %d entries, want 1 after resave", len(state.History))
	}
	if recorder.calls[1].supersededID != first.ID {
		t.Fatalf("superseded id = %q, want %q", recorder.calls[1].supersededID, first.ID)
	}
	if second.ID == first.ID {
		t.Fatal("resave reused the superseded id")
	}
}

func TestSessionCapacityNotice(t *testing.T) {
	t.Parallel()

	s := testSession(nil, nil)
	s.CreateBasket()
	state := s.CreateBasket()
	if state.CapacityNotice != "" {
		t.Fatalf("notice set below capacity: %q", state.CapacityNotice)
	}

	state = s.CreateBasket()
	if state.CapacityNotice == "" {
		t.Fatal("capacity notice missing at the max")
	}
	if state.BasketCount != 3 {
		t.Fatalf("basket count = %d, want 3", state.BasketCount)
	}
}

func TestSessionHandleKeyEscapePrecedence(t *testing.T) {
	t.Parallel()

	s := testSession(nil, nil)
	s.AddItem(context.Background(), "APPLE", dec("1"))
	s.OpenEditor("p1", enums.FocusFieldPrice)
	s.SetOverview(true)

	// first escape closes only the overview
	state, cmd, _ := s.HandleKey(context.Background(), "Escape")
	if cmd != enums.CommandCloseOverview {
		t.Fatalf("first escape = %s", cmd)
	}
	if state.OverviewOpen || !state.Editor.Open {
		t.Fatalf("after first escape: overview=%v editor=%v", state.OverviewOpen, state.Editor.Open)
	}

	// second escape closes the editor
	state, cmd, _ = s.HandleKey(context.Background(), "Escape")
	if cmd != enums.CommandCloseEditor {
		t.Fatalf("second escape = %s", cmd)
	}
	if state.Editor.Open {
		t.Fatal("editor survived second escape")
	}

	// third escape falls through to go-home
	_, cmd, _ = s.HandleKey(context.Background(), "Escape")
	if cmd != enums.CommandGoHome {
		t.Fatalf("third escape = %s", cmd)
	}
}

func TestSessionHandleKeyToggles(t *testing.T) {
	t.Parallel()

	s := testSession(nil, nil)
	state, _, _ := s.HandleKey(context.Background(), "F2")
	if !state.ManualEntry {
		t.Fatal("F2 did not enable manual entry")
	}
	state, _, _ = s.HandleKey(context.Background(), "F2")
	if state.ManualEntry {
		t.Fatal("F2 did not toggle manual entry off")
	}

	state, _, _ = s.HandleKey(context.Background(), "F3")
	if !state.ScannerPaused {
		t.Fatal("F3 did not pause the scanner")
	}
}

func TestSessionHandleKeyFinalize(t *testing.T) {
	t.Parallel()

	recorder := &stubRecorder{}
	s := testSession(nil, recorder)
	s.Scan(context.Background(), "4001", dec("1"))

	state, cmd, handled := s.HandleKey(context.Background(), "F9")
	if cmd != enums.CommandFinalizeBasket || !handled {
		t.Fatalf("F9: cmd=%s handled=%v", cmd, handled)
	}
	if len(state.Items) != 0 || len(state.History) != 1 {
		t.Fatalf("F9 did not finalize: items=%d history=%d", len(state.Items), len(state.History))
	}
}

func TestSessionResumeClosesOverview(t *testing.T) {
	t.Parallel()

	s := testSession(nil, nil)
	s.CreateBasket()
	s.SetOverview(true)

	state := s.ResumeBasket(0)
	if state.ActiveIndex != 0 {
		t.Fatalf("active index = %d, want 0", state.ActiveIndex)
	}
	if state.OverviewOpen {
		t.Fatal("overview still open after resume")
	}
}

func TestSessionSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	s := testSession(nil, nil)
	s.Scan(context.Background(), "4001", dec("2"))
	s.CreateBasket()
	s.Scan(context.Background(), "4002", dec("1"))

	data, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	restored := testSession(nil, nil)
	if err := restored.RestoreSnapshot(data); err != nil {
		t.Fatalf("restore: %v", err)
	}

	state := restored.State()
	if state.BasketCount != 2 {
		t.Fatalf("basket count = %d, want 2", state.BasketCount)
	}
	if state.ActiveIndex != 1 {
		t.Fatalf("active index = %d, want 1", state.ActiveIndex)
	}
	if len(state.Items) != 1 || !state.Items[0].Qty.Equal(dec("1")) {
		t.Fatalf("restored items: %+v", state.Items)
	}
}
