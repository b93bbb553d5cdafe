package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	"github.com/tillpoint/tillpoint-backend/pkg/idgen"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
	"github.com/tillpoint/tillpoint-backend/pkg/metrics"
	"github.com/tillpoint/tillpoint-backend/pkg/types"
)

const activityLogCap = 50

// productLoader resolves scanner and manual input against the catalog.
type productLoader interface {
	ProductByBarcode(ctx context.Context, barcode string) (*Product, error)
	ProductByRef(ctx context.Context, ref string) (*Product, error)
}

// saleRecorder consumes finalized sales. Failures must not block the till.
type saleRecorder interface {
	RecordFinalized(ctx context.Context, registerID string, entry HistoryEntry, supersededID string) error
}

// SessionConfig bounds one register's checkout state.
type SessionConfig struct {
	MaxBaskets int
	HoldSlots  int
	TaxRate    decimal.Decimal
}

// Session is one register's checkout state machine: baskets, history,
// editor, panel flags and the recall marker. Every operation holds the
// session mutex for its whole duration, so transitions never interleave.
type Session struct {
	mu sync.Mutex

	registerID string
	cfg        SessionConfig

	baskets *BasketCollection
	archive *Archive
	editor  EditorState

	selectedItemID string
	overviewOpen   bool
	manualEntry    bool
	scannerPaused  bool
	capacityNotice string
	activity       []string

	catalog  productLoader
	recorder saleRecorder
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics
}

// NewSession builds a register session with one empty basket.
func NewSession(registerID string, cfg SessionConfig, catalog productLoader, recorder saleRecorder, ids idgen.Generator, now func() time.Time, logg *logger.Logger, m *metrics.CheckoutMetrics) *Session {
	if cfg.MaxBaskets < 1 {
		cfg.MaxBaskets = 1
	}
	return &Session{
		registerID: registerID,
		cfg:        cfg,
		baskets:    NewBasketCollection(cfg.MaxBaskets, ids, now),
		archive:    NewArchive(ids, now),
		catalog:    catalog,
		recorder:   recorder,
		logg:       logg,
		metrics:    m,
	}
}

// RegisterID returns the id of the till this session belongs to.
func (s *Session) RegisterID() string {
	return s.registerID
}

// Scan resolves a barcode and adds the quantity to the active basket. An
// unknown barcode adds nothing and surfaces an activity-log line instead.
func (s *Session) Scan(ctx context.Context, barcode string, qty decimal.Decimal) (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty.IsZero() {
		qty = decimal.NewFromInt(1)
	}

	product, err := s.catalog.ProductByBarcode(ctx, barcode)
	if err != nil || product == nil {
		s.metrics.IncUnknownBarcode(s.registerID)
		s.logActivity(fmt.Sprintf("unknown barcode %q", barcode))
		if s.logg != nil {
			s.logg.Warn(s.logCtx(ctx), fmt.Sprintf("scan matched no product: %s", barcode))
		}
		return s.stateLocked(), nil
	}

	if s.baskets.Active().Upsert(*product, qty) {
		s.metrics.IncScan(s.registerID)
	}
	return s.stateLocked(), nil
}

// AddItem resolves a product id or SKU (manual entry / product tap) and
// upserts the quantity into the active basket.
func (s *Session) AddItem(ctx context.Context, ref string, qty decimal.Decimal) (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.catalog.ProductByRef(ctx, ref)
	if err != nil {
		return s.stateLocked(), err
	}
	if s.baskets.Active().Upsert(*product, qty) {
		s.metrics.IncScan(s.registerID)
	}
	return s.stateLocked(), nil
}

// RemoveItem deletes a line from the active basket, clearing a selection
// that pointed at it so nothing is left dangling.
func (s *Session) RemoveItem(itemID string) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.baskets.Active().RemoveByID(itemID) {
		if s.selectedItemID == itemID {
			s.selectedItemID = ""
		}
		if s.editor.Open && s.editor.TargetItemID == itemID {
			s.editor = EditorState{}
		}
	}
	return s.stateLocked()
}

// RemoveLast drops the most recently added line from the active basket.
func (s *Session) RemoveLast() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	basket := s.baskets.Active()
	if len(basket.Items) > 0 {
		last := basket.Items[len(basket.Items)-1]
		if s.selectedItemID == last.ID {
			s.selectedItemID = ""
		}
		basket.RemoveLast()
	}
	return s.stateLocked()
}

// SelectItem marks a line as selected for the editor, or clears with "".
func (s *Session) SelectItem(itemID string) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if itemID == "" || s.baskets.Active().ItemByID(itemID) != nil {
		s.selectedItemID = itemID
	}
	return s.stateLocked()
}

// CreateBasket opens a new basket, or sets a capacity notice at the max.
func (s *Session) CreateBasket() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.baskets.Create(); !ok {
		s.capacityNotice = fmt.Sprintf("maximum of %d open baskets reached", s.baskets.Max())
		s.logActivity(s.capacityNotice)
	} else {
		s.capacityNotice = ""
		s.metrics.SetOpenBaskets(s.registerID, s.baskets.Len())
	}
	return s.stateLocked()
}

// SelectBasket switches the active basket when the index is valid.
func (s *Session) SelectBasket(index int) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.baskets.Select(index)
	return s.stateLocked()
}

// CycleBasket moves the active pointer circularly.
func (s *Session) CycleBasket(direction int) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.baskets.Cycle(direction)
	return s.stateLocked()
}

// ResumeBasket activates a held basket and closes the overview panel.
func (s *Session) ResumeBasket(index int) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.baskets.Select(index) {
		s.overviewOpen = false
	}
	return s.stateLocked()
}

// SetOverview opens or closes the held-basket overview panel.
func (s *Session) SetOverview(open bool) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overviewOpen = open
	return s.stateLocked()
}

// OpenEditor seeds the price/quantity/total panel from the given item, or
// from the currently selected one when itemID is empty.
func (s *Session) OpenEditor(itemID string, focus enums.FocusField) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if itemID == "" {
		itemID = s.selectedItemID
	}
	item := s.baskets.Active().ItemByID(itemID)
	if item == nil {
		return s.stateLocked()
	}
	s.selectedItemID = itemID
	s.editor = OpenEditor(*item, focus)
	return s.stateLocked()
}

// EditorSetField replaces one editor field's text and recomputes the rest.
func (s *Session) EditorSetField(field enums.FocusField, text string) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editor.Open {
		s.editor = s.editor.WithFieldText(field, text)
	}
	return s.stateLocked()
}

// EditorSelection records a reported caret/selection change.
func (s *Session) EditorSelection(field enums.FocusField, sel types.Selection) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editor.Open {
		s.editor = s.editor.WithSelection(field, sel)
	}
	return s.stateLocked()
}

// EditorFocus moves editor input focus between the three fields.
func (s *Session) EditorFocus(field enums.FocusField) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editor.Open {
		s.editor = s.editor.WithFocus(field)
	}
	return s.stateLocked()
}

// EditorKeypad routes a virtual keypad tap to the focused editor field.
func (s *Session) EditorKeypad(key string) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editor.Open {
		s.editor = s.editor.ApplyKeypad(key)
	}
	return s.stateLocked()
}

// EditorConfirm patches the target item when the pending price and quantity
// validate, then closes the panel. Invalid input leaves the panel open and
// the basket untouched.
func (s *Session) EditorConfirm() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.editor.Open {
		return s.stateLocked()
	}
	price, qty, ok := s.editor.Confirm()
	if !ok {
		return s.stateLocked()
	}
	if item := s.baskets.Active().ItemByID(s.editor.TargetItemID); item != nil {
		item.Price = price
		override := price
		item.SellPrice = &override
		item.Qty = qty
	}
	s.editor = EditorState{}
	return s.stateLocked()
}

// EditorCancel discards all pending editor text.
func (s *Session) EditorCancel() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editor = EditorState{}
	return s.stateLocked()
}

// Finalize archives the active basket as a dated sale record and hands it
// to the sales collaborator. Recording is best-effort: a storage or publish
// failure is logged and never blocks the till.
func (s *Session) Finalize(ctx context.Context, meta FinalizeMeta) (SessionState, *HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.finalizeLocked(ctx, meta)
	return s.stateLocked(), entry
}

func (s *Session) finalizeLocked(ctx context.Context, meta FinalizeMeta) *HistoryEntry {
	basket := s.baskets.Active()
	openedAt := basket.OpenedAt
	result, ok := s.archive.Finalize(basket, meta)
	if !ok {
		return nil
	}

	s.editor = EditorState{}
	s.selectedItemID = ""
	basket.OpenedAt = time.Now()

	total, _ := result.Entry.Total.Float64()
	s.metrics.IncFinalized(s.registerID, result.Entry.PaymentMethod.String(), total)
	if !openedAt.IsZero() {
		s.metrics.ObserveOpenDuration(s.registerID, time.Since(openedAt))
	}

	if s.recorder != nil {
		if err := s.recorder.RecordFinalized(ctx, s.registerID, result.Entry, result.SupersededID); err != nil && s.logg != nil {
			s.logg.Error(s.logCtx(ctx), "recording finalized sale", err)
		}
	}

	entry := result.Entry
	return &entry
}

// Cancel clears the active basket without producing a sale and drops any
// recall preview marker.
func (s *Session) Cancel() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	return s.stateLocked()
}

func (s *Session) cancelLocked() {
	if !s.baskets.Active().IsEmpty() {
		s.metrics.IncCancelled(s.registerID)
	}
	s.baskets.Active().Clear()
	s.archive.DiscardPreview()
	s.editor = EditorState{}
	s.selectedItemID = ""
}

// Recall loads a past sale's items into the active basket for inspection or
// correction; the next finalize supersedes the recalled entry.
func (s *Session) Recall(saleID string) (SessionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, ok := s.archive.Recall(saleID)
	if !ok {
		return s.stateLocked(), false
	}
	s.baskets.Active().Items = items
	s.selectedItemID = ""
	return s.stateLocked(), true
}

// DiscardRecall clears the previewing marker, keeping basket contents.
func (s *Session) DiscardRecall() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.archive.DiscardPreview()
	return s.stateLocked()
}

// HandleKey runs a raw keyboard event through the command dispatcher and
// applies the resolved command.
func (s *Session) HandleKey(ctx context.Context, key string) (SessionState, enums.Command, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, handled := Dispatch(key, s.modalContextLocked())

	switch cmd {
	case enums.CommandCloseOverview:
		s.overviewOpen = false
	case enums.CommandCloseEditor:
		s.editor = EditorState{}
	case enums.CommandCycleNextBasket:
		s.baskets.Cycle(1)
	case enums.CommandCyclePrevBasket:
		s.baskets.Cycle(-1)
	case enums.CommandToggleManualEntry:
		s.manualEntry = !s.manualEntry
	case enums.CommandToggleScannerPause:
		s.scannerPaused = !s.scannerPaused
	case enums.CommandFinalizeBasket:
		s.finalizeLocked(ctx, FinalizeMeta{})
	case enums.CommandCancelBasket:
		s.cancelLocked()
	}

	return s.stateLocked(), cmd, handled
}

// ModalContext reports which blocking panel is open, if any.
func (s *Session) ModalContext() enums.ModalContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modalContextLocked()
}

func (s *Session) modalContextLocked() enums.ModalContext {
	switch {
	case s.overviewOpen:
		return enums.ModalContextOverview
	case s.editor.Open:
		return enums.ModalContextPriceEditor
	default:
		return enums.ModalContextNone
	}
}

// SessionState is the full read model the till UI renders from.
type SessionState struct {
	RegisterID     string           `json:"register_id"`
	ActiveIndex    int              `json:"active_index"`
	BasketCount    int              `json:"basket_count"`
	MaxBaskets     int              `json:"max_baskets"`
	BasketID       string           `json:"basket_id"`
	Items          []LineItem       `json:"items"`
	Totals         Totals           `json:"totals"`
	Held           []HeldBasket     `json:"held_baskets"`
	Editor         EditorState      `json:"editor"`
	SelectedItemID string           `json:"selected_item_id,omitempty"`
	OverviewOpen   bool             `json:"overview_open"`
	ManualEntry    bool             `json:"manual_entry"`
	ScannerPaused  bool             `json:"scanner_paused"`
	CapacityNotice string           `json:"capacity_notice,omitempty"`
	PreviewSaleID  string           `json:"preview_sale_id,omitempty"`
	History        []HistoryEntry   `json:"history"`
	Activity       []string         `json:"activity"`
}

// State returns a consistent snapshot of the session read model.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() SessionState {
	active := s.baskets.Active()
	return SessionState{
		RegisterID:     s.registerID,
		ActiveIndex:    s.baskets.ActiveIndex(),
		BasketCount:    s.baskets.Len(),
		MaxBaskets:     s.baskets.Max(),
		BasketID:       active.ID,
		Items:          CloneItems(active.Items),
		Totals:         CalculateTotals(active.Items, s.cfg.TaxRate),
		Held:           s.baskets.Held(s.cfg.HoldSlots),
		Editor:         s.editor,
		SelectedItemID: s.selectedItemID,
		OverviewOpen:   s.overviewOpen,
		ManualEntry:    s.manualEntry,
		ScannerPaused:  s.scannerPaused,
		CapacityNotice: s.capacityNotice,
		PreviewSaleID:  s.archive.PreviewID(),
		History:        s.archive.Entries(),
		Activity:       append([]string{}, s.activity...),
	}
}

func (s *Session) logActivity(line string) {
	s.activity = append(s.activity, line)
	if len(s.activity) > activityLogCap {
		s.activity = s.activity[len(s.activity)-activityLogCap:]
	}
}

func (s *Session) logCtx(ctx context.Context) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithRegisterID(ctx, s.registerID)
}
