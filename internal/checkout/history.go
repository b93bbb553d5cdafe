package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	"github.com/tillpoint/tillpoint-backend/pkg/idgen"
)

// HistoryEntry is a finalized, dated sale record. Immutable once created,
// except that recalling, editing and resaving replaces the prior entry.
type HistoryEntry struct {
	ID            string              `json:"id"`
	CreatedAt     time.Time           `json:"created_at"`
	Items         []LineItem          `json:"items"`
	Total         decimal.Decimal     `json:"total"`
	ClientName    string              `json:"client_name"`
	CashierName   string              `json:"cashier_name"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
}

// FinalizeMeta carries the who/how of a finalized sale.
type FinalizeMeta struct {
	ClientName    string
	CashierName   string
	PaymentMethod enums.PaymentMethod
}

// Archive turns baskets into history entries and supports recall-for-edit
// with supersede-on-resave semantics. Entries are kept newest first.
type Archive struct {
	entries   []HistoryEntry
	previewID string
	ids       idgen.Generator
	now       func() time.Time
}

// NewArchive builds an empty archive with injected id and clock sources.
func NewArchive(ids idgen.Generator, now func() time.Time) *Archive {
	if now == nil {
		now = time.Now
	}
	return &Archive{ids: ids, now: now}
}

// FinalizeResult reports what a finalize produced.
type FinalizeResult struct {
	Entry        HistoryEntry
	SupersededID string
}

// Finalize snapshots a non-empty basket into a fresh entry, prepends it, and
// clears the basket. When an entry is being previewed (recalled), the prior
// entry is removed so the resave yields exactly one record. Returns false on
// an empty basket, leaving everything untouched.
func (a *Archive) Finalize(basket *Basket, meta FinalizeMeta) (FinalizeResult, bool) {
	if basket == nil || basket.IsEmpty() {
		return FinalizeResult{}, false
	}

	items := CloneItems(basket.Items)
	total := decimal.Zero
	for _, item := range items {
		line := item.EffectivePrice().Mul(item.Qty)
		if item.DiscountValue != nil {
			line = line.Sub(*item.DiscountValue)
		}
		total = total.Add(line)
	}

	if meta.PaymentMethod == "" {
		meta.PaymentMethod = enums.PaymentMethodCash
	}
	entry := HistoryEntry{
		ID:            a.ids.Next(),
		CreatedAt:     a.now(),
		Items:         items,
		Total:         total,
		ClientName:    meta.ClientName,
		CashierName:   meta.CashierName,
		PaymentMethod: meta.PaymentMethod,
	}

	superseded := ""
	if a.previewID != "" {
		if a.remove(a.previewID) {
			superseded = a.previewID
		}
		a.previewID = ""
	}

	a.entries = append([]HistoryEntry{entry}, a.entries...)
	basket.Clear()
	return FinalizeResult{Entry: entry, SupersededID: superseded}, true
}

// Recall deep-copies an entry's items for loading into the active basket and
// marks the entry as currently previewing. History itself is untouched until
// the next finalize.
func (a *Archive) Recall(entryID string) ([]LineItem, bool) {
	for _, e := range a.entries {
		if e.ID == entryID {
			a.previewID = entryID
			return CloneItems(e.Items), true
		}
	}
	return nil, false
}

// DiscardPreview clears the previewing marker only.
func (a *Archive) DiscardPreview() {
	a.previewID = ""
}

// PreviewID returns the id of the entry being previewed, empty when none.
func (a *Archive) PreviewID() string {
	return a.previewID
}

// Entries returns the history newest first.
func (a *Archive) Entries() []HistoryEntry {
	return a.entries
}

// Get returns an entry by id.
func (a *Archive) Get(entryID string) (HistoryEntry, bool) {
	for _, e := range a.entries {
		if e.ID == entryID {
			return e, true
		}
	}
	return HistoryEntry{}, false
}

func (a *Archive) remove(entryID string) bool {
	for i, e := range a.entries {
		if e.ID == entryID {
			a.entries = append(a.entries[:i], a.entries[i+1:]...)
			return true
		}
	}
	return false
}
