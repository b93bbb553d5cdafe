package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint-backend/api/responses"
	"github.com/tillpoint/tillpoint-backend/api/validators"
	checkoutsvc "github.com/tillpoint/tillpoint-backend/internal/checkout"
	"github.com/tillpoint/tillpoint-backend/pkg/config"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
	"github.com/tillpoint/tillpoint-backend/pkg/types"
)

// registerSession resolves the till session from the URL, writing the error
// itself when the register id is missing or the service is down.
func registerSession(svc checkoutsvc.Service, logg *logger.Logger, w http.ResponseWriter, r *http.Request) (*checkoutsvc.Session, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
		return nil, false
	}

	registerID := strings.TrimSpace(chi.URLParam(r, "registerId"))
	if registerID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "register id is required"))
		return nil, false
	}

	session, err := svc.Session(r.Context(), registerID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, false
	}
	return session, true
}

func writeSessionState(svc checkoutsvc.Service, w http.ResponseWriter, r *http.Request, session *checkoutsvc.Session, state checkoutsvc.SessionState) {
	svc.SaveSnapshot(r.Context(), session)
	responses.WriteSuccess(w, state)
}

// RegisterState returns the full read-model for a till.
func RegisterState(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}
		responses.WriteSuccess(w, session.State())
	}
}

type scanRequest struct {
	Barcode string          `json:"barcode" validate:"required"`
	Qty     decimal.Decimal `json:"qty"`
}

// RegisterScan adds a scanned product to the active basket. Unknown barcodes
// come back as an activity-log line, not an error.
func RegisterScan(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}

		var payload scanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Qty.IsNegative() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "qty must not be negative"))
			return
		}

		state, err := session.Scan(r.Context(), payload.Barcode, payload.Qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSessionState(svc, w, r, session, state)
	}
}

type addItemRequest struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Qty       decimal.Decimal `json:"qty" validate:"required"`
}

// RegisterAddItem handles manual entry and product-tile taps.
func RegisterAddItem(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ref := strings.TrimSpace(payload.ProductID)
		if ref == "" {
			ref = strings.TrimSpace(payload.SKU)
		}
		if ref == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product_id or sku is required"))
			return
		}
		if !payload.Qty.IsPositive() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "qty must be positive"))
			return
		}

		state, err := session.AddItem(r.Context(), ref, payload.Qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSessionState(svc, w, r, session, state)
	}
}

// RegisterRemoveItem deletes one line from the active basket.
func RegisterRemoveItem(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}

		itemID := strings.TrimSpace(chi.URLParam(r, "itemId"))
		if itemID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item id is required"))
			return
		}

		writeSessionState(svc, w, r, session, session.RemoveItem(itemID))
	}
}

// RegisterRemoveLast drops the most recently added line.
func RegisterRemoveLast(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}
		writeSessionState(svc, w, r, session, session.RemoveLast())
	}
}

type selectItemRequest struct {
	ItemID string `json:"item_id"`
}

// RegisterSelectItem marks a line for the numeric editor, or clears the
// selection with an empty id.
func RegisterSelectItem(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}

		var payload selectItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeSessionState(svc, w, r, session, session.SelectItem(strings.TrimSpace(payload.ItemID)))
	}
}

// RegisterCreateBasket opens another basket, up to the configured maximum.
func RegisterCreateBasket(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}
		writeSessionState(svc, w, r, session, session.CreateBasket())
	}
}

type cycleBasketRequest struct {
	Direction string `json:"direction" validate:"required,oneof=next prev"`
}

// RegisterCycleBasket moves the active basket pointer circularly.
func RegisterCycleBasket(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}

		var payload cycleBasketRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		direction := 1
		if payload.Direction == "prev" {
			direction = -1
		}
		writeSessionState(svc, w, r, session, session.CycleBasket(direction))
	}
}

type basketIndexRequest struct {
	Index *int `json:"index" validate:"required,min=0"`
}

// RegisterSelectBasket switches the active basket by index.
func RegisterSelectBasket(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}

		var payload basketIndexRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeSessionState(svc, w, r, session, session.SelectBasket(*payload.Index))
	}
}

// RegisterResumeBasket activates a held basket and closes the overview.
func RegisterResumeBasket(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}

		var payload basketIndexRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeSessionState(svc, w, r, session, session.ResumeBasket(*payload.Index))
	}
}

// RegisterOverview opens or closes the held-basket overview panel.
func RegisterOverview(svc checkoutsvc.Service, logg *logger.Logger, open bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}
		writeSessionState(svc, w, r, session, session.SetOverview(open))
	}
}

type editorOpenRequest struct {
	ItemID string `json:"item_id"`
	Focus  string `json:"focus"`
}

// RegisterEditorOpen seeds the price/quantity/total editor from an item.
func RegisterEditorOpen(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}

		var payload editorOpenRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		focus := enums.FocusFieldPrice
		if payload.Focus != "" {
			parsed, err := enums.ParseFocusField(payload.Focus)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid focus field"))
				return
			}
			focus = parsed
		}

		writeSessionState(svc, w, r, session, session.OpenEditor(strings.TrimSpace(payload.ItemID), focus))
	}
}

type editorFieldRequest struct {
	Field string `json:"field" validate:"required"`
	Text  string `json:"text"`
}

// RegisterEditorField replaces a field's text wholesale (hardware keyboard
// or paste) and recomputes the linked fields.
func RegisterEditorField(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}

		var payload editorFieldRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		field, err := enums.ParseFocusField(payload.Field)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid focus field"))
			return
		}

		writeSessionState(svc, w, r, session, session.EditorSetField(field, payload.Text))
	}
}

type editorSelectionRequest struct {
	Field string `json:"field" validate:"required"`
	Start *int   `json:"start" validate:"required,min=0"`
	End   *int   `json:"end" validate:"required,min=0"`
}

// RegisterEditorSelection moves the caret or selection inside a field.
func RegisterEditorSelection(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}

		var payload editorSelectionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		field, err := enums.ParseFocusField(payload.Field)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid focus field"))
			return
		}

		sel := types.Selection{Start: *payload.Start, End: *payload.End}
		writeSessionState(svc, w, r, session, session.EditorSelection(field, sel))
	}
}

type editorFocusRequest struct {
	Field string `json:"field" validate:"required"`
}

// RegisterEditorFocus switches which field the keypad feeds.
func RegisterEditorFocus(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}

		var payload editorFocusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		field, err := enums.ParseFocusField(payload.Field)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid focus field"))
			return
		}

		writeSessionState(svc, w, r, session, session.EditorFocus(field))
	}
}

type editorKeypadRequest struct {
	Key string `json:"key" validate:"required"`
}

// RegisterEditorKeypad routes one virtual keypad press to the focused field.
func RegisterEditorKeypad(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}

		var payload editorKeypadRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeSessionState(svc, w, r, session, session.EditorKeypad(payload.Key))
	}
}

// RegisterEditorConfirm applies the edited price and quantity to the item.
func RegisterEditorConfirm(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}
		writeSessionState(svc, w, r, session, session.EditorConfirm())
	}
}

// RegisterEditorCancel closes the editor without touching the item.
func RegisterEditorCancel(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}
		writeSessionState(svc, w, r, session, session.EditorCancel())
	}
}

type finalizeRequest struct {
	ClientName    string `json:"client_name"`
	PaymentMethod string `json:"payment_method"`
}

type finalizeResponse struct {
	State checkoutsvc.SessionState  `json:"state"`
	Sale  *checkoutsvc.HistoryEntry `json:"sale,omitempty"`
}

// RegisterFinalize archives the active basket as a sale. An empty basket is
// a no-op that still returns the current state.
func RegisterFinalize(cfg config.CheckoutConfig, svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}

		var payload finalizeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		meta := checkoutsvc.FinalizeMeta{
			ClientName:  strings.TrimSpace(payload.ClientName),
			CashierName: cfg.DefaultCashier,
		}
		if meta.ClientName == "" {
			meta.ClientName = cfg.DefaultClient
		}
		if payload.PaymentMethod != "" {
			method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
				return
			}
			meta.PaymentMethod = method
		}

		state, entry := session.Finalize(r.Context(), meta)
		svc.SaveSnapshot(r.Context(), session)
		responses.WriteSuccess(w, finalizeResponse{State: state, Sale: entry})
	}
}

// RegisterCancel clears the active basket without producing a sale.
func RegisterCancel(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}
		writeSessionState(svc, w, r, session, session.Cancel())
	}
}

type keyRequest struct {
	Key string `json:"key" validate:"required"`
}

type keyResponse struct {
	State   checkoutsvc.SessionState `json:"state"`
	Command string                   `json:"command,omitempty"`
	Handled bool                     `json:"handled"`
}

// RegisterKey runs one hardware keyboard press through the command
// dispatcher, honoring the Escape precedence chain.
func RegisterKey(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}

		var payload keyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, cmd, handled := session.HandleKey(r.Context(), payload.Key)
		svc.SaveSnapshot(r.Context(), session)
		responses.WriteSuccess(w, keyResponse{State: state, Command: cmd.String(), Handled: handled})
	}
}

type recallRequest struct {
	SaleID string `json:"sale_id" validate:"required"`
}

// RegisterRecall loads an archived sale into the active basket for editing.
func RegisterRecall(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}

		var payload recallRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, found := session.Recall(strings.TrimSpace(payload.SaleID))
		if !found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found in register history"))
			return
		}
		writeSessionState(svc, w, r, session, state)
	}
}

// RegisterRecallDiscard drops the recall preview marker so the next
// finalize archives a fresh sale instead of superseding.
func RegisterRecallDiscard(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := registerSession(svc, logg, w, r)
		if !ok {
			return
		}
		writeSessionState(svc, w, r, session, session.DiscardRecall())
	}
}
