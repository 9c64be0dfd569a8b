package web

import (
	"net/http"

	"koperasi-ledger/internal/app"

	"github.com/shopspring/decimal"
)

// recordPayment handles POST /api/purchases/{id}/payments.
// Body: { amount, method, note?, paid_at? }
func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var body struct {
		Amount decimal.Decimal `json:"amount"`
		Method string          `json:"method"`
		Note   string          `json:"note"`
		PaidAt string          `json:"paid_at"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.RecordPayment(r.Context(), app.RecordPaymentRequest{
		PurchaseID: id,
		Amount:     body.Amount,
		Method:     body.Method,
		Note:       body.Note,
		PaidAt:     body.PaidAt,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	type response struct {
		Purchase any `json:"purchase"`
		Payment  any `json:"payment"`
	}
	writeJSONStatus(w, response{Purchase: result.Purchase, Payment: result.Payment}, http.StatusCreated)
}

// listPayments handles GET /api/purchases/{id}/payments.
func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ListPayments(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Payments)
}

// listOutstanding handles GET /api/debts/outstanding?as_of= — open debts
// ordered by due date, plus aggregate stats.
func (h *Handler) listOutstanding(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListOutstanding(r.Context(), r.URL.Query().Get("as_of"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	type response struct {
		Debts any `json:"debts"`
		Stats any `json:"stats"`
	}
	writeJSON(w, response{Debts: result.Rows, Stats: result.Stats})
}
