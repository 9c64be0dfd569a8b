package web

import (
	"net/http"
)

// interpretPurchase handles POST /api/ai/interpret-purchase. Body: { text }
// The response is a draft for confirmation; nothing is written to the ledger.
func (h *Handler) interpretPurchase(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.InterpretPurchase(r.Context(), body.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Draft)
}
