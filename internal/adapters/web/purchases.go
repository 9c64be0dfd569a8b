package web

import (
	"net/http"

	"koperasi-ledger/internal/app"

	"github.com/shopspring/decimal"
)

// createPurchase handles POST /api/purchases.
// Body: { supplier_name?, invoice_number?, date, shipping_cost?, received?, credit?, due_date?, lines: [{item_id, quantity, unit_cost}] }
func (h *Handler) createPurchase(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SupplierName  string          `json:"supplier_name"`
		InvoiceNumber string          `json:"invoice_number"`
		Date          string          `json:"date"`
		ShippingCost  decimal.Decimal `json:"shipping_cost"`
		Received      bool            `json:"received"`
		Credit        bool            `json:"credit"`
		DueDate       string          `json:"due_date"`
		Lines         []struct {
			ItemID   int             `json:"item_id"`
			Quantity decimal.Decimal `json:"quantity"`
			UnitCost decimal.Decimal `json:"unit_cost"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Date == "" {
		writeError(w, r, "date is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	req := app.CreatePurchaseRequest{
		SupplierName:  body.SupplierName,
		InvoiceNumber: body.InvoiceNumber,
		Date:          body.Date,
		ShippingCost:  body.ShippingCost,
		Received:      body.Received,
		Credit:        body.Credit,
		DueDate:       body.DueDate,
	}
	for _, line := range body.Lines {
		req.Lines = append(req.Lines, app.PurchaseLineRequest{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			UnitCost: line.UnitCost,
		})
	}

	result, err := h.svc.CreatePurchase(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, result.Purchase, http.StatusCreated)
}

// getPurchase handles GET /api/purchases/{id} — header, lines, and payment history.
func (h *Handler) getPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetPurchase(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	type response struct {
		Purchase any `json:"purchase"`
		Payments any `json:"payments"`
	}
	writeJSON(w, response{Purchase: result.Purchase, Payments: result.Payments})
}

// listPurchases handles GET /api/purchases?payment_status=&from=&to=.
func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.svc.ListPurchases(r.Context(), app.ListPurchasesRequest{
		PaymentStatus: q.Get("payment_status"),
		From:          q.Get("from"),
		To:            q.Get("to"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Purchases)
}

// deletePurchase handles DELETE /api/purchases/{id}.
func (h *Handler) deletePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeletePurchase(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
