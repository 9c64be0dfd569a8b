package web

import (
	"net/http"

	"koperasi-ledger/internal/app"

	"github.com/shopspring/decimal"
)

// listSuppliers handles GET /api/suppliers.
func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListSuppliers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Suppliers)
}

// createSupplier handles POST /api/suppliers. Body: { name }
func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Name == "" {
		writeError(w, r, "name is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.CreateSupplier(r.Context(), body.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, result.Suppliers[0], http.StatusCreated)
}

// deactivateSupplier handles DELETE /api/suppliers/{id}. The supplier row is
// kept for historical purchases; only is_active flips.
func (h *Handler) deactivateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeactivateSupplier(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listStockItems handles GET /api/stock?q=.
func (h *Handler) listStockItems(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListStockItems(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Items)
}

// createStockItem handles POST /api/stock.
// Body: { code, name, unit, retail_price?, wholesale_price? }
func (h *Handler) createStockItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code           string          `json:"code"`
		Name           string          `json:"name"`
		Unit           string          `json:"unit"`
		RetailPrice    decimal.Decimal `json:"retail_price"`
		WholesalePrice decimal.Decimal `json:"wholesale_price"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.CreateStockItem(r.Context(), app.CreateStockItemRequest{
		Code:           body.Code,
		Name:           body.Name,
		Unit:           body.Unit,
		RetailPrice:    body.RetailPrice,
		WholesalePrice: body.WholesalePrice,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, result.Items[0], http.StatusCreated)
}
