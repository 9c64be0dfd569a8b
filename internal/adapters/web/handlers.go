package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"koperasi-ledger/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes. jwtSecret
// empty means the API runs without authentication.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(jwtSecret))
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		// Purchases
		r.Get("/api/purchases", h.listPurchases)
		r.Post("/api/purchases", h.createPurchase)
		r.Get("/api/purchases/{id}", h.getPurchase)
		r.Delete("/api/purchases/{id}", h.deletePurchase)

		// Debt payments
		r.Get("/api/purchases/{id}/payments", h.listPayments)
		r.Post("/api/purchases/{id}/payments", h.recordPayment)
		r.Get("/api/debts/outstanding", h.listOutstanding)

		// Suppliers
		r.Get("/api/suppliers", h.listSuppliers)
		r.Post("/api/suppliers", h.createSupplier)
		r.Delete("/api/suppliers/{id}", h.deactivateSupplier)

		// Stock catalog
		r.Get("/api/stock", h.listStockItems)
		r.Post("/api/stock", h.createStockItem)

		// AI draft entry
		r.Post("/api/ai/interpret-purchase", h.interpretPurchase)
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// idParam extracts the {id} URL parameter as an int, writing a 400 on failure.
func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		writeError(w, r, "invalid id "+strconv.Quote(raw), "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
