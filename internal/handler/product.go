package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// ListProducts returns the whole catalogue in catalogue order.
func (h *Handler) ListProducts(w http.ResponseWriter, _ *http.Request) {
	var e jx.Encoder
	e.ArrStart()
	for _, p := range h.pricing.Catalogue.All() {
		encodeProduct(&e, p)
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

// GetProduct returns a single product by code.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.pricing.Catalogue.Find(r.PathValue("code"))
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	var e jx.Encoder
	encodeProduct(&e, p)
	writeJSON(w, http.StatusOK, &e)
}
