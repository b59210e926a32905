package handlers

import (
	"net/http"

	"github.com/eldtechnologies/plgdemo/internal/models"
)

// ListProducts handles GET /api/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, models.Catalog)
}
