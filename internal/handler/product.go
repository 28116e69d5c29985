package handler

import (
	"net/http"
	"strconv"

	"minangpos-backend/internal/domain"
	"minangpos-backend/internal/ports"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	Catalog  ports.ProductCatalog
	Currency Currency
}

func (h ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.listProducts)
}

func (h ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.ListProducts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponses(items))
}

func (h ProductHandler) toProductResponses(items []domain.Product) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, p := range items {
		out = append(out, map[string]any{
			"id":            strconv.FormatInt(p.ID, 10),
			"name":          p.Name,
			"nameLocalized": p.NameLocalized,
			"category":      p.Category,
			"price":         h.Currency.format(p.Price),
			"currency":      h.Currency.Code,
		})
	}
	return out
}
