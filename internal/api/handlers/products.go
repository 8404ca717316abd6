package handlers

import (
	"context"
	"net/http"

	"github.com/fianka/shop-api/internal/models"
)

type ProductStore interface {
	ListByCategory(ctx context.Context, category string) ([]models.Product, error)
	Search(ctx context.Context, query string) ([]models.Product, error)
}

type ProductHandler struct {
	products ProductStore
}

func NewProductHandler(products ProductStore) *ProductHandler {
	return &ProductHandler{products: products}
}

// List handles GET /products?category=homme|femme|unisexe|fianka. Without
// a category the whole catalog is returned.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	products, err := h.products.ListByCategory(r.Context(), category)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

// Search handles GET /products/search?q=. A missing or blank query is not
// an error; it returns an empty result set.
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	products, err := h.products.Search(r.Context(), query)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
		"query":    query,
	})
}
