// HTTP handlers for the drink catalog endpoints.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rafaelgorayb/barduino/internal/domain/catalog"
)

// CatalogHandler serves catalog reads from the in-memory store.
type CatalogHandler struct {
	store *catalog.Store
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(store *catalog.Store) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// DrinkResponse is the response body for one drink. Embeddings are internal
// and never leave the server; Embedded only reports whether the drink is
// rankable.
type DrinkResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	VolumeML    int    `json:"volumeMl,omitempty"`
	HasAlcohol  bool   `json:"hasAlcohol"`
	Embedded    bool   `json:"embedded"`
}

// ListDrinksResponse is the response body for the catalog listing.
type ListDrinksResponse struct {
	Data       []DrinkResponse `json:"data"`
	Categories []string        `json:"categories"`
	Total      int             `json:"total"`
}

// ListDrinks handles GET /api/v1/drinks.
func (h *CatalogHandler) ListDrinks(w http.ResponseWriter, r *http.Request) {
	drinks := h.store.Drinks()
	data := make([]DrinkResponse, len(drinks))
	for i, d := range drinks {
		data[i] = drinkToResponse(d)
	}

	writeJSON(w, http.StatusOK, ListDrinksResponse{
		Data:       data,
		Categories: h.store.Categories(),
		Total:      len(data),
	})
}

// GetDrink handles GET /api/v1/drinks/{id}.
func (h *CatalogHandler) GetDrink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	drink, ok := h.store.ByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "drink not found")
		return
	}
	writeJSON(w, http.StatusOK, drinkToResponse(drink))
}

func drinkToResponse(d catalog.Drink) DrinkResponse {
	return DrinkResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		VolumeML:    d.VolumeML,
		HasAlcohol:  d.HasAlcohol,
		Embedded:    d.Embedded(),
	}
}
