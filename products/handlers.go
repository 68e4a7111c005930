package products

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/ternarybob/arbor"

	"blockpress/blocks"
	"blockpress/storage"
	"blockpress/utils"
)

type Handler struct {
	catalog Catalog
	logger  arbor.ILogger
}

func NewHandler(catalog Catalog, logger arbor.ILogger) *Handler {
	return &Handler{catalog: catalog, logger: logger}
}

// GetProducts handles GET /api/products?skus=a,b
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	skus := blocks.SplitSKUs(r.URL.Query().Get("skus"))
	if len(skus) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "skus query parameter is required")
		return
	}

	found, err := h.catalog.BySKUs(r.Context(), skus)
	if err != nil {
		h.logger.Error().Err(err).Strs("skus", skus).Msg("Product lookup failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, found)
}

// GetProduct handles GET /api/products/:sku
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, err := h.catalog.BySKU(r.Context(), ps.ByName("sku"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error().Err(err).Str("sku", ps.ByName("sku")).Msg("Product lookup failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}
