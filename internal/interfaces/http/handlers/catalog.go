// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/domain/catalog"
)

// CatalogHandler serves the menu
type CatalogHandler struct {
	source catalog.Source
	log    logrus.FieldLogger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(source catalog.Source, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{
		source: source,
		log:    log,
	}
}

// GetMenu handles GET /catalog
func (h *CatalogHandler) GetMenu(c *gin.Context) {
	categories, err := h.source.Categories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "Failed to retrieve menu")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Menu retrieved successfully",
		"data":    categories,
	})
}

// GetProduct handles GET /catalog/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.source.Product(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err, "Product not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    product,
	})
}
