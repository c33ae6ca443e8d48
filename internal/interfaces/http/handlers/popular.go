// internal/interfaces/http/handlers/popular.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/domain/popularity"
)

// PopularHandler serves the "most ordered" view
type PopularHandler struct {
	ranking     *popularity.Ranking
	defaultSize int
	log         logrus.FieldLogger
}

// NewPopularHandler creates a new popular handler
func NewPopularHandler(ranking *popularity.Ranking, defaultSize int, log logrus.FieldLogger) *PopularHandler {
	return &PopularHandler{
		ranking:     ranking,
		defaultSize: defaultSize,
		log:         log,
	}
}

// GetPopular handles GET /popular?n=
func (h *PopularHandler) GetPopular(c *gin.Context) {
	n := h.defaultSize
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "n must be a positive integer",
			})
			return
		}
		n = parsed
	}

	products, err := h.ranking.Top(c.Request.Context(), n)
	if err != nil {
		respondError(c, h.log, err, "Failed to retrieve popular products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Popular products retrieved successfully",
		"data":    products,
	})
}
