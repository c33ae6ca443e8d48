// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/domain/cart"
	"github.com/your-org/mesa-pedidos/internal/domain/catalog"
	"github.com/your-org/mesa-pedidos/internal/domain/variant"
	"github.com/your-org/mesa-pedidos/internal/domain/visit"
	"github.com/your-org/mesa-pedidos/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	visits  *visit.Factory
	catalog catalog.Source
	log     logrus.FieldLogger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(visits *visit.Factory, source catalog.Source, log logrus.FieldLogger) *CartHandler {
	return &CartHandler{
		visits:  visits,
		catalog: source,
		log:     log,
	}
}

// AddItemRequest adds a product without variants
type AddItemRequest struct {
	ProductID string `json:"produto_id" binding:"required"`
	Quantity  int    `json:"quantidade" binding:"omitempty,min=1"`
	Note      string `json:"observacao" binding:"max=280"`
}

// UpdateItemRequest sets the quantity of an entry; zero or less removes it
type UpdateItemRequest struct {
	Quantity *int `json:"quantidade" binding:"required"`
}

// CartResponse is the cart as the menu renders it
type CartResponse struct {
	Items  []cart.LineItem `json:"itens"`
	Totals cart.Totals     `json:"totais"`
}

func cartResponse(c *cart.Cart) CartResponse {
	return CartResponse{
		Items:  c.Items(),
		Totals: c.Totals(),
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	v := h.visits.Open(c.Request.Context(), middleware.GetSessionID(c))

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    cartResponse(v.Cart),
	})
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.catalog.Product(c.Request.Context(), req.ProductID)
	if err != nil {
		respondError(c, h.log, err, "Product not found")
		return
	}
	item, err := variant.Plain(*product, req.Quantity, req.Note)
	if err != nil {
		respondError(c, h.log, err, "Product requires a flavor selection")
		return
	}

	v := h.visits.Open(c.Request.Context(), middleware.GetSessionID(c))
	if err := v.Cart.Add(c.Request.Context(), item, item.Quantity); err != nil {
		respondError(c, h.log, err, "Failed to add item to cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    cartResponse(v.Cart),
	})
}

// AddSelection handles POST /cart/selections, the confirm of the flavor modal
func (h *CartHandler) AddSelection(c *gin.Context) {
	var req variant.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.catalog.Product(c.Request.Context(), req.ProductID)
	if err != nil {
		respondError(c, h.log, err, "Product not found")
		return
	}
	items, err := variant.Resolve(*product, req)
	if err != nil {
		h.log.WithError(err).WithField("product_id", req.ProductID).Warn("Rejected flavor selection")
		respondError(c, h.log, err, "Invalid flavor selection")
		return
	}

	v := h.visits.Open(c.Request.Context(), middleware.GetSessionID(c))
	for _, it := range items {
		if err := v.Cart.Add(c.Request.Context(), it, it.Quantity); err != nil {
			respondError(c, h.log, err, "Failed to add item to cart")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Selection added to cart successfully",
		"data":    cartResponse(v.Cart),
	})
}

// UpdateItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	v := h.visits.Open(c.Request.Context(), middleware.GetSessionID(c))
	if err := v.Cart.UpdateQuantity(c.Request.Context(), c.Param("id"), *req.Quantity); err != nil {
		respondError(c, h.log, err, "Failed to update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    cartResponse(v.Cart),
	})
}

// RemoveItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	v := h.visits.Open(c.Request.Context(), middleware.GetSessionID(c))
	if err := v.Cart.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err, "Failed to remove cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    cartResponse(v.Cart),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	v := h.visits.Open(c.Request.Context(), middleware.GetSessionID(c))
	if err := v.Cart.Clear(c.Request.Context()); err != nil {
		respondError(c, h.log, err, "Failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
		"data":    cartResponse(v.Cart),
	})
}
