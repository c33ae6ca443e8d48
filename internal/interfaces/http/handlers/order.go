// internal/interfaces/http/handlers/order.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/domain/order"
	"github.com/your-org/mesa-pedidos/internal/domain/visit"
	"github.com/your-org/mesa-pedidos/internal/interfaces/http/middleware"
)

// Receipts renders past orders
type Receipts interface {
	GenerateReceipt(o *order.Order) (*bytes.Buffer, error)
	ReceiptHTML(o *order.Order) (string, error)
}

// OrderHandler handles checkout and the order history
type OrderHandler struct {
	visits   *visit.Factory
	sink     order.Sink
	receipts Receipts
	log      logrus.FieldLogger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(visits *visit.Factory, sink order.Sink, receipts Receipts, log logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{
		visits:   visits,
		sink:     sink,
		receipts: receipts,
		log:      log,
	}
}

// Checkout handles POST /checkout. The order is only recorded once the
// message has been handed to the sink.
func (h *OrderHandler) Checkout(c *gin.Context) {
	v := h.visits.Open(c.Request.Context(), middleware.GetSessionID(c))

	submission, err := v.Orders.Submit(c.Request.Context(), h.sink)
	if err != nil {
		respondError(c, h.log, err, "Failed to place order")
		return
	}

	h.log.WithFields(logrus.Fields{
		"order_id":   submission.Order.ID,
		"table":      submission.Order.Table,
		"session_id": v.SessionID,
		"total":      submission.Order.Total.StringFixed(2),
	}).Info("Order placed")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    submission,
	})
}

// GetOrders handles GET /orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	v := h.visits.Open(c.Request.Context(), middleware.GetSessionID(c))

	orders, err := v.Orders.History(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "Failed to retrieve orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// GetReceipt handles GET /orders/:id/receipt; ?format=html returns the
// page the PDF is printed from
func (h *OrderHandler) GetReceipt(c *gin.Context) {
	v := h.visits.Open(c.Request.Context(), middleware.GetSessionID(c))

	o, err := v.Orders.Find(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err, "Order not found")
		return
	}

	if c.Query("format") == "html" {
		page, err := h.receipts.ReceiptHTML(o)
		if err != nil {
			respondError(c, h.log, err, "Failed to render receipt")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
		return
	}

	pdfBuffer, err := h.receipts.GenerateReceipt(o)
	if err != nil {
		respondError(c, h.log, err, "Failed to generate receipt")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=pedido-%s.pdf", o.ID))
	c.Header("Content-Length", strconv.Itoa(pdfBuffer.Len()))
	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}
