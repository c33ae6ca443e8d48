// internal/interfaces/http/handlers/table.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/domain/table"
	"github.com/your-org/mesa-pedidos/internal/domain/visit"
	"github.com/your-org/mesa-pedidos/internal/interfaces/http/middleware"
)

// TableHandler handles the visitor's table binding
type TableHandler struct {
	visits   *visit.Factory
	maxTable int
	log      logrus.FieldLogger
}

// NewTableHandler creates a new table handler
func NewTableHandler(visits *visit.Factory, maxTable int, log logrus.FieldLogger) *TableHandler {
	return &TableHandler{
		visits:   visits,
		maxTable: maxTable,
		log:      log,
	}
}

// SetTableRequest represents a table change
type SetTableRequest struct {
	Number int `json:"numero" binding:"required"`
}

// Acquire handles GET /mesa/:id, the link printed on the table's QR code
func (h *TableHandler) Acquire(c *gin.Context) {
	n, err := table.ParseNumber(c.Param("id"), h.maxTable)
	if err != nil {
		h.log.WithField("raw", c.Param("id")).Warn("Rejected table route")
		respondError(c, h.log, err, "Invalid table number")
		return
	}

	v := h.visits.Open(c.Request.Context(), middleware.GetSessionID(c))
	if _, err := v.Table.SetTable(c.Request.Context(), n); err != nil {
		respondError(c, h.log, err, "Failed to set table")
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// GetTable handles GET /table
func (h *TableHandler) GetTable(c *gin.Context) {
	v := h.visits.Open(c.Request.Context(), middleware.GetSessionID(c))

	c.JSON(http.StatusOK, gin.H{
		"message": "Table retrieved successfully",
		"data":    v.Table.Current(),
	})
}

// SetTable handles PUT /table
func (h *TableHandler) SetTable(c *gin.Context) {
	var req SetTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	v := h.visits.Open(c.Request.Context(), middleware.GetSessionID(c))
	sess, err := v.Table.SetTable(c.Request.Context(), req.Number)
	if err != nil {
		respondError(c, h.log, err, "Failed to set table")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Table set successfully",
		"data":    sess,
	})
}

// ClearTable handles DELETE /table
func (h *TableHandler) ClearTable(c *gin.Context) {
	v := h.visits.Open(c.Request.Context(), middleware.GetSessionID(c))
	if err := v.Table.ClearTable(c.Request.Context()); err != nil {
		respondError(c, h.log, err, "Failed to clear table")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Table cleared successfully",
	})
}
