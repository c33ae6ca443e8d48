// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/domain/cart"
	"github.com/your-org/mesa-pedidos/internal/domain/catalog"
	"github.com/your-org/mesa-pedidos/internal/domain/order"
	"github.com/your-org/mesa-pedidos/internal/domain/table"
	"github.com/your-org/mesa-pedidos/internal/domain/variant"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, table.ErrInvalidTableNumber),
		errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrNoTableAssigned):
		return http.StatusConflict
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, cart.ErrInvalidItem),
		errors.Is(err, cart.ErrCartLimitExceeded),
		errors.Is(err, variant.ErrNoVariants),
		errors.Is(err, variant.ErrNeedsSelection),
		errors.Is(err, variant.ErrUnknownVariant),
		errors.Is(err, variant.ErrWrongMode),
		errors.Is(err, variant.ErrInvalidSelection):
		return http.StatusUnprocessableEntity
	case errors.Is(err, order.ErrMessagingSinkBlocked):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Unexpected errors are
// logged and their details hidden.
func respondError(c *gin.Context, log logrus.FieldLogger, err error, message string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error(message)
		c.JSON(status, gin.H{
			"error": message,
		})
		return
	}

	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}
