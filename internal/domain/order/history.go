// internal/domain/order/history.go
package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/infrastructure/storage"
)

// DefaultHistoryCap is how many orders the history keeps
const DefaultHistoryCap = 50

// History is the capped list of past orders of one visitor, oldest first
type History struct {
	kv  storage.KV
	cap int
	log logrus.FieldLogger
}

// NewHistory creates a history over the visitor's storage
func NewHistory(kv storage.KV, cap int, log logrus.FieldLogger) *History {
	if cap <= 0 {
		cap = DefaultHistoryCap
	}
	return &History{kv: kv, cap: cap, log: log}
}

// List returns the stored orders. Unreadable history is treated as empty.
func (h *History) List(ctx context.Context) ([]Order, error) {
	var orders []Order
	err := storage.GetJSON(ctx, h.kv, storage.KeyHistory, &orders)
	switch {
	case err == nil:
		if orders == nil {
			orders = []Order{}
		}
		return orders, nil
	case errors.Is(err, storage.ErrNotFound):
		return []Order{}, nil
	case storage.IsParseError(err):
		h.log.WithError(err).Warn("Discarding unreadable order history")
		return []Order{}, nil
	default:
		return nil, fmt.Errorf("failed to read order history: %w", err)
	}
}

// Find returns one order of the history
func (h *History) Find(ctx context.Context, id string) (*Order, error) {
	orders, err := h.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
}

// Append stores o, dropping the oldest orders above the cap
func (h *History) Append(ctx context.Context, o Order) error {
	orders, err := h.List(ctx)
	if err != nil {
		return err
	}
	orders = append(orders, o.Clone())
	if len(orders) > h.cap {
		orders = orders[len(orders)-h.cap:]
	}
	if err := storage.SetJSON(ctx, h.kv, storage.KeyHistory, orders); err != nil {
		return fmt.Errorf("failed to save order history: %w", err)
	}
	return nil
}
