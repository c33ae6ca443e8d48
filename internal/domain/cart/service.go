// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/infrastructure/storage"
)

// Cart is the in-memory list of line items of one visitor. Every mutation
// is written through to storage before it becomes visible.
type Cart struct {
	kv     storage.KV
	limits Limits
	log    logrus.FieldLogger
	items  []LineItem
}

// New creates an empty cart over the visitor's storage
func New(kv storage.KV, limits Limits, log logrus.FieldLogger) *Cart {
	return &Cart{
		kv:     kv,
		limits: limits.withDefaults(),
		log:    log,
		items:  []LineItem{},
	}
}

// Load replaces the in-memory items with the persisted ones. Anything that
// cannot be read back as a valid cart leaves the cart empty.
func (c *Cart) Load(ctx context.Context) {
	c.items = []LineItem{}

	var stored []LineItem
	err := storage.GetJSON(ctx, c.kv, storage.KeyCart, &stored)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return
	case err != nil:
		c.log.WithError(err).Warn("Discarding unreadable cart")
		return
	}

	if len(stored) > c.limits.MaxItems {
		c.log.WithField("items", len(stored)).Warn("Discarding persisted cart above item limit")
		return
	}
	for _, it := range stored {
		if err := it.Validate(); err != nil {
			c.log.WithError(err).Warn("Discarding persisted cart with invalid item")
			return
		}
		if err := it.CheckQuantity(c.limits.MaxQuantity); err != nil {
			c.log.WithError(err).Warn("Discarding persisted cart with invalid quantity")
			return
		}
	}
	c.items = stored
}

// Items returns a copy of the line items in insertion order
func (c *Cart) Items() []LineItem {
	return CloneItems(c.items)
}

// Len returns the number of distinct entries
func (c *Cart) Len() int {
	return len(c.items)
}

// Add puts quantity units of item in the cart. Simple items with the same
// identity are merged; compound items always become a new entry. A rejected
// add leaves the cart unchanged.
func (c *Cart) Add(ctx context.Context, item LineItem, quantity int) error {
	entry := c.log.WithFields(logrus.Fields{
		"item_id":  item.ID,
		"quantity": quantity,
	})

	if item.IsCompound() {
		// the unit count of a compound item is fixed; its price is the total
		item.Quantity = 1
	}
	if err := item.Validate(); err != nil {
		entry.WithError(err).Warn("Rejected invalid cart item")
		return err
	}
	if quantity <= 0 || quantity > c.limits.MaxQuantity {
		entry.Warn("Rejected cart quantity")
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}

	next := CloneItems(c.items)

	if item.IsCompound() {
		if len(next) >= c.limits.MaxItems {
			entry.Warn("Cart is full")
			return fmt.Errorf("%w: at most %d items", ErrCartLimitExceeded, c.limits.MaxItems)
		}
		next = append(next, item.Clone())
		return c.commit(ctx, next)
	}

	for i := range next {
		if !next[i].sameIdentity(item) {
			continue
		}
		sum := next[i].Quantity + quantity
		if sum > c.limits.MaxQuantity {
			entry.WithField("current", next[i].Quantity).Warn("Quantity limit reached for item")
			return fmt.Errorf("%w: at most %d units of %s", ErrCartLimitExceeded, c.limits.MaxQuantity, item.ID)
		}
		next[i].Quantity = sum
		return c.commit(ctx, next)
	}

	if len(next) >= c.limits.MaxItems {
		entry.Warn("Cart is full")
		return fmt.Errorf("%w: at most %d items", ErrCartLimitExceeded, c.limits.MaxItems)
	}
	added := item.Clone()
	added.Quantity = quantity
	next = append(next, added)
	return c.commit(ctx, next)
}

// Remove drops every entry with the given id
func (c *Cart) Remove(ctx context.Context, id string) error {
	next := make([]LineItem, 0, len(c.items))
	for _, it := range c.items {
		if it.ID != id {
			next = append(next, it.Clone())
		}
	}
	if len(next) == len(c.items) {
		return nil
	}
	return c.commit(ctx, next)
}

// UpdateQuantity overwrites the quantity of an entry, clamped to [1, max].
// A quantity of zero or less removes it.
func (c *Cart) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity <= 0 {
		return c.Remove(ctx, id)
	}
	if quantity > c.limits.MaxQuantity {
		quantity = c.limits.MaxQuantity
	}

	next := CloneItems(c.items)
	found := false
	for i := range next {
		if next[i].ID != id {
			continue
		}
		found = true
		if next[i].IsCompound() {
			continue
		}
		next[i].Quantity = quantity
	}
	if !found {
		return nil
	}
	return c.commit(ctx, next)
}

// Clear empties the cart
func (c *Cart) Clear(ctx context.Context) error {
	return c.commit(ctx, []LineItem{})
}

// Total returns the sum of price × quantity over all entries
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// TotalItemCount returns the sum of quantities; a compound item counts as one
func (c *Cart) TotalItemCount() int {
	count := 0
	for _, it := range c.items {
		count += it.Quantity
	}
	return count
}

// Totals returns the cart summary
func (c *Cart) Totals() Totals {
	return Totals{
		ItemCount:     len(c.items),
		TotalQuantity: c.TotalItemCount(),
		TotalAmount:   c.Total(),
	}
}

func (c *Cart) commit(ctx context.Context, next []LineItem) error {
	if err := storage.SetJSON(ctx, c.kv, storage.KeyCart, next); err != nil {
		c.log.WithError(err).Error("Failed to save cart")
		return fmt.Errorf("failed to save cart: %w", err)
	}
	c.items = next
	return nil
}
