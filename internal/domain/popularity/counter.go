// internal/domain/popularity/counter.go
package popularity

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/domain/cart"
	"github.com/your-org/mesa-pedidos/internal/domain/catalog"
)

// Broadcaster forwards change signals to other processes
type Broadcaster interface {
	Publish(ctx context.Context) error
}

// Counter tracks how many units of each product were ordered and signals
// observers whenever the index changes.
type Counter struct {
	store Store
	log   logrus.FieldLogger

	mu        sync.Mutex
	observers map[int]func()
	nextID    int
	broadcast Broadcaster
}

// NewCounter creates a counter over store
func NewCounter(store Store, log logrus.FieldLogger) *Counter {
	return &Counter{
		store:     store,
		log:       log,
		observers: make(map[int]func()),
	}
}

// SetBroadcaster makes every local change also reach other processes
func (c *Counter) SetBroadcaster(b Broadcaster) {
	c.mu.Lock()
	c.broadcast = b
	c.mu.Unlock()
}

// CountKey is the index key an item's units are added to. Simple items count
// for their product. A compound item counts under its own id, which is unique
// per confirmation, so grouped flavors never add up to a product.
func CountKey(it cart.LineItem) string {
	if !it.IsCompound() && it.ProductID != "" {
		return it.ProductID
	}
	return it.ID
}

// RecordCounts adds the quantity of every item to the index and signals a change
func (c *Counter) RecordCounts(ctx context.Context, items []cart.LineItem) error {
	deltas := make(map[string]int64, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		deltas[CountKey(it)] += int64(it.Quantity)
	}
	if len(deltas) == 0 {
		return nil
	}
	if err := c.store.Add(ctx, deltas); err != nil {
		return err
	}
	c.changed(ctx)
	return nil
}

// Increment adds qty units to one product
func (c *Counter) Increment(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return nil
	}
	if err := c.store.Add(ctx, map[string]int64{productID: int64(qty)}); err != nil {
		return err
	}
	c.changed(ctx)
	return nil
}

// Counts returns a copy of the index
func (c *Counter) Counts(ctx context.Context) (map[string]int64, error) {
	return c.store.All(ctx)
}

// OnChange registers fn to run after every change. The returned function
// removes it.
func (c *Counter) OnChange(fn func()) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// Notify runs the observers without touching the index. It is how signals
// received from other processes reach this one.
func (c *Counter) Notify() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (c *Counter) changed(ctx context.Context) {
	c.Notify()

	c.mu.Lock()
	b := c.broadcast
	c.mu.Unlock()
	if b == nil {
		return
	}
	if err := b.Publish(ctx); err != nil {
		c.log.WithError(err).Warn("Failed to broadcast order count change")
	}
}

// TopN ranks products by count, highest first. Products never ordered are
// left out; ties keep the order of products.
func (c *Counter) TopN(ctx context.Context, products []catalog.Product, n int) ([]catalog.Product, error) {
	if n <= 0 {
		return []catalog.Product{}, nil
	}
	counts, err := c.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}
	return rank(products, counts, n), nil
}

func rank(products []catalog.Product, counts map[string]int64, n int) []catalog.Product {
	ranked := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if counts[p.ID] > 0 {
			ranked = append(ranked, p)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i].ID] > counts[ranked[j].ID]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
