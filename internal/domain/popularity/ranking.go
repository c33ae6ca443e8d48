// internal/domain/popularity/ranking.go
package popularity

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/domain/catalog"
)

const refreshTimeout = 5 * time.Second

// Ranking is the cached "most ordered" view. It is recomputed on every
// change signal and on its first read.
type Ranking struct {
	counter *Counter
	source  catalog.Source
	size    int
	log     logrus.FieldLogger

	mu     sync.RWMutex
	top    []catalog.Product
	loaded bool

	unsubscribe func()
}

// NewRanking creates a view holding the size most ordered products
func NewRanking(counter *Counter, source catalog.Source, size int, log logrus.FieldLogger) *Ranking {
	r := &Ranking{
		counter: counter,
		source:  source,
		size:    size,
		log:     log,
	}
	r.unsubscribe = counter.OnChange(r.onChange)
	return r
}

// Refresh recomputes the view from the counter and the live catalog
func (r *Ranking) Refresh(ctx context.Context) error {
	r.mu.RLock()
	size := r.size
	r.mu.RUnlock()

	products, err := r.source.Products(ctx)
	if err != nil {
		return err
	}
	top, err := r.counter.TopN(ctx, products, size)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if size >= r.size {
		r.top = top
		r.loaded = true
	}
	r.mu.Unlock()
	return nil
}

// Top returns up to n products of the view; n <= 0 means the whole view.
// Asking for more than the view holds widens it for later reads.
func (r *Ranking) Top(ctx context.Context, n int) ([]catalog.Product, error) {
	r.mu.Lock()
	if n > r.size {
		r.size = n
		r.loaded = false
	}
	loaded := r.loaded
	r.mu.Unlock()

	if !loaded {
		if err := r.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if n <= 0 || n > len(r.top) {
		n = len(r.top)
	}
	out := make([]catalog.Product, n)
	copy(out, r.top[:n])
	return out, nil
}

// Close stops listening for changes
func (r *Ranking) Close() {
	r.unsubscribe()
}

func (r *Ranking) onChange() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if err := r.Refresh(ctx); err != nil {
		r.log.WithError(err).Warn("Failed to refresh popular products")
	}
}
