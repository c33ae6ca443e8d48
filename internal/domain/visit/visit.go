// internal/domain/visit/visit.go
package visit

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/config"
	"github.com/your-org/mesa-pedidos/internal/domain/cart"
	"github.com/your-org/mesa-pedidos/internal/domain/order"
	"github.com/your-org/mesa-pedidos/internal/domain/table"
	"github.com/your-org/mesa-pedidos/internal/infrastructure/storage"
)

// Factory opens the state of one visitor session: its table, cart and
// orders, all kept under the session's own keys.
type Factory struct {
	kv      storage.KV
	prefix  string
	cfg     config.RestaurantConfig
	loc     *time.Location
	counts  order.Recorder
	log     logrus.FieldLogger
	nowFunc func() time.Time
}

// NewFactory creates a factory over kv. counts receives the items of every
// completed order.
func NewFactory(kv storage.KV, cfg *config.Config, counts order.Recorder, log logrus.FieldLogger) *Factory {
	return &Factory{
		kv:      kv,
		prefix:  cfg.Redis.KeyPrefix,
		cfg:     cfg.Restaurant,
		loc:     cfg.Location(),
		counts:  counts,
		log:     log,
		nowFunc: time.Now,
	}
}

// Visit is the loaded state of one session
type Visit struct {
	SessionID string
	Table     *table.Store
	Cart      *cart.Cart
	Orders    *order.Service
}

// Open loads the session's table and cart from storage
func (f *Factory) Open(ctx context.Context, sessionID string) *Visit {
	kv := storage.Scope(f.kv, f.prefix, sessionID)
	log := f.log.WithField("session_id", sessionID)

	tables := table.NewStore(kv, table.Options{
		MaxTable: f.cfg.MaxTable,
		TTL:      f.cfg.TableSessionTTL,
		Now:      f.nowFunc,
	}, log)
	tables.Load(ctx)

	c := cart.New(kv, cart.Limits{
		MaxItems:    f.cfg.CartMaxItems,
		MaxQuantity: f.cfg.CartMaxQuantity,
	}, log)
	c.Load(ctx)

	history := order.NewHistory(kv, f.cfg.OrderHistoryCap, log)
	orders := order.NewService(c, tables, history, f.counts, order.Options{
		Location:    f.loc,
		Now:         f.nowFunc,
		MaxQuantity: f.cfg.CartMaxQuantity,
	}, log)

	return &Visit{
		SessionID: sessionID,
		Table:     tables,
		Cart:      c,
		Orders:    orders,
	}
}
