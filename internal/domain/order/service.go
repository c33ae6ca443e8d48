// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/domain/cart"
	"github.com/your-org/mesa-pedidos/internal/domain/table"
)

// ErrInvalidCartItem is returned when a cart entry fails validation at checkout
var ErrInvalidCartItem = cart.ErrInvalidItem

// Cart is the visitor's cart as seen by checkout
type Cart interface {
	Items() []cart.LineItem
	Total() decimal.Decimal
	Clear(ctx context.Context) error
}

// TableSource reports the visitor's active table session
type TableSource interface {
	Current() *table.Session
}

// Recorder receives the items of every completed order
type Recorder interface {
	RecordCounts(ctx context.Context, items []cart.LineItem) error
}

// Sink delivers the order message to the restaurant. It returns a reference
// to what was sent, e.g. a deep link.
type Sink interface {
	Send(ctx context.Context, message string) (string, error)
}

// Options tune the order service
type Options struct {
	Location *time.Location
	Now      func() time.Time
	// MaxQuantity bounds the units of a simple item at checkout
	MaxQuantity int
}

// Service handles order business logic for one visitor
type Service struct {
	cart    Cart
	table   TableSource
	history *History
	counts  Recorder
	opts    Options
	log     logrus.FieldLogger
}

// NewService creates a new order service
func NewService(c Cart, t TableSource, h *History, counts Recorder, opts Options, log logrus.FieldLogger) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxQuantity <= 0 {
		opts.MaxQuantity = cart.DefaultMaxQuantity
	}
	return &Service{
		cart:    c,
		table:   t,
		history: h,
		counts:  counts,
		opts:    opts,
		log:     log,
	}
}

// Submission is the outcome of a dispatched order
type Submission struct {
	Order   *Order `json:"pedido"`
	Message string `json:"mensagem"`
	Link    string `json:"link"`
}

// Prepare validates the cart and table and builds the order snapshot
// without recording anything.
func (s *Service) Prepare(_ context.Context) (*Order, error) {
	items := s.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	sess := s.table.Current()
	if sess == nil {
		return nil, ErrNoTableAssigned
	}

	for _, it := range items {
		err := it.Validate()
		if err == nil {
			err = it.CheckQuantity(s.opts.MaxQuantity)
		}
		if err != nil {
			s.log.WithError(err).WithField("item_id", it.ID).Warn("Cart item failed checkout validation")
			return nil, err
		}
	}

	now := s.opts.Now()
	return &Order{
		ID:        GenerateID(now),
		Table:     sess.Number,
		CreatedAt: now.UTC(),
		Items:     items,
		Total:     s.cart.Total(),
		Status:    OrderStatusPending,
	}, nil
}

// Checkout turns the cart into an order: it is appended to the history,
// counted for popularity and the cart is cleared. The table is kept.
func (s *Service) Checkout(ctx context.Context) (*Order, error) {
	o, err := s.Prepare(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Submit sends the order message through sink before recording it. When the
// sink refuses the message nothing is recorded and the cart is untouched.
func (s *Service) Submit(ctx context.Context, sink Sink) (*Submission, error) {
	o, err := s.Prepare(ctx)
	if err != nil {
		return nil, err
	}

	msg := s.Message(o)
	link, err := sink.Send(ctx, msg)
	if err != nil {
		s.log.WithError(err).WithField("order_id", o.ID).Warn("Order message was not dispatched")
		return nil, fmt.Errorf("%w: %v", ErrMessagingSinkBlocked, err)
	}

	if err := s.commit(ctx, o); err != nil {
		return nil, err
	}
	return &Submission{Order: o, Message: msg, Link: link}, nil
}

// Message renders the order in the restaurant's time zone
func (s *Service) Message(o *Order) string {
	return FormatMessage(o, s.opts.Location)
}

// History returns the visitor's past orders
func (s *Service) History(ctx context.Context) ([]Order, error) {
	return s.history.List(ctx)
}

// Find returns one past order
func (s *Service) Find(ctx context.Context, id string) (*Order, error) {
	return s.history.Find(ctx, id)
}

func (s *Service) commit(ctx context.Context, o *Order) error {
	entry := s.log.WithFields(logrus.Fields{
		"order_id": o.ID,
		"table":    o.Table,
		"total":    o.Total.StringFixed(2),
	})

	if err := s.history.Append(ctx, *o); err != nil {
		entry.WithError(err).Error("Failed to record order")
		return err
	}

	// the order is recorded from here on; later failures are only logged
	if s.counts != nil {
		if err := s.counts.RecordCounts(ctx, o.Items); err != nil {
			entry.WithError(err).Warn("Failed to update order counts")
		}
	}
	if err := s.cart.Clear(ctx); err != nil {
		entry.WithError(err).Error("Failed to clear cart after checkout")
	}

	entry.Info("Order placed")
	return nil
}
