package order

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/mesa-pedidos/internal/domain/cart"
	"github.com/your-org/mesa-pedidos/internal/domain/popularity"
	"github.com/your-org/mesa-pedidos/internal/domain/table"
	"github.com/your-org/mesa-pedidos/internal/infrastructure/storage"
	"github.com/your-org/mesa-pedidos/internal/pkg/logger"
)

var fixedNow = time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC)

type fixture struct {
	kv      *storage.Memory
	cart    *cart.Cart
	table   *table.Store
	counter *popularity.Counter
	service *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Discard()
	kv := storage.NewMemory()

	f := &fixture{
		kv:      kv,
		cart:    cart.New(kv, cart.Limits{}, log),
		table:   table.NewStore(kv, table.Options{Now: func() time.Time { return fixedNow }}, log),
		counter: popularity.NewCounter(popularity.NewKVStore(storage.NewMemory(), log), log),
	}
	f.service = NewService(f.cart, f.table, NewHistory(kv, 0, log), f.counter, Options{
		Location: time.FixedZone("BRT", -3*60*60),
		Now:      func() time.Time { return fixedNow },
	}, log)
	return f
}

func item(id, price string) cart.LineItem {
	return cart.LineItem{
		Kind:      cart.KindSimple,
		ID:        id,
		Name:      "Produto " + id,
		Price:     decimal.RequireFromString(price),
		ProductID: id,
	}
}

type stubSink struct {
	err  error
	sent []string
}

func (s *stubSink) Send(_ context.Context, message string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, message)
	return "https://wa.me/5562999990000?text=x", nil
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.table.SetTable(ctx, 5)
	require.NoError(t, err)

	_, err = f.service.Checkout(ctx)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_NoTableKeepsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.cart.Add(ctx, item("1", "10"), 1))

	_, err := f.service.Checkout(ctx)
	assert.ErrorIs(t, err, ErrNoTableAssigned)
	assert.Equal(t, 1, f.cart.Len())
}

func TestCheckout_ClearsCartAndKeepsTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, err := f.table.SetTable(ctx, 5)
	require.NoError(t, err)
	require.NoError(t, f.cart.Add(ctx, item("1", "10"), 2))
	require.NoError(t, f.cart.Add(ctx, item("2", "7.5"), 1))

	o, err := f.service.Checkout(ctx)
	require.NoError(t, err)

	assert.Equal(t, 5, o.Table)
	assert.Equal(t, OrderStatusPending, o.Status)
	assert.Equal(t, "27.50", o.Total.StringFixed(2))
	assert.Len(t, o.Items, 2)
	assert.Equal(t, fixedNow, o.CreatedAt)

	assert.Zero(t, f.cart.Len())
	assert.Equal(t, sess, f.table.Current())

	history, err := f.service.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, o.ID, history[0].ID)

	counts, err := f.counter.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"1": 2, "2": 1}, counts)
}

type stubCart struct {
	items   []cart.LineItem
	cleared bool
}

func (c *stubCart) Items() []cart.LineItem { return cart.CloneItems(c.items) }

func (c *stubCart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (c *stubCart) Clear(context.Context) error {
	c.items = nil
	c.cleared = true
	return nil
}

type stubTable struct{ sess *table.Session }

func (s stubTable) Current() *table.Session { return s.sess }

func TestCheckout_InvalidItemIsNamed(t *testing.T) {
	ctx := context.Background()
	log := logger.Discard()

	bad := item("2", "0")
	bad.Quantity = 1
	c := &stubCart{items: []cart.LineItem{{
		Kind: cart.KindSimple, ID: "1", Name: "Ok", Price: decimal.NewFromInt(5), Quantity: 1,
	}, bad}}
	history := NewHistory(storage.NewMemory(), 0, log)
	svc := NewService(c, stubTable{sess: &table.Session{Number: 4, AcquiredAt: fixedNow}}, history, nil, Options{}, log)

	_, err := svc.Checkout(ctx)
	assert.ErrorIs(t, err, ErrInvalidCartItem)
	var ie *cart.InvalidItemError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "2", ie.ItemID)

	assert.False(t, c.cleared)
	orders, err := history.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckout_QuantityOutOfRange(t *testing.T) {
	ctx := context.Background()
	log := logger.Discard()

	for name, qty := range map[string]int{"negative": -3, "zero": 0, "above limit": 999} {
		t.Run(name, func(t *testing.T) {
			bad := item("7", "5")
			bad.Quantity = qty
			c := &stubCart{items: []cart.LineItem{bad}}
			history := NewHistory(storage.NewMemory(), 0, log)
			svc := NewService(c, stubTable{sess: &table.Session{Number: 4, AcquiredAt: fixedNow}}, history, nil, Options{}, log)

			_, err := svc.Checkout(ctx)
			assert.ErrorIs(t, err, ErrInvalidCartItem)
			var ie *cart.InvalidItemError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, "7", ie.ItemID)
			assert.False(t, c.cleared)
		})
	}
}

func TestCheckout_SnapshotIsDeepCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.table.SetTable(ctx, 3)
	require.NoError(t, err)

	note := "sem gelo"
	it := item("1", "10")
	it.Note = &note
	require.NoError(t, f.cart.Add(ctx, it, 1))

	o, err := f.service.Prepare(ctx)
	require.NoError(t, err)

	require.NoError(t, f.cart.UpdateQuantity(ctx, "1", 9))
	assert.Equal(t, 1, o.Items[0].Quantity)
	assert.Equal(t, "10.00", o.Total.StringFixed(2))

	*o.Items[0].Note = "changed"
	assert.Equal(t, "sem gelo", *f.cart.Items()[0].Note)
}

func TestSubmit_DispatchesBeforeRecording(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.table.SetTable(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, f.cart.Add(ctx, item("1", "10"), 1))

	sink := &stubSink{}
	sub, err := f.service.Submit(ctx, sink)
	require.NoError(t, err)

	require.Len(t, sink.sent, 1)
	assert.Equal(t, sub.Message, sink.sent[0])
	assert.Contains(t, sub.Message, sub.Order.ID)
	assert.NotEmpty(t, sub.Link)
	assert.Zero(t, f.cart.Len())
}

func TestSubmit_BlockedSinkLeavesEverythingUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.table.SetTable(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, f.cart.Add(ctx, item("1", "10"), 2))

	_, err = f.service.Submit(ctx, &stubSink{err: errors.New("popup blocked")})
	assert.ErrorIs(t, err, ErrMessagingSinkBlocked)

	assert.Equal(t, 1, f.cart.Len())
	history, err := f.service.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
	counts, err := f.counter.Counts(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestCheckout_CompoundCountsUnderItsOwnID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.table.SetTable(ctx, 1)
	require.NoError(t, err)

	compound := cart.LineItem{
		Kind:      cart.KindCompound,
		ID:        "10_variado_1718049600000abcd",
		Name:      "Espetinho",
		Price:     decimal.NewFromInt(24),
		Quantity:  1,
		ProductID: "10",
		Flavors: []cart.Flavor{
			{ID: "carne", Name: "Carne", Quantity: 2},
			{ID: "frango", Name: "Frango", Quantity: 1},
		},
	}
	require.NoError(t, f.cart.Add(ctx, compound, 1))

	_, err = f.service.Checkout(ctx)
	require.NoError(t, err)

	counts, err := f.counter.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"10_variado_1718049600000abcd": 1}, counts)
}

func TestHistory_KeepsMostRecent(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(storage.NewMemory(), 3, logger.Discard())

	for i := 0; i < 5; i++ {
		require.NoError(t, h.Append(ctx, Order{ID: string(rune('a' + i)), Status: OrderStatusPending}))
	}

	orders, err := h.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "c", orders[0].ID)
	assert.Equal(t, "e", orders[2].ID)

	_, err = h.Find(ctx, "a")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	found, err := h.Find(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, "d", found.ID)
}

func TestHistory_DefaultCap(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(storage.NewMemory(), 0, logger.Discard())

	for i := 0; i < DefaultHistoryCap+5; i++ {
		require.NoError(t, h.Append(ctx, Order{ID: GenerateID(fixedNow)}))
	}
	orders, err := h.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, DefaultHistoryCap)
}

func TestHistory_MalformedIsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, storage.KeyHistory, `{{`))

	orders, err := NewHistory(kv, 0, logger.Discard()).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestGenerateID(t *testing.T) {
	pattern := regexp.MustCompile(`^PED-\d+-[0-9A-Z]{6}$`)
	seen := make(map[string]struct{}, 1000)

	for i := 0; i < 1000; i++ {
		id := GenerateID(time.Now())
		require.Regexp(t, pattern, id)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
