package features

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
	"github.com/your-org/mesa-pedidos/internal/config"
	"github.com/your-org/mesa-pedidos/internal/domain/cart"
	"github.com/your-org/mesa-pedidos/internal/domain/catalog"
	"github.com/your-org/mesa-pedidos/internal/domain/order"
	"github.com/your-org/mesa-pedidos/internal/domain/popularity"
	"github.com/your-org/mesa-pedidos/internal/domain/table"
	"github.com/your-org/mesa-pedidos/internal/domain/variant"
	"github.com/your-org/mesa-pedidos/internal/domain/visit"
	"github.com/your-org/mesa-pedidos/internal/infrastructure/storage"
	"github.com/your-org/mesa-pedidos/internal/pkg/logger"
)

const sessionID = "visitor"

var errorsByName = map[string]error{
	"EmptyCart":            order.ErrEmptyCart,
	"NoTableAssigned":      order.ErrNoTableAssigned,
	"MessagingSinkBlocked": order.ErrMessagingSinkBlocked,
	"CartLimitExceeded":    cart.ErrCartLimitExceeded,
	"InvalidTableNumber":   table.ErrInvalidTableNumber,
	"InvalidCartItem":      cart.ErrInvalidItem,
}

type sink struct {
	blocked bool
}

func (s *sink) Send(_ context.Context, message string) (string, error) {
	if s.blocked {
		return "", errors.New("window was blocked")
	}
	return "https://wa.me/5511999999999?text=" + strconv.Itoa(len(message)), nil
}

type orderingContext struct {
	cfg     *config.Config
	menu    *catalog.Menu
	kv      *storage.Memory
	counter *popularity.Counter
	visits  *visit.Factory
	visit   *visit.Visit
	sink    *sink

	selection *variant.Selection
	confirmed []cart.LineItem
	placed    *order.Submission
	err       error
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (o *orderingContext) theRestaurantMenu() error {
	menu, err := catalog.NewMenu([]catalog.Category{
		{ID: "pratos", Name: "Pratos", SortOrder: 1, Products: []catalog.Product{
			{ID: "1", Name: "Prato feito", Price: dec("10")},
			{ID: "2", Name: "Pastel", Price: dec("7.5")},
		}},
		{ID: "espetos", Name: "Espetos", SortOrder: 2, Products: []catalog.Product{
			{ID: "10", Name: "Espetinho", Price: dec("8"), VariantType: catalog.VariantMultiple, Unit: "espetos",
				Variants: []catalog.Variant{
					{ID: "carne", Name: "Carne", Price: dec("0")},
					{ID: "queijo", Name: "Queijo", Price: dec("9.5")},
				}},
			{ID: "11", Name: "Jantinha + espeto", Price: dec("15"), VariantType: catalog.VariantMultiple, Combo: true, Unit: "jantinhas",
				Variants: []catalog.Variant{
					{ID: "skewerA", Name: "Carne", Price: dec("0")},
					{ID: "skewerB", Name: "Frango", Price: dec("0")},
				}},
		}},
		{ID: "bebidas", Name: "Bebidas", SortOrder: 3, Products: []catalog.Product{
			{ID: "30", Name: "Refrigerante", Price: dec("6"), VariantType: catalog.VariantSingle,
				Variants: []catalog.Variant{
					{ID: "cola", Name: "Cola", Price: dec("0")},
					{ID: "guarana", Name: "Guarana", Price: dec("0")},
				}},
		}},
	})
	if err != nil {
		return err
	}
	o.menu = menu
	return nil
}

func (o *orderingContext) aNewVisitor() error {
	o.cfg = &config.Config{
		Redis: config.RedisConfig{KeyPrefix: "mesa"},
		Restaurant: config.RestaurantConfig{
			Name:            "Bar do Ze",
			MaxTable:        50,
			TableSessionTTL: 4 * time.Hour,
			CartMaxItems:    30,
			CartMaxQuantity: 50,
			OrderHistoryCap: 50,
			Timezone:        "America/Sao_Paulo",
		},
	}
	log := logger.Discard()
	o.kv = storage.NewMemory()
	o.counter = popularity.NewCounter(popularity.NewKVStore(o.kv, log), log)
	o.visits = visit.NewFactory(o.kv, o.cfg, o.counter, log)
	o.sink = &sink{}
	o.selection, o.confirmed, o.placed, o.err = nil, nil, nil, nil
	return o.iComeBack()
}

func (o *orderingContext) iComeBack() error {
	o.visit = o.visits.Open(context.Background(), sessionID)
	return nil
}

func (o *orderingContext) iSitAtTable(n int) error {
	_, err := o.visit.Table.SetTable(context.Background(), n)
	return err
}

func (o *orderingContext) iScanTheTableLink(raw string) error {
	n, err := table.ParseNumber(raw, o.cfg.Restaurant.MaxTable)
	if err != nil {
		o.err = err
		return nil
	}
	o.err = nil
	return o.iSitAtTable(n)
}

func (o *orderingContext) tableWasTakenHoursAgo(n, hours int) error {
	kv := storage.Scope(o.kv, o.cfg.Redis.KeyPrefix, sessionID)
	return storage.SetJSON(context.Background(), kv, storage.KeyTable, table.Session{
		Number:     n,
		AcquiredAt: time.Now().Add(-time.Duration(hours) * time.Hour),
	})
}

func (o *orderingContext) product(id string) (catalog.Product, error) {
	p, err := o.menu.Product(context.Background(), id)
	if err != nil {
		return catalog.Product{}, err
	}
	return *p, nil
}

func (o *orderingContext) addProduct(quantity int, id string) error {
	p, err := o.product(id)
	if err != nil {
		return err
	}
	item, err := variant.Plain(p, quantity, "")
	if err != nil {
		return err
	}
	return o.visit.Cart.Add(context.Background(), item, item.Quantity)
}

func (o *orderingContext) addFlavor(quantity int, id, flavor string) error {
	p, err := o.product(id)
	if err != nil {
		return err
	}
	items, err := variant.Resolve(p, variant.Request{ProductID: id, VariantID: flavor, Quantity: quantity})
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := o.visit.Cart.Add(context.Background(), it, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (o *orderingContext) iTryToAddFlavor(quantity int, id, flavor string) error {
	o.err = o.addFlavor(quantity, id, flavor)
	return nil
}

func (o *orderingContext) iAddASelection(id string, qa int, a string, qb int, b string) error {
	p, err := o.product(id)
	if err != nil {
		return err
	}
	items, err := variant.Resolve(p, variant.Request{ProductID: id, Flavors: map[string]int{a: qa, b: qb}})
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := o.visit.Cart.Add(context.Background(), it, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (o *orderingContext) iOpenProduct(id string) error {
	p, err := o.product(id)
	if err != nil {
		return err
	}
	o.selection, err = variant.Open(p)
	return err
}

func (o *orderingContext) iSetTheMealCount(n int) error {
	return o.selection.SetMealCount(n)
}

func (o *orderingContext) iPickOfFlavor(q int, id string) error {
	return o.selection.SetVariantQuantity(id, q)
}

func (o *orderingContext) iConfirmTheSelection() error {
	items, err := o.selection.Confirm()
	if err != nil {
		return err
	}
	o.confirmed = items
	return nil
}

func (o *orderingContext) iCheckOut() error {
	o.placed, o.err = o.visit.Orders.Submit(context.Background(), o.sink)
	return nil
}

func (o *orderingContext) theMessagingChannelIsBlocked() error {
	o.sink.blocked = true
	return nil
}

func (o *orderingContext) failsWith(name string) error {
	want, ok := errorsByName[name]
	if !ok {
		return fmt.Errorf("unknown error %s", name)
	}
	if !errors.Is(o.err, want) {
		return fmt.Errorf("expected %s, got %v", name, o.err)
	}
	return nil
}

func (o *orderingContext) theCartHasEntries(n int) error {
	if got := o.visit.Cart.Len(); got != n {
		return fmt.Errorf("expected %d entries, got %d", n, got)
	}
	return nil
}

func (o *orderingContext) theCartHoldsUnits(n int) error {
	if got := o.visit.Cart.TotalItemCount(); got != n {
		return fmt.Errorf("expected %d units, got %d", n, got)
	}
	return nil
}

func (o *orderingContext) theCartTotalIs(amount string) error {
	if got := o.visit.Cart.Total(); !got.Equal(dec(amount)) {
		return fmt.Errorf("expected total %s, got %s", amount, got.StringFixed(2))
	}
	return nil
}

func (o *orderingContext) theSelectionProducedCompound(n int, price string, flavors int) error {
	if len(o.confirmed) != n {
		return fmt.Errorf("expected %d items, got %d", n, len(o.confirmed))
	}
	it := o.confirmed[0]
	if !it.IsCompound() {
		return fmt.Errorf("expected a compound item, got %s", it.Kind)
	}
	if !it.Price.Equal(dec(price)) {
		return fmt.Errorf("expected price %s, got %s", price, it.Price.StringFixed(2))
	}
	if it.Quantity != 1 {
		return fmt.Errorf("expected quantity 1, got %d", it.Quantity)
	}
	if len(it.Flavors) != flavors {
		return fmt.Errorf("expected %d flavors, got %d", flavors, len(it.Flavors))
	}
	return nil
}

func (o *orderingContext) theSelectionCanBeConfirmed() error {
	if !o.selection.Valid() {
		return errors.New("expected the selection to be confirmable")
	}
	return nil
}

func (o *orderingContext) theSelectionCannotBeConfirmed() error {
	if o.selection.Valid() {
		return errors.New("expected the selection not to be confirmable")
	}
	return nil
}

func (o *orderingContext) flavorHasUnits(id string, n int) error {
	if got := o.selection.VariantQuantity(id); got != n {
		return fmt.Errorf("expected %d units of %s, got %d", n, id, got)
	}
	return nil
}

func (o *orderingContext) theTableIs(want string) error {
	sess := o.visit.Table.Current()
	if want == "none" {
		if sess != nil {
			return fmt.Errorf("expected no table, got %d", sess.Number)
		}
		return nil
	}
	if sess == nil {
		return fmt.Errorf("expected table %s, got none", want)
	}
	if strconv.Itoa(sess.Number) != want {
		return fmt.Errorf("expected table %s, got %d", want, sess.Number)
	}
	return nil
}

func (o *orderingContext) theOrderIsPlacedForTable(n int) error {
	if o.err != nil {
		return fmt.Errorf("checkout failed: %w", o.err)
	}
	if o.placed.Order.Table != n {
		return fmt.Errorf("expected table %d, got %d", n, o.placed.Order.Table)
	}
	if o.placed.Link == "" {
		return errors.New("expected a message link")
	}
	return nil
}

func (o *orderingContext) productHasBeenOrdered(id string, n int) error {
	counts, err := o.counter.Counts(context.Background())
	if err != nil {
		return err
	}
	if counts[id] != int64(n) {
		return fmt.Errorf("expected %s ordered %d times, got %d", id, n, counts[id])
	}
	return nil
}

func (o *orderingContext) theOrderHistoryIsEmpty() error {
	orders, err := o.visit.Orders.History(context.Background())
	if err != nil {
		return err
	}
	if len(orders) != 0 {
		return fmt.Errorf("expected no orders, got %d", len(orders))
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	o := &orderingContext{}

	// Given steps
	ctx.Step(`^the restaurant menu$`, o.theRestaurantMenu)
	ctx.Step(`^a new visitor$`, o.aNewVisitor)
	ctx.Step(`^I sit at table (\d+)$`, o.iSitAtTable)
	ctx.Step(`^table (\d+) was taken (\d+) hours ago$`, o.tableWasTakenHoursAgo)
	ctx.Step(`^the messaging channel is blocked$`, o.theMessagingChannelIsBlocked)

	// When steps
	ctx.Step(`^I come back$`, o.iComeBack)
	ctx.Step(`^I scan the table link "([^"]*)"$`, o.iScanTheTableLink)
	ctx.Step(`^I add (\d+) of product "([^"]*)"$`, o.addProduct)
	ctx.Step(`^I add (\d+) of product "([^"]*)" flavor "([^"]*)"$`, o.addFlavor)
	ctx.Step(`^I try to add (\d+) of product "([^"]*)" flavor "([^"]*)"$`, o.iTryToAddFlavor)
	ctx.Step(`^I add a selection of product "([^"]*)" with (\d+) of "([^"]*)" and (\d+) of "([^"]*)"$`, o.iAddASelection)
	ctx.Step(`^I open product "([^"]*)"$`, o.iOpenProduct)
	ctx.Step(`^I set the meal count to (\d+)$`, o.iSetTheMealCount)
	ctx.Step(`^I pick (\d+) of flavor "([^"]*)"$`, o.iPickOfFlavor)
	ctx.Step(`^I confirm the selection$`, o.iConfirmTheSelection)
	ctx.Step(`^I check out$`, o.iCheckOut)

	// Then steps
	ctx.Step(`^checkout fails with "([^"]*)"$`, o.failsWith)
	ctx.Step(`^the add fails with "([^"]*)"$`, o.failsWith)
	ctx.Step(`^the table link fails with "([^"]*)"$`, o.failsWith)
	ctx.Step(`^the cart has (\d+) entries$`, o.theCartHasEntries)
	ctx.Step(`^the cart holds (\d+) units$`, o.theCartHoldsUnits)
	ctx.Step(`^the cart total is "([^"]*)"$`, o.theCartTotalIs)
	ctx.Step(`^the selection produced (\d+) compound item priced "([^"]*)" with (\d+) flavors$`, o.theSelectionProducedCompound)
	ctx.Step(`^the selection can be confirmed$`, o.theSelectionCanBeConfirmed)
	ctx.Step(`^the selection cannot be confirmed$`, o.theSelectionCannotBeConfirmed)
	ctx.Step(`^flavor "([^"]*)" has (\d+) units$`, o.flavorHasUnits)
	ctx.Step(`^the table is "([^"]*)"$`, o.theTableIs)
	ctx.Step(`^the order is placed for table (\d+)$`, o.theOrderIsPlacedForTable)
	ctx.Step(`^product "([^"]*)" has been ordered (\d+) times$`, o.productHasBeenOrdered)
	ctx.Step(`^the order history is empty$`, o.theOrderHistoryIsEmpty)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"ordering.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
