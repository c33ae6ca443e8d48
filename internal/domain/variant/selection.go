// internal/domain/variant/selection.go
package variant

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/mesa-pedidos/internal/domain/cart"
	"github.com/your-org/mesa-pedidos/internal/domain/catalog"
)

// State of a selection
type State string

const (
	StateConfiguring State = "configuring"
	StateCommitted   State = "committed"
	StateCancelled   State = "cancelled"
)

var (
	ErrNoVariants       = errors.New("product has no variants to select")
	ErrNeedsSelection   = errors.New("product must be added through a variant selection")
	ErrUnknownVariant   = errors.New("unknown variant")
	ErrWrongMode        = errors.New("operation not available in this selection mode")
	ErrInvalidSelection = errors.New("selection is not complete")
	ErrClosed           = errors.New("selection is closed")
)

// Selection holds the in-progress choice of flavors for one product. It is
// ephemeral: opening a product starts a fresh one and cancelling it has no
// side effects.
type Selection struct {
	product catalog.Product
	state   State
	now     func() time.Time

	// single mode
	variantID string
	quantity  int

	// multiple mode, indexed like product.Variants
	quantities []int
	mealCount  int

	note string
}

// Open starts a selection for a product with variants
func Open(p catalog.Product) (*Selection, error) {
	if !p.HasVariants() {
		return nil, fmt.Errorf("%w: %s", ErrNoVariants, p.ID)
	}
	s := &Selection{
		product:    p,
		state:      StateConfiguring,
		now:        time.Now,
		quantity:   1,
		quantities: make([]int, len(p.Variants)),
		mealCount:  1,
	}
	if p.Mode() == catalog.VariantSingle && len(p.Variants) == 1 {
		s.variantID = p.Variants[0].ID
	}
	return s, nil
}

// Product returns the product being configured
func (s *Selection) Product() catalog.Product { return s.product }

// State returns the current state
func (s *Selection) State() State { return s.state }

// Mode returns the selection mode of the product
func (s *Selection) Mode() catalog.VariantType { return s.product.Mode() }

// PairedMeal reports whether the flavor count must equal the meal count
func (s *Selection) PairedMeal() bool { return s.product.IsPairedMeal() }

// MealCount returns the number of meal units in paired-meal mode
func (s *Selection) MealCount() int { return s.mealCount }

// Choose picks the variant in single mode
func (s *Selection) Choose(variantID string) error {
	if err := s.configurable(catalog.VariantSingle); err != nil {
		return err
	}
	if _, ok := s.product.FindVariant(variantID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVariant, variantID)
	}
	s.variantID = variantID
	return nil
}

// SetQuantity sets how many units of the chosen variant to add in single
// mode. The per-item cap is enforced by the cart.
func (s *Selection) SetQuantity(q int) error {
	if err := s.configurable(catalog.VariantSingle); err != nil {
		return err
	}
	if q < 1 {
		q = 1
	}
	s.quantity = q
	return nil
}

// SetVariantQuantity assigns the units of one variant in multiple mode
func (s *Selection) SetVariantQuantity(variantID string, q int) error {
	if err := s.configurable(catalog.VariantMultiple); err != nil {
		return err
	}
	i := s.indexOf(variantID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownVariant, variantID)
	}
	if q < 0 {
		q = 0
	}
	s.quantities[i] = q
	return nil
}

// VariantQuantity returns the units assigned to a variant in multiple mode
func (s *Selection) VariantQuantity(variantID string) int {
	i := s.indexOf(variantID)
	if i < 0 {
		return 0
	}
	return s.quantities[i]
}

// SetMealCount changes the number of meal units in paired-meal mode. When
// the flavors already add up to more than n, units are taken back starting
// from the last declared variant.
func (s *Selection) SetMealCount(n int) error {
	if err := s.configurable(catalog.VariantMultiple); err != nil {
		return err
	}
	if !s.PairedMeal() {
		return ErrWrongMode
	}
	if n < 1 {
		n = 1
	}
	s.mealCount = n

	excess := s.flavorSum() - n
	for i := len(s.quantities) - 1; i >= 0 && excess > 0; i-- {
		take := min(s.quantities[i], excess)
		s.quantities[i] -= take
		excess -= take
	}
	return nil
}

// SetNote attaches a free-text note to the emitted items
func (s *Selection) SetNote(note string) error {
	if s.state != StateConfiguring {
		return ErrClosed
	}
	s.note = note
	return nil
}

// Valid reports whether the selection can be confirmed
func (s *Selection) Valid() bool {
	if s.state != StateConfiguring {
		return false
	}
	if s.product.Mode() == catalog.VariantSingle {
		return s.variantID != "" && s.quantity >= 1
	}
	sum := s.flavorSum()
	if s.PairedMeal() {
		return sum > 0 && sum == s.mealCount
	}
	return sum > 0
}

// Total returns the price of the current selection
func (s *Selection) Total() decimal.Decimal {
	base := s.product.Price

	if s.product.Mode() == catalog.VariantSingle {
		v, ok := s.product.FindVariant(s.variantID)
		if !ok {
			return decimal.Zero
		}
		return s.product.UnitPrice(*v).Mul(decimal.NewFromInt(int64(s.quantity)))
	}

	if s.PairedMeal() {
		// flavors do not change the price of a meal
		return base.Mul(decimal.NewFromInt(int64(s.mealCount)))
	}

	allFree := true
	sum := 0
	for i, q := range s.quantities {
		if q == 0 {
			continue
		}
		sum += q
		if !s.product.Variants[i].Price.IsZero() {
			allFree = false
		}
	}
	if sum == 0 {
		return decimal.Zero
	}
	if allFree {
		return base.Mul(decimal.NewFromInt(int64(sum)))
	}

	total := decimal.Zero
	for i, q := range s.quantities {
		if q == 0 {
			continue
		}
		unit := s.product.UnitPrice(s.product.Variants[i])
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(q))))
	}
	return total
}

// Confirm commits the selection and returns the line items to add. The
// Quantity of each item is the number of units to add to the cart.
func (s *Selection) Confirm() ([]cart.LineItem, error) {
	if s.state != StateConfiguring {
		return nil, ErrClosed
	}
	if !s.Valid() {
		return nil, ErrInvalidSelection
	}

	var items []cart.LineItem
	if s.product.Mode() == catalog.VariantSingle {
		v, _ := s.product.FindVariant(s.variantID)
		items = []cart.LineItem{s.simpleItem(*v, s.quantity)}
	} else {
		picked := s.picked()
		if len(picked) == 1 {
			items = []cart.LineItem{s.simpleItem(picked[0].variant, picked[0].quantity)}
		} else {
			items = []cart.LineItem{s.compoundItem(picked)}
		}
	}

	s.state = StateCommitted
	return items, nil
}

// Cancel discards the selection
func (s *Selection) Cancel() {
	if s.state == StateConfiguring {
		s.state = StateCancelled
	}
}

type pick struct {
	variant  catalog.Variant
	quantity int
}

// picked returns the variants with units, in declaration order
func (s *Selection) picked() []pick {
	var out []pick
	for i, q := range s.quantities {
		if q > 0 {
			out = append(out, pick{variant: s.product.Variants[i], quantity: q})
		}
	}
	return out
}

func (s *Selection) simpleItem(v catalog.Variant, quantity int) cart.LineItem {
	price := s.product.UnitPrice(v)
	if s.PairedMeal() {
		price = s.product.Price
	}
	return cart.LineItem{
		Kind:        cart.KindSimple,
		ID:          s.product.ID + "_" + v.ID,
		Name:        s.product.Name,
		Description: s.product.Description,
		Price:       price,
		Image:       s.product.Image,
		Quantity:    quantity,
		Note:        normalizeNote(s.note),
		ProductID:   s.product.ID,
		VariantID:   v.ID,
		VariantName: v.Name,
	}
}

func (s *Selection) compoundItem(picked []pick) cart.LineItem {
	units := 0
	parts := make([]string, len(picked))
	flavors := make([]cart.Flavor, len(picked))
	for i, p := range picked {
		units += p.quantity
		parts[i] = fmt.Sprintf("%dx %s", p.quantity, p.variant.Name)
		flavors[i] = cart.Flavor{
			ID:       p.variant.ID,
			Name:     p.variant.Name,
			Price:    p.variant.Price,
			Quantity: p.quantity,
		}
	}

	return cart.LineItem{
		Kind:        cart.KindCompound,
		ID:          compoundID(s.product.ID, s.now()),
		Name:        s.product.Name,
		Description: fmt.Sprintf("%d %s: %s", units, s.product.UnitNoun(), strings.Join(parts, ", ")),
		Price:       s.Total(),
		Image:       s.product.Image,
		Quantity:    1,
		Note:        normalizeNote(s.note),
		ProductID:   s.product.ID,
		Flavors:     flavors,
	}
}

func (s *Selection) configurable(mode catalog.VariantType) error {
	if s.state != StateConfiguring {
		return ErrClosed
	}
	if s.product.Mode() != mode {
		return ErrWrongMode
	}
	return nil
}

func (s *Selection) indexOf(variantID string) int {
	for i := range s.product.Variants {
		if s.product.Variants[i].ID == variantID {
			return i
		}
	}
	return -1
}

func (s *Selection) flavorSum() int {
	sum := 0
	for _, q := range s.quantities {
		sum += q
	}
	return sum
}

// normalizeNote trims the note; an empty note is stored as null
func normalizeNote(note string) *string {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil
	}
	return &note
}

// compoundID builds a time-suffixed id, e.g. "10_variado_1718049600000k3f9"
func compoundID(productID string, now time.Time) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	var suffix [4]byte
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return productID + "_variado_" + strconv.FormatInt(now.UnixMilli(), 10) + string(suffix[:])
}
