// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Kind discriminates the two shapes of a line item
type Kind string

const (
	KindSimple   Kind = "simples"
	KindCompound Kind = "variado"
)

// Defaults for the cart limits
const (
	DefaultMaxItems    = 30
	DefaultMaxQuantity = 50
)

var (
	// ErrInvalidItem is returned for line items that fail validation
	ErrInvalidItem = errors.New("invalid cart item")
	// ErrCartLimitExceeded is returned when an add would break the item or unit limits
	ErrCartLimitExceeded = errors.New("cart limit exceeded")
	// ErrInvalidQuantity is returned for add quantities outside (0, max]
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// Flavor is one variant inside a compound item
type Flavor struct {
	ID       string          `json:"id" validate:"required"`
	Name     string          `json:"nome" validate:"required"`
	Price    decimal.Decimal `json:"preco"`
	Quantity int             `json:"quantidade" validate:"gte=1"`
}

// LineItem is one cart entry. Simple items carry the product/variant
// identity; compound items carry their flavors and a pre-computed total in
// Price with Quantity fixed at 1.
type LineItem struct {
	Kind        Kind            `json:"tipo" validate:"required,oneof=simples variado"`
	ID          string          `json:"id" validate:"required"`
	Name        string          `json:"nome" validate:"required"`
	Description string          `json:"descricao,omitempty"`
	Price       decimal.Decimal `json:"preco"`
	Image       string          `json:"imagem,omitempty"`
	Quantity    int             `json:"quantidade"`
	Note        *string         `json:"observacao"`

	// Simple items
	ProductID   string `json:"produtoId,omitempty"`
	VariantID   string `json:"varianteId,omitempty"`
	VariantName string `json:"varianteNome,omitempty"`

	// Compound items
	Flavors []Flavor `json:"sabores,omitempty" validate:"required_if=Kind variado,dive"`
}

// InvalidItemError names the item that failed validation
type InvalidItemError struct {
	ItemID string
	Reason string
}

func (e *InvalidItemError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("invalid cart item: %s", e.Reason)
	}
	return fmt.Sprintf("invalid cart item %q: %s", e.ItemID, e.Reason)
}

func (e *InvalidItemError) Is(target error) bool {
	return target == ErrInvalidItem
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func itemValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the item schema: id, name, a positive price and, for
// compound items, the flavor breakdown with a single unit.
func (i LineItem) Validate() error {
	if err := itemValidator().Struct(i); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for k, fe := range verrs {
				fields[k] = fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
			}
			return &InvalidItemError{ItemID: i.ID, Reason: strings.Join(fields, "; ")}
		}
		return &InvalidItemError{ItemID: i.ID, Reason: err.Error()}
	}
	if !i.Price.IsPositive() {
		return &InvalidItemError{ItemID: i.ID, Reason: "price must be positive"}
	}
	if i.Kind == KindCompound && i.Quantity != 1 {
		return &InvalidItemError{ItemID: i.ID, Reason: "compound items hold exactly one unit"}
	}
	return nil
}

// CheckQuantity verifies a simple item holds between 1 and limit units
func (i LineItem) CheckQuantity(limit int) error {
	if i.IsCompound() {
		return nil
	}
	if i.Quantity < 1 || i.Quantity > limit {
		return &InvalidItemError{ItemID: i.ID, Reason: fmt.Sprintf("quantity %d outside 1..%d", i.Quantity, limit)}
	}
	return nil
}

// IsCompound reports whether the item groups several flavors
func (i LineItem) IsCompound() bool {
	return i.Kind == KindCompound
}

// Subtotal returns price × quantity
func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// sameIdentity reports whether two simple items merge into one entry
func (i LineItem) sameIdentity(o LineItem) bool {
	if i.IsCompound() || o.IsCompound() {
		return false
	}
	if i.ProductID != "" && i.VariantID != "" && o.ProductID != "" && o.VariantID != "" {
		return i.ProductID == o.ProductID && i.VariantID == o.VariantID
	}
	return i.ID == o.ID
}

// Clone returns a deep copy
func (i LineItem) Clone() LineItem {
	c := i
	if i.Note != nil {
		note := *i.Note
		c.Note = &note
	}
	if i.Flavors != nil {
		c.Flavors = make([]Flavor, len(i.Flavors))
		copy(c.Flavors, i.Flavors)
	}
	return c
}

// CloneItems deep-copies a slice of items
func CloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for k, it := range items {
		out[k] = it.Clone()
	}
	return out
}

// Limits bound the cart size
type Limits struct {
	MaxItems    int
	MaxQuantity int
}

func (l Limits) withDefaults() Limits {
	if l.MaxItems <= 0 {
		l.MaxItems = DefaultMaxItems
	}
	if l.MaxQuantity <= 0 {
		l.MaxQuantity = DefaultMaxQuantity
	}
	return l
}

// Totals summarizes the cart
type Totals struct {
	ItemCount     int             `json:"item_count"`     // Number of distinct entries
	TotalQuantity int             `json:"total_quantity"` // Sum of all quantities
	TotalAmount   decimal.Decimal `json:"total_amount"`
}
