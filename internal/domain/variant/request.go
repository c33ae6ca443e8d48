// internal/domain/variant/request.go
package variant

import (
	"fmt"

	"github.com/your-org/mesa-pedidos/internal/domain/cart"
	"github.com/your-org/mesa-pedidos/internal/domain/catalog"
)

// Request carries a whole flavor selection in one go, as the menu modal
// submits it on confirm.
type Request struct {
	ProductID string `json:"produto_id" binding:"required"`

	// single mode
	VariantID string `json:"variante_id,omitempty"`
	Quantity  int    `json:"quantidade,omitempty"`

	// multiple mode: variant id -> units, in any order
	Flavors map[string]int `json:"sabores,omitempty"`
	// paired-meal mode
	MealCount int `json:"refeicoes,omitempty"`

	Note string `json:"observacao,omitempty"`
}

// Resolve replays a request on a fresh selection of p and confirms it
func Resolve(p catalog.Product, req Request) ([]cart.LineItem, error) {
	sel, err := Open(p)
	if err != nil {
		return nil, err
	}

	if err := sel.Apply(req); err != nil {
		sel.Cancel()
		return nil, err
	}
	return sel.Confirm()
}

// Plain builds the line item of a product without variants. A zero
// quantity means one unit.
func Plain(p catalog.Product, quantity int, note string) (cart.LineItem, error) {
	if p.HasVariants() {
		return cart.LineItem{}, fmt.Errorf("%w: %s", ErrNeedsSelection, p.ID)
	}
	if quantity == 0 {
		quantity = 1
	}
	return cart.LineItem{
		Kind:      cart.KindSimple,
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  quantity,
		Note:      normalizeNote(note),
		ProductID: p.ID,
	}, nil
}

// Apply sets every field of the request on the selection
func (s *Selection) Apply(req Request) error {
	if s.Mode() == catalog.VariantSingle {
		if req.VariantID != "" {
			if err := s.Choose(req.VariantID); err != nil {
				return err
			}
		}
		if req.Quantity > 0 {
			if err := s.SetQuantity(req.Quantity); err != nil {
				return err
			}
		}
	} else {
		// meal count first so it does not trim the flavors chosen below
		if s.PairedMeal() && req.MealCount > 0 {
			if err := s.SetMealCount(req.MealCount); err != nil {
				return err
			}
		}
		for _, v := range s.product.Variants {
			if q, ok := req.Flavors[v.ID]; ok {
				if err := s.SetVariantQuantity(v.ID, q); err != nil {
					return err
				}
			}
		}
		for id := range req.Flavors {
			if s.indexOf(id) < 0 {
				return &UnknownVariantError{ID: id}
			}
		}
	}
	return s.SetNote(req.Note)
}

// UnknownVariantError names a variant that the product does not have
type UnknownVariantError struct {
	ID string
}

func (e *UnknownVariantError) Error() string {
	return ErrUnknownVariant.Error() + ": " + e.ID
}

func (e *UnknownVariantError) Is(target error) bool {
	return target == ErrUnknownVariant
}
