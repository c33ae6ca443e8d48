// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrProductNotFound is returned when a product id is not on the menu
var ErrProductNotFound = errors.New("product not found")

// Source is the read-only menu collaborator
type Source interface {
	Categories(ctx context.Context) ([]Category, error)
	// Products returns every product in menu order
	Products(ctx context.Context) ([]Product, error)
	Product(ctx context.Context, id string) (*Product, error)
}

// Menu is a catalog held in memory, loaded once at startup
type Menu struct {
	categories []Category
	products   []Product
	index      map[string]int
}

// NewMenu builds a menu from categories. Products are ordered by category
// order, then by their position inside the category. The input is copied
// and left untouched.
func NewMenu(categories []Category) (*Menu, error) {
	cats := make([]Category, len(categories))
	for i := range categories {
		cats[i] = categories[i].clone()
	}
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].SortOrder < cats[j].SortOrder })

	m := &Menu{index: make(map[string]int)}
	for ci := range cats {
		for pi := range cats[ci].Products {
			p := cats[ci].Products[pi]
			if p.ID == "" {
				return nil, fmt.Errorf("category %s: product %d has no id", cats[ci].ID, pi)
			}
			if _, dup := m.index[p.ID]; dup {
				return nil, fmt.Errorf("duplicate product id %s", p.ID)
			}
			if p.Price.IsNegative() {
				return nil, fmt.Errorf("product %s has a negative price", p.ID)
			}
			p.CategoryID = cats[ci].ID
			p.SortOrder = len(m.products)
			for vi := range p.Variants {
				p.Variants[vi].ProductID = p.ID
				p.Variants[vi].SortOrder = vi
				if p.Variants[vi].Price.IsNegative() {
					return nil, fmt.Errorf("variant %s of %s has a negative price", p.Variants[vi].ID, p.ID)
				}
			}
			cats[ci].Products[pi] = p
			m.index[p.ID] = len(m.products)
			m.products = append(m.products, p.clone())
		}
	}
	m.categories = cats
	return m, nil
}

// LoadFile reads a menu from a YAML or JSON file
func LoadFile(path string) (*Menu, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var doc struct {
		Categories []Category `json:"categorias" yaml:"categorias"`
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &doc)
	default:
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	return NewMenu(doc.Categories)
}

func (m *Menu) Categories(_ context.Context) ([]Category, error) {
	out := make([]Category, len(m.categories))
	for i := range m.categories {
		out[i] = m.categories[i].clone()
	}
	return out, nil
}

func (m *Menu) Products(_ context.Context) ([]Product, error) {
	out := make([]Product, len(m.products))
	for i := range m.products {
		out[i] = m.products[i].clone()
	}
	return out, nil
}

func (m *Menu) Product(_ context.Context, id string) (*Product, error) {
	i, ok := m.index[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	p := m.products[i].clone()
	return &p, nil
}
