// internal/domain/catalog/entity.go
package catalog

import (
	"github.com/shopspring/decimal"
)

// VariantType tells how the flavors of a product are picked
type VariantType string

const (
	VariantSingle   VariantType = "single"
	VariantMultiple VariantType = "multiple"
)

// DefaultUnit is the noun used when a product does not name its unit
const DefaultUnit = "itens"

// Category groups products on the menu
type Category struct {
	ID        string `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Name      string `gorm:"not null;size:255" json:"nome" yaml:"nome"`
	SortOrder int    `gorm:"default:0" json:"ordem" yaml:"ordem"`

	// Relationships
	Products []Product `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"produtos" yaml:"produtos"`
}

// Product is a read-only menu entry
type Product struct {
	ID          string          `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Name        string          `gorm:"not null;size:255" json:"nome" yaml:"nome"`
	Description string          `gorm:"type:text" json:"descricao" yaml:"descricao"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"preco" yaml:"preco"`
	Image       string          `gorm:"size:500" json:"imagem" yaml:"imagem"`
	CategoryID  string          `gorm:"not null;index;size:64" json:"categoria" yaml:"categoria"`
	VariantType VariantType     `gorm:"size:16" json:"variantType,omitempty" yaml:"variantType,omitempty"`
	Combo       bool            `gorm:"default:false" json:"combo,omitempty" yaml:"combo,omitempty"`
	Unit        string          `gorm:"size:64" json:"unidade,omitempty" yaml:"unidade,omitempty"`
	SortOrder   int             `gorm:"default:0;index" json:"-" yaml:"-"`

	// Relationships
	Variants []Variant `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variantes,omitempty" yaml:"variantes,omitempty"`
}

// Variant is a selectable flavor of a product. A zero price means the
// variant costs the same as its product.
type Variant struct {
	ID        string          `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	ProductID string          `gorm:"primaryKey;size:64" json:"-" yaml:"-"`
	Name      string          `gorm:"not null;size:255" json:"nome" yaml:"nome"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"preco" yaml:"preco"`
	SortOrder int             `gorm:"default:0" json:"-" yaml:"-"`
}

func (p Product) clone() Product {
	if p.Variants != nil {
		p.Variants = append([]Variant(nil), p.Variants...)
	}
	return p
}

func (c Category) clone() Category {
	if c.Products != nil {
		products := make([]Product, len(c.Products))
		for i := range c.Products {
			products[i] = c.Products[i].clone()
		}
		c.Products = products
	}
	return c
}

// TableName overrides
func (Category) TableName() string { return "categories" }
func (Product) TableName() string  { return "products" }
func (Variant) TableName() string  { return "product_variants" }

// HasVariants reports whether the product needs a flavor selection step
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// Mode returns the selection mode, defaulting to single choice
func (p *Product) Mode() VariantType {
	if p.VariantType == VariantMultiple {
		return VariantMultiple
	}
	return VariantSingle
}

// IsPairedMeal reports whether the flavor count must match a meal count
func (p *Product) IsPairedMeal() bool {
	return p.Combo && p.Mode() == VariantMultiple
}

// UnitNoun returns the noun used to describe grouped quantities
func (p *Product) UnitNoun() string {
	if p.Unit == "" {
		return DefaultUnit
	}
	return p.Unit
}

// FindVariant looks up a variant by id
func (p *Product) FindVariant(id string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// UnitPrice returns the variant price, or the product price when the variant is free
func (p *Product) UnitPrice(v Variant) decimal.Decimal {
	if v.Price.IsPositive() {
		return v.Price
	}
	return p.Price
}
