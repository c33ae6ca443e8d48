// internal/domain/catalog/repository.go
package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Repository serves the menu from PostgreSQL
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	err := r.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Products.Variants", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Order("sort_order ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

func (r *Repository) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Order("sort_order ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}
	return products, nil
}

func (r *Repository) Product(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("id = ?", id).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &p, nil
}

// Seed replaces the stored menu with the given one inside a transaction
func (r *Repository) Seed(ctx context.Context, menu *Menu) error {
	categories, _ := menu.Categories(ctx)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Variant{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Product{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Category{}).Error; err != nil {
			return err
		}
		for _, c := range categories {
			// Create the whole tree: category, products and their variants
			if err := tx.Create(&c).Error; err != nil {
				return fmt.Errorf("failed to seed category %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

var (
	_ Source = (*Menu)(nil)
	_ Source = (*Repository)(nil)
)
