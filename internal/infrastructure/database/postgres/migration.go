// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/domain/catalog"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log logrus.FieldLogger) *Migration {
	return &Migration{
		db:  db,
		log: log,
	}
}

// RunAutoMigrations creates or updates the catalog tables
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("Running database auto-migrations")

	// dependency order
	models := []interface{}{
		&catalog.Category{},
		&catalog.Product{},
		&catalog.Variant{},
	}

	for _, model := range models {
		m.log.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	m.log.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes adds the indexes GORM tags cannot express
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_categories_sort_order ON categories(sort_order)",
		"CREATE INDEX IF NOT EXISTS idx_products_category_sort ON products(category_id, sort_order)",
		"CREATE INDEX IF NOT EXISTS idx_product_variants_product_sort ON product_variants(product_id, sort_order)",
	}

	failed := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.log.WithError(err).Warn("Failed to create index")
			failed++
		}
	}

	m.log.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("Database indexes created")
	if failed > 0 {
		return fmt.Errorf("%d of %d indexes failed", failed, len(indexes))
	}
	return nil
}

// SeedCatalog replaces the catalog tables with the menu file contents
func (m *Migration) SeedCatalog(ctx context.Context, menu *catalog.Menu) error {
	if err := catalog.NewRepository(m.db).Seed(ctx, menu); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	products, err := menu.Products(ctx)
	if err != nil {
		return err
	}
	m.log.WithField("products", len(products)).Info("Catalog seeded")
	return nil
}
