package store

import (
	"context"
	"fmt"
	"time"

	"price-aggregator/internal/models"
	"price-aggregator/internal/service"
	"price-aggregator/internal/util"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewStore creates a new database store. sqlx.Connect pings before
// returning, so the pool is known to be reachable.
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return NewStoreFromDB(db), nil
}

// NewStoreFromDB wraps an already opened connection
func NewStoreFromDB(db *sqlx.DB) *Store {
	return &Store{db: db, logger: util.GetLogger()}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetProducts retrieves the full catalog in id order
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products,
		"SELECT id, sku, name, price, type, image FROM products ORDER BY id")
	return products, err
}

// GetInventories retrieves every inventory record across all zones
func (s *Store) GetInventories(ctx context.Context) ([]models.Inventory, error) {
	inventories := []models.Inventory{}
	err := s.db.SelectContext(ctx, &inventories,
		"SELECT id, sku, zone, quantity FROM inventories")
	return inventories, err
}

// FetchProducts implements service.ProductSource
func (s *Store) FetchProducts(ctx context.Context) service.FetchResult[models.Product] {
	products, err := s.GetProducts(ctx)
	if err != nil {
		s.logger.Warn("Failed to query products", zap.Error(err))
		return service.Failed[models.Product](fmt.Sprintf("failed to query products: %v", err))
	}
	return service.Succeeded(products)
}

// FetchInventories implements service.InventorySource
func (s *Store) FetchInventories(ctx context.Context) service.FetchResult[models.Inventory] {
	inventories, err := s.GetInventories(ctx)
	if err != nil {
		s.logger.Warn("Failed to query inventories", zap.Error(err))
		return service.Failed[models.Inventory](fmt.Sprintf("failed to query inventories: %v", err))
	}
	return service.Succeeded(inventories)
}

// UpsertProduct inserts or replaces a catalog entry
func (s *Store) UpsertProduct(ctx context.Context, p models.Product) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO products (id, sku, name, price, type, image)
		VALUES (:id, :sku, :name, :price, :type, :image)
		ON CONFLICT (id) DO UPDATE SET
			sku = EXCLUDED.sku, name = EXCLUDED.name, price = EXCLUDED.price,
			type = EXCLUDED.type, image = EXCLUDED.image`, p)
	return err
}

// UpsertInventory inserts or replaces an inventory record
func (s *Store) UpsertInventory(ctx context.Context, inv models.Inventory) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO inventories (id, sku, zone, quantity)
		VALUES (:id, :sku, :zone, :quantity)
		ON CONFLICT (id) DO UPDATE SET
			sku = EXCLUDED.sku, zone = EXCLUDED.zone, quantity = EXCLUDED.quantity`, inv)
	return err
}
