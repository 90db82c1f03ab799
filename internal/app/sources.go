// Package app wires the configured upstream sources together.
package app

import (
	"errors"
	"fmt"

	"price-aggregator/config"
	"price-aggregator/internal/redisclient"
	"price-aggregator/internal/service"
	"price-aggregator/internal/store"
	"price-aggregator/internal/upstream"
)

// Sources holds the selected product and inventory sources plus whatever
// connections back them.
type Sources struct {
	Products    service.ProductSource
	Inventories service.InventorySource
	closers     []func() error
}

// Close releases every connection opened by BuildSources
func (s *Sources) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildSources opens the backends named by cfg
func BuildSources(cfg *config.Config) (*Sources, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Sources{}

	var db *store.Store
	if cfg.NeedsDatabase() {
		var err error
		db, err = store.NewStore(cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
	}

	switch cfg.Upstream.ProductSource {
	case config.SourcePostgres:
		s.Products = db
	default:
		s.Products = upstream.NewProductsClient(cfg.Upstream.ProductsBaseURL, cfg.Upstream.Timeout)
	}

	switch cfg.Upstream.InventorySource {
	case config.SourcePostgres:
		s.Inventories = db
	case config.SourceRedis:
		rc, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to open inventory ledger: %w", err)
		}
		s.closers = append(s.closers, rc.Close)
		s.Inventories = rc
	default:
		s.Inventories = upstream.NewInventoriesClient(cfg.Upstream.InventoriesBaseURL, cfg.Upstream.Timeout)
	}

	return s, nil
}
