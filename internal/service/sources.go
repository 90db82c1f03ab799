package service

import (
	"context"

	"price-aggregator/internal/models"
)

// MessageOK is the diagnostic carried by a successful fetch
const MessageOK = "OK"

// FetchResult is what an upstream source hands back: the items, whether the
// fetch succeeded, and a human readable diagnostic.
type FetchResult[T any] struct {
	Items   []T
	OK      bool
	Message string
}

// Succeeded builds a successful result
func Succeeded[T any](items []T) FetchResult[T] {
	return FetchResult[T]{Items: items, OK: true, Message: MessageOK}
}

// Failed builds a failed result with the given diagnostic
func Failed[T any](message string) FetchResult[T] {
	return FetchResult[T]{OK: false, Message: message}
}

// ProductSource fetches the full product catalog
type ProductSource interface {
	FetchProducts(ctx context.Context) FetchResult[models.Product]
}

// InventorySource fetches the full inventory ledger
type InventorySource interface {
	FetchInventories(ctx context.Context) FetchResult[models.Inventory]
}
