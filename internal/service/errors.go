package service

import (
	"errors"
	"fmt"
)

// ErrUpstreamFailure is matched by every AggregationError
var ErrUpstreamFailure = errors.New("upstream fetch failed")

// AggregationError reports that the product fetch, the inventory fetch, or
// both failed. Both diagnostics are always present.
type AggregationError struct {
	ProductOK         bool
	ProductResponse   string
	InventoryOK       bool
	InventoryResponse string
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("Failed to fetch products or inventories: Product Response: %s Inventory Response: %s",
		e.ProductResponse, e.InventoryResponse)
}

// Is makes errors.Is(err, ErrUpstreamFailure) true
func (e *AggregationError) Is(target error) bool {
	return target == ErrUpstreamFailure
}
