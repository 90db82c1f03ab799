package models

import (
	"encoding/json"
	"fmt"
)

// DemandType classifies how strongly a product sells
type DemandType string

// Demand classifications
const (
	DemandNormal DemandType = "NORMAL"
	DemandHigh   DemandType = "HIGH_DEMAND"
)

// Known reports whether d is one of the recognised classifications
func (d DemandType) Known() bool {
	return d == DemandNormal || d == DemandHigh
}

// UnmarshalJSON accepts any string so that one unrecognised classification
// does not fail the whole catalog fetch. Callers check Known().
func (d *DemandType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("demand type must be a string: %w", err)
	}
	*d = DemandType(raw)
	return nil
}

// Product represents a catalog entry as served upstream
type Product struct {
	ID    string     `db:"id" json:"id"`
	SKU   string     `db:"sku" json:"SKU"`
	Name  string     `db:"name" json:"name"`
	Price float64    `db:"price" json:"price"`
	Type  DemandType `db:"type" json:"type"`
	Image string     `db:"image" json:"image"`
}

// Inventory represents stock of one SKU in one storage zone
type Inventory struct {
	ID       string `db:"id" json:"id"`
	SKU      string `db:"sku" json:"SKU"`
	Zone     string `db:"zone" json:"zone"`
	Quantity int64  `db:"quantity" json:"quantity"`
}

// AdjustedProduct is a Product whose price has been repriced for demand
type AdjustedProduct struct {
	ID    string     `json:"id"`
	SKU   string     `json:"SKU"`
	Name  string     `json:"name"`
	Price float64    `json:"price"`
	Type  DemandType `json:"type"`
	Image string     `json:"image"`
}

// NewAdjustedProduct copies p with its price replaced
func NewAdjustedProduct(p Product, price float64) AdjustedProduct {
	return AdjustedProduct{
		ID:    p.ID,
		SKU:   p.SKU,
		Name:  p.Name,
		Price: price,
		Type:  p.Type,
		Image: p.Image,
	}
}

// String renders the product on one line for the catalog printer
func (p AdjustedProduct) String() string {
	return fmt.Sprintf("AdjustedProduct(id=%s, SKU=%s, name=%s, price=%v, type=%s, image=%s)",
		p.ID, p.SKU, p.Name, p.Price, p.Type, p.Image)
}
