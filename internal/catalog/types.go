// Package catalog provides the read-only product catalog, its providers and
// the filter/sort engine used by the product listing.
package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// AllCategories is the sentinel category that disables category filtering.
const AllCategories = "All"

// BestsellerRating is the rating from which a product is badged as a bestseller.
const BestsellerRating = 4.8

// ErrProductNotFound is returned when a product id is not in the catalog.
var ErrProductNotFound = errors.New("product not found")

// Product is an immutable catalog entry.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Rating      float64         `json:"rating"`
	Reviews     int             `json:"reviews"`
	Image       string          `json:"image"`
	Sizes       []string        `json:"sizes"`
	Colors      []string        `json:"colors"`
	Description string          `json:"description"`
}

// IsBestseller returns true for highly rated products.
func (p *Product) IsBestseller() bool {
	return p.Rating >= BestsellerRating
}

// HasSize reports whether size is one of the product's sizes.
func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// HasColor reports whether color is one of the product's colors.
func (p *Product) HasColor(color string) bool {
	for _, c := range p.Colors {
		if c == color {
			return true
		}
	}
	return false
}

// Catalog is an ordered product list plus the valid category labels.
// It is loaded once and never mutated.
type Catalog struct {
	Products   []Product `json:"products"`
	Categories []string  `json:"categories"`
}

// Find returns the product with the given id.
func (c *Catalog) Find(id int) (Product, error) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

// Provider supplies a catalog.
type Provider interface {
	Load(ctx context.Context) (*Catalog, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context) (*Catalog, error)

// Load calls f.
func (f ProviderFunc) Load(ctx context.Context) (*Catalog, error) {
	return f(ctx)
}
