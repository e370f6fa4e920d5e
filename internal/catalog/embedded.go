package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed data/catalog.json
var dataFS embed.FS

var (
	embeddedOnce sync.Once
	embedded     *Catalog
	embeddedErr  error
)

// Embedded returns the catalog compiled into the binary.
// It is parsed on first use and shared afterwards.
func Embedded() (*Catalog, error) {
	embeddedOnce.Do(func() {
		data, err := dataFS.ReadFile("data/catalog.json")
		if err != nil {
			embeddedErr = fmt.Errorf("reading embedded catalog: %w", err)
			return
		}
		embedded, embeddedErr = Parse(data)
	})
	return embedded, embeddedErr
}

// EmbeddedProvider serves the embedded catalog.
var EmbeddedProvider = ProviderFunc(func(ctx context.Context) (*Catalog, error) {
	return Embedded()
})

// Parse decodes a catalog document and checks that every product belongs to
// a declared category.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	known := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		known[cat] = true
	}
	seen := make(map[int]bool, len(c.Products))
	for _, p := range c.Products {
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate product id %d", p.ID)
		}
		seen[p.ID] = true
		if !known[p.Category] {
			return nil, fmt.Errorf("product %d has unknown category %q", p.ID, p.Category)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("product %d has negative price", p.ID)
		}
	}
	return &c, nil
}
