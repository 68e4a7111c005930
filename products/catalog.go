package products

import (
	"context"
	"fmt"

	"blockpress/models"
	"blockpress/storage"
)

// Catalog resolves product SKUs referenced by content blocks.
type Catalog interface {
	// BySKU returns storage.ErrNotFound for an unknown SKU.
	BySKU(ctx context.Context, sku string) (models.Product, error)
	// BySKUs returns the known products in the order of skus; unknown SKUs
	// are skipped and repeated SKUs repeat the product.
	BySKUs(ctx context.Context, skus []string) ([]models.Product, error)
}

// DefaultProducts is the built-in demo catalog.
func DefaultProducts() []models.Product {
	return []models.Product{
		{SKU: "SKU123", Name: "Mechanical Keyboard", Price: "$99", Image: "/keyboard.png"},
		{SKU: "SKU456", Name: "Gaming Mouse", Price: "$49", Image: "/mouse.png"},
		{SKU: "SKU789", Name: "Monitor", Price: "$199", Image: "/monitor.png"},
	}
}

// StaticCatalog is an in-memory catalog. It is read-only after
// construction and safe for concurrent use.
type StaticCatalog struct {
	bySKU map[string]models.Product
}

func NewStaticCatalog(items ...models.Product) *StaticCatalog {
	if len(items) == 0 {
		items = DefaultProducts()
	}
	c := &StaticCatalog{bySKU: make(map[string]models.Product, len(items))}
	for _, p := range items {
		c.bySKU[p.SKU] = p
	}
	return c
}

func (c *StaticCatalog) BySKU(ctx context.Context, sku string) (models.Product, error) {
	p, ok := c.bySKU[sku]
	if !ok {
		return models.Product{}, fmt.Errorf("product %s: %w", sku, storage.ErrNotFound)
	}
	return p, nil
}

func (c *StaticCatalog) BySKUs(ctx context.Context, skus []string) ([]models.Product, error) {
	return pick(skus, c.bySKU), nil
}

func pick(skus []string, known map[string]models.Product) []models.Product {
	out := make([]models.Product, 0, len(skus))
	for _, sku := range skus {
		if p, ok := known[sku]; ok {
			out = append(out, p)
		}
	}
	return out
}
