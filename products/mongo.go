package products

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blockpress/db"
	"blockpress/models"
	"blockpress/storage"
)

// MongoCatalog reads products from the products collection.
type MongoCatalog struct {
	coll *mongo.Collection
}

func NewMongoCatalog(database *mongo.Database) *MongoCatalog {
	return &MongoCatalog{coll: database.Collection(db.ProductsCollection)}
}

func (c *MongoCatalog) BySKU(ctx context.Context, sku string) (models.Product, error) {
	var p models.Product
	if err := c.coll.FindOne(ctx, bson.M{"sku": sku}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return p, fmt.Errorf("product %s: %w", sku, storage.ErrNotFound)
		}
		return p, fmt.Errorf("failed to get product %s: %w", sku, err)
	}
	return p, nil
}

func (c *MongoCatalog) BySKUs(ctx context.Context, skus []string) ([]models.Product, error) {
	if len(skus) == 0 {
		return []models.Product{}, nil
	}
	cur, err := c.coll.Find(ctx, bson.M{"sku": bson.M{"$in": skus}})
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	var found []models.Product
	if err := cur.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	known := make(map[string]models.Product, len(found))
	for _, p := range found {
		known[p.SKU] = p
	}
	return pick(skus, known), nil
}

// SeedDefaults upserts the demo products so a fresh database renders the
// sample posts.
func (c *MongoCatalog) SeedDefaults(ctx context.Context) error {
	for _, p := range DefaultProducts() {
		_, err := c.coll.UpdateOne(ctx,
			bson.M{"sku": p.SKU},
			bson.M{"$setOnInsert": p},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.SKU, err)
		}
	}
	return nil
}
