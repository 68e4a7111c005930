package db

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"blockpress/config"
)

const (
	PostsCollection    = "posts"
	CommentsCollection = "comments"
	UsersCollection    = "users"
	ProductsCollection = "products"
)

// Connect dials MongoDB, verifies the connection and returns the
// configured database.
func Connect(ctx context.Context, cfg config.MongoConfig, logger arbor.ILogger) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout())
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info().Str("database", cfg.Database).Msg("Connected to MongoDB")
	return client, client.Database(cfg.Database), nil
}

// CreateIndexes creates the indexes the stores rely on for uniqueness and
// lookups. It is safe to call on every start.
func CreateIndexes(ctx context.Context, database *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		PostsCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "publishedAt", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
		},
		CommentsCollection: {
			{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "parent_id", Value: 1}}},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ProductsCollection: {
			{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for name, models := range indexes {
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
