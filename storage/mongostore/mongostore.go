package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/ternarybob/arbor"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blockpress/config"
	"blockpress/db"
	"blockpress/models"
	"blockpress/storage"
)

// Store keeps posts, comments and users in MongoDB.
type Store struct {
	client   *mongo.Client
	database *mongo.Database
	posts    *mongo.Collection
	comments *mongo.Collection
	users    *mongo.Collection
	logger   arbor.ILogger
}

var _ storage.Store = (*Store)(nil)

func Open(ctx context.Context, cfg config.MongoConfig, logger arbor.ILogger) (*Store, error) {
	client, database, err := db.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := db.CreateIndexes(ctx, database); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return New(client, database, logger), nil
}

// New wraps an existing connection.
func New(client *mongo.Client, database *mongo.Database, logger arbor.ILogger) *Store {
	return &Store{
		client:   client,
		database: database,
		posts:    database.Collection(db.PostsCollection),
		comments: database.Collection(db.CommentsCollection),
		users:    database.Collection(db.UsersCollection),
		logger:   logger,
	}
}

// Database exposes the connection for collections outside the store, such
// as the product catalog.
func (s *Store) Database() *mongo.Database {
	return s.database
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// Posts

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	if _, err := s.posts.InsertOne(ctx, post); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("post %s (slug %q): %w", post.ID, post.Slug, storage.ErrConflict)
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (s *Store) UpdatePost(ctx context.Context, post *models.Post) error {
	res, err := s.posts.ReplaceOne(ctx, bson.M{"_id": post.ID}, post)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("slug %q: %w", post.Slug, storage.ErrConflict)
		}
		return fmt.Errorf("failed to update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post %s: %w", post.ID, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	res, err := s.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("post %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, notFoundOr(err, "post "+id)
	}
	return &post, nil
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	if err := s.posts.FindOne(ctx, bson.M{"slug": slug}).Decode(&post); err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("post with slug %q", slug))
	}
	return &post, nil
}

func postFilter(q storage.PostQuery) bson.M {
	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if len(q.Tags) > 0 {
		filter["tags"] = bson.M{"$in": q.Tags}
	}
	if q.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
			bson.M{"author": pattern},
		}
	}
	return filter
}

func (s *Store) ListPosts(ctx context.Context, q storage.PostQuery) ([]models.Post, int, error) {
	filter := postFilter(q)

	total, err := s.posts.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}, {Key: "_id", Value: 1}})
	if q.Offset > 0 {
		findOptions.SetSkip(int64(q.Offset))
	}
	if q.Limit > 0 {
		findOptions.SetLimit(int64(q.Limit))
	}

	cur, err := s.posts.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	posts := []models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, 0, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, int(total), nil
}

func (s *Store) CountPosts(ctx context.Context) (int, error) {
	n, err := s.posts.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return int(n), nil
}

func (s *Store) distinct(ctx context.Context, field string) ([]string, error) {
	raw, err := s.posts.Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct %s: %w", field, err)
	}
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok {
			values = append(values, str)
		}
	}
	return storage.Distinct(values), nil
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "category")
}

func (s *Store) Tags(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "tags")
}
