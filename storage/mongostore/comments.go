package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blockpress/models"
	"blockpress/storage"
)

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	if _, err := s.comments.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("comment %s: %w", c.ID, storage.ErrConflict)
		}
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func (s *Store) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	if err := s.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, notFoundOr(err, "comment "+id)
	}
	return &c, nil
}

func (s *Store) UpdateComment(ctx context.Context, c *models.Comment) error {
	update := bson.M{
		"$set": bson.M{
			"content":   c.Content,
			"updatedAt": c.UpdatedAt,
		},
	}
	res, err := s.comments.UpdateByID(ctx, c.ID, update)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("comment %s: %w", c.ID, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) (int, error) {
	res, err := s.comments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("failed to delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return 0, fmt.Errorf("comment %s: %w", id, storage.ErrNotFound)
	}

	replies, err := s.comments.DeleteMany(ctx, bson.M{"parent_id": id})
	if err != nil {
		return 1, fmt.Errorf("failed to delete replies: %w", err)
	}
	return 1 + int(replies.DeletedCount), nil
}

func (s *Store) ListComments(ctx context.Context, postID, order string) ([]models.Comment, error) {
	findOptions := options.Find()
	switch order {
	case storage.SortOldest:
		findOptions.SetSort(bson.D{{Key: "createdAt", Value: 1}})
	case storage.SortLikes:
		findOptions.SetSort(bson.D{{Key: "likes", Value: -1}, {Key: "createdAt", Value: -1}})
	default:
		findOptions.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	}

	cur, err := s.comments.Find(ctx, bson.M{"post_id": postID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	comments := []models.Comment{}
	if err := cur.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return comments, nil
}

func (s *Store) LikeComment(ctx context.Context, id string) (int, error) {
	var c models.Comment
	err := s.comments.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"likes": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return 0, notFoundOr(err, "comment "+id)
	}
	return c.Likes, nil
}

func (s *Store) DeletePostComments(ctx context.Context, postID string) error {
	if _, err := s.comments.DeleteMany(ctx, bson.M{"post_id": postID}); err != nil {
		return fmt.Errorf("failed to delete comments of post %s: %w", postID, err)
	}
	return nil
}
