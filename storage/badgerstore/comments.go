package badgerstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"blockpress/models"
	"blockpress/storage"
)

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	if c.ID == "" {
		return fmt.Errorf("comment ID is required")
	}
	if err := s.store.Insert(c.ID, c); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("comment %s: %w", c.ID, storage.ErrConflict)
		}
		return fmt.Errorf("failed to save comment: %w", err)
	}
	return nil
}

func (s *Store) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	if err := s.store.Get(id, &c); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("comment %s: %w", id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &c, nil
}

func (s *Store) UpdateComment(ctx context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Update(c.ID, c); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("comment %s: %w", c.ID, storage.ErrNotFound)
		}
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(id, &models.Comment{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return 0, fmt.Errorf("comment %s: %w", id, storage.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to delete comment: %w", err)
	}

	replies, err := s.store.Count(&models.Comment{}, badgerhold.Where("ParentID").Eq(id))
	if err != nil {
		return 1, fmt.Errorf("failed to count replies: %w", err)
	}
	if replies > 0 {
		if err := s.store.DeleteMatching(&models.Comment{}, badgerhold.Where("ParentID").Eq(id)); err != nil {
			return 1, fmt.Errorf("failed to delete replies: %w", err)
		}
	}
	return 1 + int(replies), nil
}

func (s *Store) ListComments(ctx context.Context, postID, order string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := s.store.Find(&comments, badgerhold.Where("PostID").Eq(postID)); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	storage.SortComments(comments, order)
	return comments, nil
}

func (s *Store) LikeComment(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c models.Comment
	if err := s.store.Get(id, &c); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return 0, fmt.Errorf("comment %s: %w", id, storage.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to get comment: %w", err)
	}
	c.Likes++
	if err := s.store.Update(id, &c); err != nil {
		return 0, fmt.Errorf("failed to like comment: %w", err)
	}
	return c.Likes, nil
}

func (s *Store) DeletePostComments(ctx context.Context, postID string) error {
	if err := s.store.DeleteMatching(&models.Comment{}, badgerhold.Where("PostID").Eq(postID)); err != nil {
		return fmt.Errorf("failed to delete comments of post %s: %w", postID, err)
	}
	return nil
}
